package view

import (
	"go.uber.org/zap"

	"github.com/yaoyutaoTom/diplib/dtype"
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
	"github.com/yaoyutaoTom/diplib/storage"
)

// Policy controls how Reforge treats a requested data type on a protected
// view.
type Policy uint8

const (
	// DisallowDataTypeChange forges with the requested type. A protected
	// view whose storage cannot be reused fails.
	DisallowDataTypeChange Policy = iota
	// AllowDataTypeChange lets a protected view keep its current type
	// instead of the requested one.
	AllowDataTypeChange
)

func (p Policy) String() string {
	switch p {
	case DisallowDataTypeChange:
		return "disallow"
	case AllowDataTypeChange:
		return "allow"
	default:
		return "unknown"
	}
}

func (v *View) request() storage.Request {
	return storage.Request{
		Sizes:          v.sizes.Clone(),
		Strides:        v.strides.Clone(),
		TensorElements: v.tensorElements,
		TensorStride:   v.tensorStride,
		DataType:       v.dataType,
	}
}

func (v *View) heapOrDefault() *storage.Heap {
	if v.heap != nil {
		return v.heap
	}
	return storage.DefaultHeap()
}

// Forge attaches storage to a raw view. Forging a forged view does
// nothing.
//
// The external provider, if any, is asked first; when it declines, the
// view's heap allocates a block. Requested strides are kept when they are
// valid and tight, otherwise normal strides are used.
func (v *View) Forge() error {
	if v.IsForged() {
		return nil
	}
	req := v.request()
	if _, err := req.Samples(); err != nil {
		return err
	}

	if v.provider != nil {
		preq := v.request()
		blk, err := v.provider.Allocate(&preq)
		if err != nil {
			return errors.Wrap(errors.PhaseProvider, errors.KindAllocation, err, "external provider failed")
		}
		if blk != nil {
			return v.attachProvided(blk, &preq)
		}
		Logger().Debug("provider declined, using heap", zap.Ints("sizes", v.sizes))
	}

	size, start, err := req.Layout()
	if err != nil {
		return err
	}
	blk, err := v.heapOrDefault().Alloc(size * v.sampleSize())
	if err != nil {
		return err
	}
	v.attach(blk, &req, start)
	return nil
}

// attachProvided checks the layout a provider returned before attaching.
func (v *View) attachProvided(blk *storage.Block, req *storage.Request) error {
	if len(req.Strides) != len(req.Sizes) || (req.TensorElements > 1 && req.TensorStride == 0) {
		if _, _, err := req.Layout(); err != nil {
			_ = blk.Release()
			return err
		}
	}
	size, start := req.Footprint()
	if need := size * v.sampleSize(); need > blk.Len() {
		_ = blk.Release()
		return errors.New(errors.PhaseProvider, errors.KindAllocation).
			Value(blk.Len()).
			Detail("provider block has %d bytes, layout needs %d", blk.Len(), need).
			Build()
	}
	v.attach(blk, req, start)
	return nil
}

func (v *View) attach(blk *storage.Block, req *storage.Request, start int) {
	v.strides = req.Strides.Clone()
	v.tensorStride = req.TensorStride
	v.block = blk
	v.origin = -start * v.sampleSize()

	Logger().Debug("view forged",
		zap.Ints("sizes", v.sizes),
		zap.Ints("strides", v.strides),
		zap.Int("tensor_elements", v.tensorElements),
		zap.Stringer("dtype", v.dataType),
		zap.Int("bytes", blk.Len()),
		zap.Uint64("block", blk.ID()),
	)
}

// Reforge gives the view the requested sizes, tensor elements and data
// type. A forged view that already matches is left alone. Storage is
// reused in place when the view is unprotected, unshared and contiguous
// and the byte count stays the same. Otherwise a new block is forged and
// replaces the old one; on failure the view is unchanged. In-place reuse
// starts the new layout at the lowest byte the old one addressed.
//
// With AllowDataTypeChange a protected view keeps its data type.
func (v *View) Reforge(sizes layout.Shape, tensorElements int, dt dtype.DataType, policy Policy) error {
	if err := layout.ValidateSizes(sizes); err != nil {
		return err
	}
	if tensorElements < 1 {
		return errors.InvalidInput(errors.PhaseReforge, "tensor elements must be positive, got %d", tensorElements)
	}
	if !dt.Valid() {
		return errors.InvalidInput(errors.PhaseReforge, "invalid data type %d", uint8(dt))
	}
	if policy == AllowDataTypeChange && v.protect {
		dt = v.dataType
	}

	if v.IsForged() {
		if v.sizes.Equal(sizes) && v.tensorElements == tensorElements && v.dataType == dt {
			return nil
		}
		if !v.protect && !v.IsShared() && v.HasContiguousData() {
			req := storage.Request{Sizes: sizes, TensorElements: tensorElements, DataType: dt}
			samples, err := req.Samples()
			if err != nil {
				return err
			}
			if samples*dt.Size() == v.NumberOfSamples()*v.sampleSize() {
				_, start := v.DataBlockSize()
				base := v.origin + start*v.sampleSize()
				v.sizes = sizes.Clone()
				v.tensorElements = tensorElements
				v.tensorStride = 1
				v.dataType = dt
				v.strides = layout.NormalStrides(v.sizes, tensorElements)
				v.origin = base
				Logger().Debug("view reforged",
					zap.Ints("sizes", v.sizes),
					zap.Stringer("dtype", dt),
					zap.Bool("reused", true),
				)
				return nil
			}
		}
		if v.protect {
			return errors.Protected(errors.PhaseReforge)
		}
	}

	fresh := &View{
		provider:       v.provider,
		heap:           v.heap,
		sizes:          sizes.Clone(),
		tensorElements: tensorElements,
		tensorStride:   v.tensorStride,
		dataType:       dt,
		protect:        v.protect,
	}
	if len(v.strides) == len(sizes) {
		fresh.strides = v.strides.Clone()
	}
	if err := fresh.Forge(); err != nil {
		return err
	}

	old := v.block
	*v = *fresh
	if old != nil {
		if err := old.Release(); err != nil {
			Logger().Warn("release of replaced block failed", zap.Error(err))
		}
	}
	Logger().Debug("view reforged",
		zap.Ints("sizes", v.sizes),
		zap.Stringer("dtype", dt),
		zap.Bool("reused", false),
	)
	return nil
}

// Strip drops the view's reference to its block and makes it raw again.
// Sizes, strides, tensor shape and data type are kept and serve as a
// layout request for the next Forge. Stripping a raw view does nothing; a
// protected view cannot be stripped.
func (v *View) Strip() error {
	if v.block == nil {
		return nil
	}
	if v.protect && !v.block.Released() {
		return errors.Protected(errors.PhaseStrip)
	}
	return v.release()
}

// Release drops the view's reference to its block regardless of the
// protect flag. The view is raw afterwards.
func (v *View) Release() error {
	if v.block == nil {
		return nil
	}
	return v.release()
}

func (v *View) release() error {
	blk := v.block
	v.block = nil
	v.origin = 0
	Logger().Debug("view stripped", zap.Uint64("block", blk.ID()), zap.Int64("refs", blk.RefCount()-1))
	if err := blk.Release(); err != nil {
		return errors.Wrap(errors.PhaseStrip, errors.KindAllocation, err, "release block")
	}
	return nil
}
