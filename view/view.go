package view

import (
	"github.com/yaoyutaoTom/diplib/dtype"
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
	"github.com/yaoyutaoTom/diplib/storage"
)

// View describes a strided multidimensional image over a shared block.
//
// A View is raw until Forge attaches storage. Views derived from a forged
// view (Crop, Mirror, TensorElement, ...) share its block. A View is not
// safe for concurrent mutation; distinct views over one block may be used
// from different goroutines.
type View struct {
	block          *storage.Block
	provider       storage.Provider
	heap           *storage.Heap
	sizes          layout.Shape
	strides        layout.Strides
	tensorElements int
	tensorStride   int
	origin         int
	dataType       dtype.DataType
	protect        bool
}

// Option configures a raw view.
type Option func(*View)

// WithProvider sets the external allocation provider consulted by Forge.
func WithProvider(p storage.Provider) Option {
	return func(v *View) { v.provider = p }
}

// WithHeap sets the heap used when no provider serves the request.
func WithHeap(h *storage.Heap) Option {
	return func(v *View) { v.heap = h }
}

// WithStrides requests a layout for Forge. Strides that are invalid or do
// not address exactly one sample per element are replaced by normal ones.
func WithStrides(s layout.Strides) Option {
	return func(v *View) { v.strides = s.Clone() }
}

// WithTensorStride sets the requested tensor stride.
func WithTensorStride(ts int) Option {
	return func(v *View) { v.tensorStride = ts }
}

// New creates a raw view. Sizes, tensor elements and data type are checked
// by Forge.
func New(sizes layout.Shape, tensorElements int, dt dtype.DataType, opts ...Option) *View {
	v := &View{
		sizes:          sizes.Clone(),
		tensorElements: tensorElements,
		tensorStride:   1,
		dataType:       dt,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewForged creates a view and forges it.
func NewForged(sizes layout.Shape, tensorElements int, dt dtype.DataType, opts ...Option) (*View, error) {
	v := New(sizes, tensorElements, dt, opts...)
	if err := v.Forge(); err != nil {
		return nil, err
	}
	return v, nil
}

// SetSizes changes the sizes of a raw view.
func (v *View) SetSizes(sizes layout.Shape) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	if err := layout.ValidateSizes(sizes); err != nil {
		return err
	}
	v.sizes = sizes.Clone()
	return nil
}

// SetStrides changes the requested strides of a raw view.
func (v *View) SetStrides(strides layout.Strides) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	if len(strides) != len(v.sizes) {
		return errors.IllegalArraySize(errors.PhaseView, len(strides), len(v.sizes))
	}
	v.strides = strides.Clone()
	return nil
}

// SetTensorStride changes the requested tensor stride of a raw view.
func (v *View) SetTensorStride(ts int) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	v.tensorStride = ts
	return nil
}

// SetTensorElements changes the number of tensor elements of a raw view.
func (v *View) SetTensorElements(n int) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	if n < 1 {
		return errors.InvalidInput(errors.PhaseView, "tensor elements must be positive, got %d", n)
	}
	v.tensorElements = n
	return nil
}

// SetDataType changes the data type of a raw view.
func (v *View) SetDataType(dt dtype.DataType) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	if !dt.Valid() {
		return errors.InvalidInput(errors.PhaseView, "invalid data type %d", uint8(dt))
	}
	v.dataType = dt
	return nil
}

// SetProvider changes the external allocation provider of a raw view.
func (v *View) SetProvider(p storage.Provider) error {
	if v.IsForged() {
		return errors.NotRaw(errors.PhaseView)
	}
	v.provider = p
	return nil
}

// Protect sets the protect flag and returns its previous value. A
// protected view cannot be stripped, and Reforge keeps its storage.
func (v *View) Protect(on bool) bool {
	old := v.protect
	v.protect = on
	return old
}

// IsProtected reports whether the protect flag is set.
func (v *View) IsProtected() bool { return v.protect }

// Sizes returns a copy of the sizes.
func (v *View) Sizes() layout.Shape { return v.sizes.Clone() }

// Size returns the size of dimension dim.
func (v *View) Size(dim int) int { return v.sizes[dim] }

// Strides returns a copy of the strides, in samples.
func (v *View) Strides() layout.Strides { return v.strides.Clone() }

// Stride returns the stride of dimension dim, in samples.
func (v *View) Stride(dim int) int { return v.strides[dim] }

// TensorElements returns the number of samples per pixel.
func (v *View) TensorElements() int { return v.tensorElements }

// TensorStride returns the distance between tensor elements, in samples.
func (v *View) TensorStride() int { return v.tensorStride }

// DataType returns the sample type.
func (v *View) DataType() dtype.DataType { return v.dataType }

// Dimensionality returns the number of spatial dimensions.
func (v *View) Dimensionality() int { return len(v.sizes) }

// NumberOfPixels returns the product of the sizes.
func (v *View) NumberOfPixels() int { return layout.Product(v.sizes) }

// NumberOfSamples returns the number of pixels times the tensor elements.
func (v *View) NumberOfSamples() int { return v.NumberOfPixels() * v.tensorElements }

// Origin returns the byte offset of the first sample of pixel 0 in the
// block.
func (v *View) Origin() int { return v.origin }

// Block returns the storage block, or nil for a raw view.
func (v *View) Block() *storage.Block { return v.block }

// Provider returns the external allocation provider, or nil.
func (v *View) Provider() storage.Provider { return v.provider }

// IsForged reports whether live storage is attached. A view whose block
// was freed by storage.Registry.Close is raw.
func (v *View) IsForged() bool { return v.block != nil && !v.block.Released() }

// IsShared reports whether another view references the same block.
func (v *View) IsShared() bool {
	return v.block != nil && v.block.RefCount() > 1
}

// Bytes returns the whole block buffer. The first sample of pixel 0 is at
// Origin. It returns nil for a raw view.
func (v *View) Bytes() []byte {
	if v.block == nil {
		return nil
	}
	return v.block.Bytes()
}

func (v *View) sampleSize() int { return v.dataType.Size() }

func (v *View) withTensor() (layout.Shape, layout.Strides) {
	return layout.WithTensor(v.sizes, v.strides, v.tensorElements, v.tensorStride)
}

func (v *View) stridesMatch() bool { return len(v.strides) == len(v.sizes) }

// HasNormalStrides reports whether the layout is the default contiguous
// one with a tensor stride of 1.
func (v *View) HasNormalStrides() bool {
	return layout.HasNormalStrides(v.sizes, v.strides, v.tensorElements, v.tensorStride)
}

// HasValidStrides reports whether no two samples share an offset, with
// the tensor dimension included.
func (v *View) HasValidStrides() bool {
	if !v.stridesMatch() {
		return false
	}
	return layout.HasValidStrides(v.withTensor())
}

// DataBlockSize returns the number of samples between the lowest and the
// highest addressed sample, and the offset of the lowest one relative to
// pixel 0 (start <= 0). The tensor dimension is included.
func (v *View) DataBlockSize() (size, start int) {
	if !v.stridesMatch() {
		return 0, 0
	}
	return layout.DataBlock(v.withTensor())
}

// HasContiguousData reports whether a forged view addresses every sample
// of its data block exactly once.
func (v *View) HasContiguousData() bool {
	if !v.IsForged() || !v.HasValidStrides() {
		return false
	}
	size, _ := v.DataBlockSize()
	return size == v.NumberOfSamples()
}

// SimpleStride returns a single stride that visits every pixel of a
// forged view, and the byte offset in the block where that walk starts.
// ok is false for raw views and for layouts without a simple stride.
func (v *View) SimpleStride() (stride, originByte int, ok bool) {
	if !v.IsForged() {
		return 0, 0, false
	}
	stride, _, start, ok := layout.SimpleStride(v.sizes, v.strides)
	if !ok {
		return 0, 0, false
	}
	return stride, v.origin + start*v.sampleSize(), true
}

// OptimalProcessingDim returns the dimension best suited for the inner
// loop of a pixel walk.
func (v *View) OptimalProcessingDim() int {
	if !v.stridesMatch() {
		return 0
	}
	return layout.OptimalProcessingDim(v.sizes, v.strides)
}

// HasSameDimensionOrder reports whether both views order their non-singleton
// dimensions the same way in memory.
func (v *View) HasSameDimensionOrder(other *View) bool {
	if !v.stridesMatch() || !other.stridesMatch() {
		return false
	}
	return layout.SameDimensionOrder(v.sizes, v.strides, other.sizes, other.strides)
}
