package storage

import (
	"math"

	"github.com/yaoyutaoTom/diplib/dtype"
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
)

// Request describes the storage a view needs. Providers may overwrite
// Strides and TensorStride to choose the layout of the block they return.
type Request struct {
	Sizes          layout.Shape
	Strides        layout.Strides
	TensorElements int
	TensorStride   int
	DataType       dtype.DataType
}

// Samples returns the number of samples the request covers.
// Zero pixels and overflowing counts are reported as KindSizeExceedsLimit.
func (r *Request) Samples() (int, error) {
	if r.TensorElements < 1 {
		return 0, errors.InvalidInput(errors.PhaseForge, "tensor elements must be positive, got %d", r.TensorElements)
	}
	if !r.DataType.Valid() {
		return 0, errors.InvalidInput(errors.PhaseForge, "invalid data type %d", uint8(r.DataType))
	}
	pixels, err := layout.PixelCount(r.Sizes)
	if err != nil {
		return 0, err
	}
	if pixels == 0 {
		return 0, errors.SizeExceedsLimit(errors.PhaseForge, "image has no pixels")
	}
	if pixels > math.MaxInt/r.TensorElements {
		return 0, errors.SizeExceedsLimit(errors.PhaseForge, "number of samples overflows")
	}
	samples := pixels * r.TensorElements
	if samples > math.MaxInt/r.DataType.Size() {
		return 0, errors.SizeExceedsLimit(errors.PhaseForge, "number of bytes overflows")
	}
	return samples, nil
}

// Layout settles the strides of the request. Requested strides are kept
// when they are valid and address exactly one sample per element; otherwise
// normal strides and a tensor stride of 1 are written back. A scalar
// request always ends with a tensor stride of 1. It returns the
// block size in samples and the offset of the lowest sample (start <= 0).
func (r *Request) Layout() (size, start int, err error) {
	samples, err := r.Samples()
	if err != nil {
		return 0, 0, err
	}
	if len(r.Strides) == len(r.Sizes) && (r.TensorElements == 1 || r.TensorStride != 0) {
		d, s := layout.WithTensor(r.Sizes, r.Strides, r.TensorElements, r.TensorStride)
		if layout.HasValidStrides(d, s) {
			if size, start := layout.DataBlock(d, s); size == samples {
				if r.TensorElements == 1 {
					r.TensorStride = 1
				}
				return size, start, nil
			}
		}
	}
	r.Strides = layout.NormalStrides(r.Sizes, r.TensorElements)
	r.TensorStride = 1
	return samples, 0, nil
}

// Footprint returns the block size and start offset implied by the current
// Strides and TensorStride, without validating them.
func (r *Request) Footprint() (size, start int) {
	d, s := layout.WithTensor(r.Sizes, r.Strides, r.TensorElements, r.TensorStride)
	return layout.DataBlock(d, s)
}
