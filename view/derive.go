package view

import (
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
)

// derive returns a new view sharing v's block. The protect flag is not
// carried over.
func (v *View) derive() (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	n := *v
	n.sizes = v.sizes.Clone()
	n.strides = v.strides.Clone()
	n.protect = false
	n.block = v.block.Retain()
	return &n, nil
}

func (v *View) checkDim(dim int) error {
	if dim < 0 || dim >= len(v.sizes) {
		return errors.IndexOutOfRange(errors.PhaseView, dim, dim, len(v.sizes))
	}
	return nil
}

// Clone returns another view of the same pixels.
func (v *View) Clone() (*View, error) {
	return v.derive()
}

// Crop returns the sub-view selected by one range per dimension.
func (v *View) Crop(ranges ...Range) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if len(ranges) != len(v.sizes) {
		return nil, errors.IllegalArraySize(errors.PhaseView, len(ranges), len(v.sizes))
	}
	sizes := make(layout.Shape, len(ranges))
	strides := make(layout.Strides, len(ranges))
	offset := 0
	for i, r := range ranges {
		start, count, step, err := r.resolve(i, v.sizes[i])
		if err != nil {
			return nil, err
		}
		offset += start * v.strides[i]
		sizes[i] = count
		strides[i] = step * v.strides[i]
	}

	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	n.sizes = sizes
	n.strides = strides
	n.origin += offset * v.sampleSize()
	return n, nil
}

// Mirror returns a view with the selected dimensions reversed.
func (v *View) Mirror(dims []bool) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if len(dims) != len(v.sizes) {
		return nil, errors.IllegalArraySize(errors.PhaseView, len(dims), len(v.sizes))
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	for i, m := range dims {
		if m {
			n.origin += (n.sizes[i] - 1) * n.strides[i] * n.sampleSize()
			n.strides[i] = -n.strides[i]
		}
	}
	return n, nil
}

// SwapDimensions returns a view with dimensions a and b exchanged.
func (v *View) SwapDimensions(a, b int) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if err := v.checkDim(a); err != nil {
		return nil, err
	}
	if err := v.checkDim(b); err != nil {
		return nil, err
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	n.sizes[a], n.sizes[b] = n.sizes[b], n.sizes[a]
	n.strides[a], n.strides[b] = n.strides[b], n.strides[a]
	return n, nil
}

// Permute returns a view whose dimension i is dimension order[i] of v.
func (v *View) Permute(order []int) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if len(order) != len(v.sizes) {
		return nil, errors.IllegalArraySize(errors.PhaseView, len(order), len(v.sizes))
	}
	seen := make([]bool, len(order))
	for _, d := range order {
		if err := v.checkDim(d); err != nil {
			return nil, err
		}
		if seen[d] {
			return nil, errors.InvalidInput(errors.PhaseView, "dimension %d repeated in %v", d, order)
		}
		seen[d] = true
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	for i, d := range order {
		n.sizes[i] = v.sizes[d]
		n.strides[i] = v.strides[d]
	}
	return n, nil
}

// TensorElement returns a scalar view of tensor element i.
func (v *View) TensorElement(i int) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if i < 0 || i >= v.tensorElements {
		return nil, errors.New(errors.PhaseView, errors.KindIndexOutOfRange).
			Path("tensor").
			Value(i).
			Detail("tensor element %d out of range (%d elements)", i, v.tensorElements).
			Build()
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	n.origin += i * v.tensorStride * v.sampleSize()
	n.tensorElements = 1
	n.tensorStride = 1
	return n, nil
}

// Real returns a view of the real components of a complex view.
func (v *View) Real() (*View, error) {
	return v.complexPart(0, "real part of a non-complex view")
}

// Imaginary returns a view of the imaginary components of a complex view.
func (v *View) Imaginary() (*View, error) {
	return v.complexPart(1, "imaginary part of a non-complex view")
}

func (v *View) complexPart(part int, what string) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if !v.dataType.IsComplex() {
		return nil, errors.Unsupported(errors.PhaseView, what)
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	n.dataType = v.dataType.Real()
	for i := range n.strides {
		n.strides[i] *= 2
	}
	n.tensorStride *= 2
	n.origin += part * n.dataType.Size()
	return n, nil
}

// ExpandSingletonDimension returns a view where singleton dimension dim
// repeats its pixels size times, with a zero stride.
func (v *View) ExpandSingletonDimension(dim, size int) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	if err := v.checkDim(dim); err != nil {
		return nil, err
	}
	if v.sizes[dim] != 1 {
		return nil, errors.InvalidInput(errors.PhaseView, "dimension %d has size %d, not 1", dim, v.sizes[dim])
	}
	if size < 1 {
		return nil, errors.InvalidInput(errors.PhaseView, "expanded size must be positive, got %d", size)
	}
	n, err := v.derive()
	if err != nil {
		return nil, err
	}
	n.sizes[dim] = size
	n.strides[dim] = 0
	return n, nil
}

// ExpandSingletonTo returns a view broadcast to sizes, expanding
// singleton dimensions and appending trailing ones as needed.
func (v *View) ExpandSingletonTo(sizes layout.Shape) (*View, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseView)
	}
	want, err := layout.SingletonExpandedSize(v.sizes, sizes)
	if err != nil {
		return nil, err
	}
	if !want.Equal(sizes) {
		return nil, errors.SizeMismatch(errors.PhaseView, v.sizes, sizes)
	}
	n, err := v.ExpandDimensionality(len(sizes))
	if err != nil {
		return nil, err
	}
	for i, sz := range sizes {
		if n.sizes[i] != sz {
			n.sizes[i] = sz
			n.strides[i] = 0
		}
	}
	return n, nil
}

// ExpandDimensionality returns a view with trailing singleton dimensions
// appended up to n dimensions. Views with n or more dimensions are cloned.
func (v *View) ExpandDimensionality(n int) (*View, error) {
	out, err := v.derive()
	if err != nil {
		return nil, err
	}
	if n <= len(v.sizes) {
		return out, nil
	}
	next := v.tensorElements * abs(v.tensorStride)
	if next < v.tensorElements {
		next = v.tensorElements
	}
	for i, sz := range v.sizes {
		if s := sz * abs(v.strides[i]); s > next {
			next = s
		}
	}
	for len(out.sizes) < n {
		out.sizes = append(out.sizes, 1)
		out.strides = append(out.strides, next)
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
