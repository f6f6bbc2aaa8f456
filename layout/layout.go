package layout

import (
	"math"

	"github.com/yaoyutaoTom/diplib/errors"
)

// Shape holds the size of each dimension.
type Shape []int

// Strides holds the step, in samples, between neighbours along each dimension.
type Strides []int

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	return append(Shape(nil), s...)
}

// Equal reports whether both shapes have the same sizes.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s Strides) Clone() Strides {
	if s == nil {
		return nil
	}
	return append(Strides(nil), s...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ValidateSizes rejects negative sizes.
func ValidateSizes(sizes Shape) error {
	for i, sz := range sizes {
		if sz < 0 {
			return errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				Path("dim", itoa(i)).
				Value(sz).
				Detail("negative size %d", sz).
				Build()
		}
	}
	return nil
}

// Product returns the product of sizes without overflow checking.
// The product of an empty shape is 1.
func Product(sizes Shape) int {
	n := 1
	for _, sz := range sizes {
		n *= sz
	}
	return n
}

// PixelCount returns the number of pixels described by sizes.
// It fails with KindSizeExceedsLimit if the product overflows.
func PixelCount(sizes Shape) (int, error) {
	if err := ValidateSizes(sizes); err != nil {
		return 0, err
	}
	n := 1
	for _, sz := range sizes {
		if sz != 0 && n > math.MaxInt/sz {
			return 0, errors.SizeExceedsLimit(errors.PhaseLayout, "number of pixels overflows")
		}
		n *= sz
	}
	return n, nil
}

// NormalStrides computes the default contiguous strides for sizes, with
// the tensor elements of each pixel stored together (tensor stride 1).
func NormalStrides(sizes Shape, tensorElements int) Strides {
	strides := make(Strides, len(sizes))
	s := tensorElements
	for i, sz := range sizes {
		strides[i] = s
		s *= sz
	}
	return strides
}

// HasNormalStrides reports whether the layout equals NormalStrides with a
// tensor stride of 1.
func HasNormalStrides(sizes Shape, strides Strides, tensorElements, tensorStride int) bool {
	if tensorStride != 1 || len(sizes) != len(strides) {
		return false
	}
	total := tensorElements
	for i, sz := range sizes {
		if strides[i] != total {
			return false
		}
		total *= sz
	}
	return true
}

// WithTensor returns copies of sizes and strides with the tensor dimension
// appended when there is more than one tensor element.
func WithTensor(sizes Shape, strides Strides, tensorElements, tensorStride int) (Shape, Strides) {
	d := make(Shape, len(sizes), len(sizes)+1)
	copy(d, sizes)
	s := make(Strides, len(strides), len(strides)+1)
	copy(s, strides)
	if tensorElements > 1 {
		d = append(d, tensorElements)
		s = append(s, tensorStride)
	}
	return d, s
}

// SortPairs sorts strides in increasing order, keeping sizes in sync.
// Dimensionality is small, so this is an in-place insertion sort.
func SortPairs(strides Strides, sizes Shape) {
	for i := 1; i < len(strides); i++ {
		s, d := strides[i], sizes[i]
		j := i
		for j > 0 && strides[j-1] > s {
			strides[j] = strides[j-1]
			sizes[j] = sizes[j-1]
			j--
		}
		strides[j] = s
		sizes[j] = d
	}
}

// HasValidStrides reports whether no two samples of the layout share an
// address: after sorting absolute strides, stride[i+1] > stride[i]*(size[i]-1)
// must hold for every i. Layouts with fewer than two dimensions are valid.
func HasValidStrides(sizes Shape, strides Strides) bool {
	if len(sizes) != len(strides) {
		return false
	}
	n := len(strides)
	if n < 2 {
		return true
	}
	s := make(Strides, n)
	for i, v := range strides {
		s[i] = abs(v)
	}
	d := sizes.Clone()
	SortPairs(s, d)
	for i := 0; i < n-1; i++ {
		if s[i+1] <= s[i]*(d[i]-1) {
			return false
		}
	}
	return true
}

// DataBlock returns the number of samples between the lowest and highest
// reachable offsets of the layout, and the lowest offset (start <= 0).
// A layout with a zero-size dimension spans no samples.
func DataBlock(sizes Shape, strides Strides) (size, start int) {
	lo, hi := 0, 0
	for i, sz := range sizes {
		if sz == 0 {
			return 0, 0
		}
		p := (sz - 1) * strides[i]
		if p < 0 {
			lo += p
		} else {
			hi += p
		}
	}
	return hi - lo + 1, lo
}

// SimpleStride finds a single stride that visits every sample of the layout
// from its lowest offset. ok is false if none exists. A zero stride with ok
// set is legal: it occurs for views expanded from a single sample.
func SimpleStride(sizes Shape, strides Strides) (stride, size, start int, ok bool) {
	if len(strides) == 0 {
		return 1, 1, 0, true
	}
	stride = -1
	for i, sz := range sizes {
		if sz > 1 {
			if a := abs(strides[i]); stride < 0 || a < stride {
				stride = a
			}
		}
	}
	if stride < 0 {
		stride = 1
	}
	size, start = DataBlock(sizes, strides)
	n := Product(sizes)
	if n == 0 || size != (n-1)*stride+1 {
		return 0, size, start, false
	}
	return stride, size, start, true
}

// OptimalProcessingDim returns the dimension best suited for inner-loop
// iteration: the one with the smallest absolute stride, unless that
// dimension is short (see Config.SmallDimThreshold) and a longer one exists.
func OptimalProcessingDim(sizes Shape, strides Strides) int {
	small := CurrentConfig().SmallDimThreshold
	dim := 0
	for i := 1; i < len(strides) && i < len(sizes); i++ {
		if abs(strides[i]) < abs(strides[dim]) {
			if sizes[i] > small || sizes[i] > sizes[dim] {
				dim = i
			}
		} else if sizes[dim] <= small && sizes[i] > sizes[dim] {
			dim = i
		}
	}
	return dim
}

// RemoveSingletons returns copies of sizes and strides without the
// dimensions of size 1.
func RemoveSingletons(sizes Shape, strides Strides) (Shape, Strides) {
	d := make(Shape, 0, len(sizes))
	s := make(Strides, 0, len(strides))
	for i, sz := range sizes {
		if sz != 1 {
			d = append(d, sz)
			s = append(s, strides[i])
		}
	}
	return d, s
}

// SameDimensionOrder reports whether two layouts, ignoring singleton
// dimensions, have their strides increasing along the same dimensions.
func SameDimensionOrder(sizesA Shape, stridesA Strides, sizesB Shape, stridesB Strides) bool {
	_, s1 := RemoveSingletons(sizesA, stridesA)
	_, s2 := RemoveSingletons(sizesB, stridesB)
	if len(s1) != len(s2) {
		return false
	}
	// Sort s1, carrying s2 along; s2 must then be sorted too.
	carry := Shape(s2)
	SortPairs(s1, carry)
	for i := 1; i < len(carry); i++ {
		if carry[i] < carry[i-1] {
			return false
		}
	}
	return true
}

// SingletonExpandedSize returns the size both shapes expand to when
// singleton dimensions are broadcast. The shorter shape is padded with
// trailing singleton dimensions.
func SingletonExpandedSize(a, b Shape) (Shape, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	for i := range out {
		da, db := 1, 1
		if i < len(a) {
			da = a[i]
		}
		if i < len(b) {
			db = b[i]
		}
		switch {
		case da == db, db == 1:
			out[i] = da
		case da == 1:
			out[i] = db
		default:
			return nil, errors.SizeMismatch(errors.PhaseLayout, a, b)
		}
	}
	return out, nil
}

// SingletonExpandedTensorElements is SingletonExpandedSize for tensor
// element counts.
func SingletonExpandedTensorElements(a, b int) (int, error) {
	switch {
	case a == b, b == 1:
		return a, nil
	case a == 1:
		return b, nil
	}
	return 0, errors.SizeMismatch(errors.PhaseLayout, a, b)
}
