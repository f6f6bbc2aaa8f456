package view

import (
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
)

// Aliases reports whether some sample of v and some sample of other share
// a byte. Both views must be forged. The result does not depend on the
// order of the operands.
func (v *View) Aliases(other *View) (bool, error) {
	if !v.IsForged() || !other.IsForged() {
		return false, errors.NotForged(errors.PhaseAlias)
	}
	if v.block != other.block {
		return false, nil
	}
	if v.origin == other.origin {
		return true, nil
	}
	a, b := v, other
	if a.origin > b.origin {
		a, b = b, a
	}
	return overlaps(footprintOf(a), footprintOf(b)), nil
}

// footprint is the set of offsets a view addresses, in units of unit
// bytes from the start of the block.
type footprint struct {
	sizes   layout.Shape
	strides layout.Strides
	origin  int
	unit    int
}

func footprintOf(v *View) footprint {
	sizes, strides := v.withTensor()
	return footprint{sizes: sizes, strides: strides, origin: v.origin, unit: v.sampleSize()}
}

// split expresses each sample as n consecutive smaller samples.
func (f *footprint) split(n int) {
	for i := range f.strides {
		f.strides[i] *= n
	}
	f.strides = append(f.strides, 1)
	f.sizes = append(f.sizes, n)
	f.unit /= n
}

// normalize drops singleton dimensions, makes all strides non-negative by
// moving the origin to the lowest offset, and sorts by stride.
func (f *footprint) normalize() {
	f.sizes, f.strides = layout.RemoveSingletons(f.sizes, f.strides)
	for i, s := range f.strides {
		if s < 0 {
			f.strides[i] = -s
			f.origin -= (f.sizes[i] - 1) * -s
		}
	}
	layout.SortPairs(f.strides, f.sizes)
}

func overlaps(a, b footprint) bool {
	switch {
	case a.unit > b.unit:
		a.split(a.unit / b.unit)
	case b.unit > a.unit:
		b.split(b.unit / a.unit)
	}
	a.origin /= a.unit
	b.origin /= b.unit

	strideA, sizeA, startA, _ := layout.SimpleStride(a.sizes, a.strides)
	strideB, sizeB, startB, _ := layout.SimpleStride(b.sizes, b.strides)
	startA += a.origin
	startB += b.origin
	if startA+sizeA <= startB || startB+sizeB <= startA {
		return false
	}
	if strideA > 1 && strideA == strideB && (startA-startB)%strideA != 0 {
		return false
	}

	a.normalize()
	b.normalize()
	return gridsOverlap(a, b)
}

// gridsOverlap merges the sorted dimensions of both footprints into one
// coordinate system and checks every merged dimension for overlap.
func gridsOverlap(a, b footprint) bool {
	na, nb := len(a.strides), len(b.strides)
	ia, ib := 0, 0
	for ia < na && a.strides[ia] == 0 {
		ia++
	}
	for ib < nb && b.strides[ib] == 0 {
		ib++
	}

	var common, stridesA, stridesB, sizesA, sizesB []int
	for ia < na || ib < nb {
		sa, sb, da, db := 0, 0, 1, 1
		if ia < na {
			sa, da = a.strides[ia], a.sizes[ia]
		}
		if ib < nb {
			sb, db = b.strides[ib], b.sizes[ib]
		}
		switch {
		case sa == 0:
			sa = sb
			ib++
		case sb == 0:
			sb = sa
			ia++
		case ia+1 < na && a.strides[ia+1] <= sb*(db-1):
			// b steps over this whole dimension of a.
			sb, db = sa, 1
			ia++
		case ib+1 < nb && b.strides[ib+1] <= sa*(da-1):
			sa, da = sb, 1
			ib++
		default:
			ia++
			ib++
		}
		cs := 1
		if len(common) > 0 {
			cs = gcd(sa, sb)
		}
		common = append(common, cs)
		stridesA = append(stridesA, sa/cs)
		stridesB = append(stridesB, sb/cs)
		sizesA = append(sizesA, da)
		sizesB = append(sizesB, db)
	}

	originA := splitOffset(a.origin, common)
	originB := splitOffset(b.origin, common)
	for i := range common {
		if originA[i]+(sizesA[i]-1)*stridesA[i] < originB[i] ||
			originB[i]+(sizesB[i]-1)*stridesB[i] < originA[i] ||
			stridesA[i] == stridesB[i] && stridesA[i] > 1 && (originA[i]-originB[i])%stridesA[i] != 0 {
			// Disjoint in this dimension. That proves disjointness only if
			// both views fit the merged coordinates without carries.
			return !fitsGrid(common, originA, stridesA, sizesA) || !fitsGrid(common, originB, stridesB, sizesB)
		}
	}
	return true
}

// fitsGrid reports whether every offset of a view, written in the mixed
// radix given by common, has digit i equal to origin[i] + k*strides[i].
func fitsGrid(common, origin, strides, sizes []int) bool {
	for i := 0; i+1 < len(common); i++ {
		if common[i+1]%common[i] != 0 {
			return false
		}
		if origin[i]+(sizes[i]-1)*strides[i] >= common[i+1]/common[i] {
			return false
		}
	}
	return true
}

// splitOffset writes offset in the mixed radix given by strides, largest
// stride first.
func splitOffset(offset int, strides []int) []int {
	coords := make([]int, len(strides))
	for i := len(strides) - 1; i >= 0; i-- {
		coords[i] = offset / strides[i]
		offset %= strides[i]
	}
	return coords
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
