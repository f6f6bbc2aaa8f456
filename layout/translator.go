package layout

import "github.com/yaoyutaoTom/diplib/errors"

// Translator converts offsets into coordinates for one fixed layout.
// It is immutable after construction and safe for concurrent use.
type Translator struct {
	// strides are made positive; dimensions that cannot carry a
	// coordinate get stride 1.
	strides []int
	// sizes are negated for dimensions whose stride was negative.
	sizes []int
	// order visits dimensions by decreasing stride, ignorable ones last.
	order  []int
	offset int
}

// NewTranslator prepares offset-to-coordinate conversion for the layout.
func NewTranslator(sizes Shape, strides Strides) (*Translator, error) {
	n := len(strides)
	if len(sizes) != n {
		return nil, errors.IllegalArraySize(errors.PhaseIndex, len(sizes), n)
	}
	t := &Translator{
		strides: strides.Clone(),
		sizes:   sizes.Clone(),
		order:   make([]int, n),
	}
	if t.strides == nil {
		t.strides, t.sizes = []int{}, []int{}
	}

	// Size-1 and zero-stride dimensions always decode to 0 and are skipped
	// here. A mirrored dimension is decoded forwards from its far end, and
	// the coordinate is flipped back in CoordinatesTo.
	nelem := 0
	for i := range n {
		if t.sizes[i] != 1 && t.strides[i] != 0 {
			t.order[nelem] = i
			nelem++
			if t.strides[i] < 0 {
				t.strides[i] = -t.strides[i]
				t.offset += t.strides[i] * (t.sizes[i] - 1)
				t.sizes[i] = -t.sizes[i]
			}
		}
	}

	for i := 1; i < nelem; i++ {
		keep := t.order[i]
		key := t.strides[keep]
		j := i
		for j > 0 && t.strides[t.order[j-1]] < key {
			t.order[j] = t.order[j-1]
			j--
		}
		t.order[j] = keep
	}

	for i := range n {
		if t.sizes[i] == 1 || t.strides[i] == 0 {
			t.order[nelem] = i
			nelem++
			// The residue is 0 by now; any non-zero stride works.
			t.strides[i] = 1
		}
	}
	return t, nil
}

// NewIndexTranslator prepares index-to-coordinate conversion: indices
// count pixels with dimension 0 varying fastest.
func NewIndexTranslator(sizes Shape) (*Translator, error) {
	return NewTranslator(sizes, NormalStrides(sizes, 1))
}

// Dimensionality returns the number of coordinates produced.
func (t *Translator) Dimensionality() int {
	return len(t.strides)
}

// Coordinates returns the coordinates of the sample at offset.
func (t *Translator) Coordinates(offset int) []int {
	coords := make([]int, len(t.strides))
	t.CoordinatesTo(coords, offset)
	return coords
}

// CoordinatesTo writes the coordinates of offset into dst without
// allocating. dst must have Dimensionality elements.
func (t *Translator) CoordinatesTo(dst []int, offset int) {
	offset += t.offset
	for _, j := range t.order {
		c := offset / t.strides[j]
		offset %= t.strides[j]
		if t.sizes[j] < 0 {
			c = -t.sizes[j] - c - 1
		}
		dst[j] = c
	}
}
