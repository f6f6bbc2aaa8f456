package view

import (
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
)

// Offset returns the offset of the pixel at coords relative to pixel 0,
// in samples.
func (v *View) Offset(coords []int) (int, error) {
	if !v.IsForged() {
		return 0, errors.NotForged(errors.PhaseIndex)
	}
	return layout.Offset(v.sizes, v.strides, coords)
}

// ByteOffset returns the position of the pixel at coords in Bytes.
func (v *View) ByteOffset(coords []int) (int, error) {
	off, err := v.Offset(coords)
	if err != nil {
		return 0, err
	}
	return v.origin + off*v.sampleSize(), nil
}

// OffsetToCoordinates returns the coordinates of the pixel at offset
// samples from pixel 0. For repeated use, see OffsetTranslator.
func (v *View) OffsetToCoordinates(offset int) ([]int, error) {
	t, err := v.OffsetTranslator()
	if err != nil {
		return nil, err
	}
	return t.Coordinates(offset), nil
}

// OffsetTranslator returns a translator from sample offsets to coordinates.
func (v *View) OffsetTranslator() (*layout.Translator, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseIndex)
	}
	return layout.NewTranslator(v.sizes, v.strides)
}

// Index returns the linear index of the pixel at coords, with dimension 0
// varying fastest.
func (v *View) Index(coords []int) (int, error) {
	if !v.IsForged() {
		return 0, errors.NotForged(errors.PhaseIndex)
	}
	return layout.Index(v.sizes, coords)
}

// IndexToCoordinates returns the coordinates of the pixel with the given
// linear index. For repeated use, see IndexTranslator.
func (v *View) IndexToCoordinates(index int) ([]int, error) {
	t, err := v.IndexTranslator()
	if err != nil {
		return nil, err
	}
	return t.Coordinates(index), nil
}

// IndexTranslator returns a translator from linear indices to coordinates.
func (v *View) IndexTranslator() (*layout.Translator, error) {
	if !v.IsForged() {
		return nil, errors.NotForged(errors.PhaseIndex)
	}
	return layout.NewIndexTranslator(v.sizes)
}
