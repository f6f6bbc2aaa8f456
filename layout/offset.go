package layout

import (
	"strconv"

	"github.com/yaoyutaoTom/diplib/errors"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

func checkCoordinates(sizes Shape, coords []int) error {
	if len(coords) != len(sizes) {
		return errors.IllegalArraySize(errors.PhaseIndex, len(coords), len(sizes))
	}
	for i, c := range coords {
		if c < 0 || c >= sizes[i] {
			return errors.IndexOutOfRange(errors.PhaseIndex, i, c, sizes[i])
		}
	}
	return nil
}

// Offset returns the offset, in samples, of coords relative to the origin.
func Offset(sizes Shape, strides Strides, coords []int) (int, error) {
	if len(strides) != len(sizes) {
		return 0, errors.IllegalArraySize(errors.PhaseIndex, len(strides), len(sizes))
	}
	if err := checkCoordinates(sizes, coords); err != nil {
		return 0, err
	}
	offset := 0
	for i, c := range coords {
		offset += c * strides[i]
	}
	return offset, nil
}

// Index returns the linear index of coords, dimension 0 varying fastest.
func Index(sizes Shape, coords []int) (int, error) {
	if err := checkCoordinates(sizes, coords); err != nil {
		return 0, err
	}
	index := 0
	for i := len(sizes) - 1; i >= 0; i-- {
		index = index*sizes[i] + coords[i]
	}
	return index, nil
}
