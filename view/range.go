package view

import (
	"fmt"

	"github.com/yaoyutaoTom/diplib/errors"
)

// Range selects pixels along one dimension. Start and Stop are inclusive;
// negative values count from the end, so -1 is the last pixel. When Start
// is past Stop the selection runs backwards. A zero Step means 1; its sign
// is ignored.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// FullRange selects every pixel.
func FullRange() Range { return Range{Start: 0, Stop: -1, Step: 1} }

// Single selects the pixel at index i.
func Single(i int) Range { return Range{Start: i, Stop: i, Step: 1} }

func (r Range) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Start, r.Stop, r.Step)
}

// resolve returns the first index, the number of selected pixels and the
// signed step for a dimension of the given size.
func (r Range) resolve(dim, size int) (start, count, step int, err error) {
	start, stop := r.Start, r.Stop
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 || start >= size {
		return 0, 0, 0, errors.IndexOutOfRange(errors.PhaseView, dim, r.Start, size)
	}
	if stop < 0 || stop >= size {
		return 0, 0, 0, errors.IndexOutOfRange(errors.PhaseView, dim, r.Stop, size)
	}
	step = r.Step
	if step < 0 {
		step = -step
	}
	if step == 0 {
		step = 1
	}
	if start <= stop {
		return start, (stop-start)/step + 1, step, nil
	}
	return start, (start-stop)/step + 1, -step, nil
}
