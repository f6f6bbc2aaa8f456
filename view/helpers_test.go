package view

import (
	"testing"

	"github.com/yaoyutaoTom/diplib/dtype"
	"github.com/yaoyutaoTom/diplib/layout"
	"github.com/yaoyutaoTom/diplib/storage"
)

func mustForge(t *testing.T, sizes layout.Shape, te int, dt dtype.DataType, opts ...Option) *View {
	t.Helper()
	v, err := NewForged(sizes, te, dt, opts...)
	if err != nil {
		t.Fatalf("NewForged(%v, %d, %v): %v", sizes, te, dt, err)
	}
	return v
}

// must returns a function that unwraps a (*View, error) result, failing t
// on error. Use it as must(t)(v.Crop(...)).
func must(t *testing.T) func(*View, error) *View {
	return func(v *View, err error) *View {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
}

func mustAlias(t *testing.T, a, b *View) bool {
	t.Helper()
	ab, err := a.Aliases(b)
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	ba, err := b.Aliases(a)
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	if ab != ba {
		t.Fatalf("Aliases not symmetric: a.Aliases(b)=%v, b.Aliases(a)=%v", ab, ba)
	}
	return ab
}

// touchedBytes lists every byte of the block a forged view addresses.
func touchedBytes(v *View) map[int]bool {
	sizes, strides := v.withTensor()
	out := make(map[int]bool)
	coords := make([]int, len(sizes))
	unit := v.sampleSize()
	for {
		off := 0
		for i, c := range coords {
			off += c * strides[i]
		}
		for b := range unit {
			out[v.origin+off*unit+b] = true
		}
		i := 0
		for ; i < len(coords); i++ {
			coords[i]++
			if coords[i] < sizes[i] {
				break
			}
			coords[i] = 0
		}
		if i == len(coords) {
			return out
		}
	}
}

func sharesBytes(a, b *View) bool {
	if a.block != b.block {
		return false
	}
	bb := touchedBytes(b)
	for off := range touchedBytes(a) {
		if bb[off] {
			return true
		}
	}
	return false
}

type countingObserver struct {
	allocated int
	released  int
}

func (o *countingObserver) OnBlockEvent(e storage.Event) {
	switch e.Type {
	case storage.EventAllocated:
		o.allocated++
	case storage.EventReleased:
		o.released++
	}
}

func trackedHeap() (*storage.Heap, *storage.Registry, *countingObserver) {
	reg := storage.NewRegistry()
	obs := &countingObserver{}
	reg.Subscribe(obs)
	return storage.NewHeap(&storage.HeapConfig{Registry: reg}), reg, obs
}
