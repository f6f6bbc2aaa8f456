package storage

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/cpu"

	"github.com/yaoyutaoTom/diplib/errors"
)

// CacheLineSize is the alignment used by the default heap.
const CacheLineSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// HeapConfig configures a Heap.
type HeapConfig struct {
	// Registry, if set, tracks every block the heap allocates.
	Registry *Registry
	// Alignment of the first byte of each block. Must be a power of two;
	// defaults to CacheLineSize.
	Alignment int
}

// Heap is the default allocator. Blocks are Go-managed byte slices whose
// first byte is aligned.
type Heap struct {
	registry  *Registry
	alignment int
}

var defaultHeap = NewHeap(nil)

// DefaultHeap returns the process-wide heap used by views without a heap
// of their own.
func DefaultHeap() *Heap {
	return defaultHeap
}

// NewHeap creates a heap. A nil config uses the defaults.
func NewHeap(cfg *HeapConfig) *Heap {
	h := &Heap{alignment: CacheLineSize}
	if cfg == nil {
		return h
	}
	if a := cfg.Alignment; a > 0 && a&(a-1) == 0 {
		h.alignment = a
	}
	h.registry = cfg.Registry
	return h
}

// Alignment returns the block alignment in bytes.
func (h *Heap) Alignment() int {
	return h.alignment
}

// Registry returns the heap's registry, or nil.
func (h *Heap) Registry() *Registry {
	return h.registry
}

// Alloc returns a zeroed block of n bytes.
func (h *Heap) Alloc(n int) (blk *Block, err error) {
	if n <= 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "block size must be positive, got %d", n)
	}
	defer func() {
		if r := recover(); r != nil {
			blk = nil
			err = errors.AllocationFailed(errors.PhaseAlloc, n, fmt.Errorf("%v", r))
		}
	}()

	buf := make([]byte, n+h.alignment-1)
	pad := 0
	if rem := int(uintptr(unsafe.Pointer(unsafe.SliceData(buf))) & uintptr(h.alignment-1)); rem != 0 {
		pad = h.alignment - rem
	}
	blk = NewBlock(buf[pad:pad+n:pad+n], nil)

	if h.registry != nil {
		if err := h.registry.Track(blk); err != nil {
			return nil, err
		}
	}
	Logger().Debug("block allocated",
		zap.Uint64("block", blk.ID()),
		zap.Int("bytes", n),
		zap.Int("alignment", h.alignment),
	)
	return blk, nil
}
