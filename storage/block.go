package storage

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yaoyutaoTom/diplib/errors"
)

var blockIDs atomic.Uint64

// Block is a shared, reference-counted byte buffer.
type Block struct {
	data     []byte
	release  func([]byte) error
	registry *Registry
	refs     atomic.Int64
	id       uint64
	forced   atomic.Bool
	freed    atomic.Bool
}

// NewBlock wraps data in a block holding one reference. release, if not
// nil, runs once when the last reference is dropped.
func NewBlock(data []byte, release func([]byte) error) *Block {
	b := &Block{
		data:    data,
		release: release,
		id:      blockIDs.Add(1),
	}
	b.refs.Store(1)
	return b
}

// ID returns a process-unique identifier for the block.
func (b *Block) ID() uint64 {
	return b.id
}

// Bytes returns the whole buffer. It is nil after the block was released.
func (b *Block) Bytes() []byte {
	return b.data
}

// Len returns the buffer length in bytes.
func (b *Block) Len() int {
	return len(b.data)
}

// Released reports whether the buffer has been freed, either by the last
// Release or by Registry.Close.
func (b *Block) Released() bool {
	return b.freed.Load()
}

// RefCount returns the number of live references.
func (b *Block) RefCount() int64 {
	return b.refs.Load()
}

// Retain adds a reference. The caller must already hold one.
func (b *Block) Retain() *Block {
	b.refs.Add(1)
	return b
}

// Release drops a reference and frees the buffer when it was the last one.
func (b *Block) Release() error {
	n := b.refs.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		b.refs.Store(0)
		if b.forced.Load() {
			return nil
		}
		return errors.InvalidInput(errors.PhaseAlloc, "block %d released more often than retained", b.id)
	}
	return b.free()
}

// forceRelease frees the buffer regardless of outstanding references.
// Later Release calls from former owners are ignored.
func (b *Block) forceRelease() error {
	b.forced.Store(true)
	if b.refs.Swap(0) <= 0 {
		return nil
	}
	return b.free()
}

func (b *Block) free() error {
	b.freed.Store(true)
	data := b.data
	b.data = nil

	var err error
	if b.release != nil {
		err = b.release(data)
	}
	if b.registry != nil {
		b.registry.untrack(b, len(data))
	}
	Logger().Debug("block released",
		zap.Uint64("block", b.id),
		zap.Int("bytes", len(data)),
		zap.Error(err),
	)
	return err
}
