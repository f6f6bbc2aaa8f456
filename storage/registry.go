package storage

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/yaoyutaoTom/diplib/errors"
)

// EventType identifies a block lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Event describes one block lifecycle change.
type Event struct {
	Block *Block
	ID    uint64
	Size  int
	Type  EventType
}

// Observer receives notifications about block lifecycle events.
type Observer interface {
	OnBlockEvent(Event)
}

// Registry tracks live blocks and reports their lifecycle to observers.
type Registry struct {
	blocks    map[uint64]*Block
	observers []Observer
	bytes     int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks: make(map[uint64]*Block),
	}
}

// Track adds b to the registry. The block is untracked automatically when
// it is released.
func (r *Registry) Track(b *Block) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.Closed(errors.PhaseAlloc, "registry")
	}
	if _, ok := r.blocks[b.id]; ok {
		r.mu.Unlock()
		return nil
	}
	r.blocks[b.id] = b
	r.bytes += b.Len()
	b.registry = r
	r.mu.Unlock()

	r.notify(Event{
		Type:  EventAllocated,
		Block: b,
		ID:    b.id,
		Size:  b.Len(),
	})
	return nil
}

func (r *Registry) untrack(b *Block, size int) {
	r.mu.Lock()
	_, ok := r.blocks[b.id]
	if ok {
		delete(r.blocks, b.id)
		r.bytes -= size
	}
	r.mu.Unlock()

	if ok {
		r.notify(Event{
			Type:  EventReleased,
			Block: b,
			ID:    b.id,
			Size:  size,
		})
	}
}

// Len returns the number of live tracked blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Bytes returns the total size of live tracked blocks.
func (r *Registry) Bytes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytes
}

// Each calls fn for every live block until fn returns false.
func (r *Registry) Each(fn func(*Block) bool) {
	r.mu.RLock()
	blocks := make([]*Block, 0, len(r.blocks))
	for _, b := range r.blocks {
		blocks = append(blocks, b)
	}
	r.mu.RUnlock()

	for _, b := range blocks {
		if !fn(b) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close releases all tracked blocks and stops accepting new ones. Blocks
// with outstanding references are freed as well: their Bytes become nil,
// Released reports true, and views over them are no longer forged. Later
// Release calls on such blocks return nil.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	blocks := make([]*Block, 0, len(r.blocks))
	for _, b := range r.blocks {
		blocks = append(blocks, b)
	}
	r.mu.Unlock()

	var err error
	for _, b := range blocks {
		err = multierr.Append(err, b.forceRelease())
	}
	return err
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnBlockEvent(e)
	}
}
