// Package storage provides the reference-counted data blocks that views share.
//
// A Block is a raw byte buffer with an atomic reference count. Every view
// that addresses the buffer holds one reference; the buffer is released
// when the last one is dropped:
//
//	blk, err := storage.DefaultHeap().Alloc(4096)
//	view2 := blk.Retain() // second owner
//	blk.Release()         // buffer still alive
//	view2.Release()       // release hook runs here
//
// The reference count is safe to share between goroutines. The contents of
// the buffer are not protected; callers decide whether two views may be
// written concurrently (see view.View.Aliases).
//
// # Providers
//
// A Provider allocates blocks on behalf of a view being forged. Returning a
// nil block with a nil error declines the request and the view falls back
// to the default Heap:
//
//	type Provider interface {
//	    Allocate(req *Request) (*Block, error)
//	}
//
// MmapProvider maps large blocks straight from the operating system;
// package wasmmem places blocks inside a WebAssembly linear memory.
//
// # Registry
//
// A Registry tracks live blocks and notifies observers when blocks are
// allocated and released:
//
//	reg := storage.NewRegistry()
//	heap := storage.NewHeap(&storage.HeapConfig{Registry: reg})
//	reg.Subscribe(myObserver)
//
// Registry.Close releases every tracked block, including blocks that views
// still reference. Those views turn raw; their Release is a no-op.
package storage
