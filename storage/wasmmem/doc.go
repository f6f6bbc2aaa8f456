// Package wasmmem provides a storage.Provider that places view data inside
// a WebAssembly linear memory, so pixel buffers can be handed to a guest
// module by address without copying.
//
// The provider instantiates a module that only exports a memory. Its full
// capacity is reserved up front, so growing the memory never moves bytes
// that views already address:
//
//	p, err := wasmmem.New(ctx, &wasmmem.Config{MaxPages: 1024})
//	img := view.New(layout.Shape{640, 480}, 3, dtype.UInt8, view.WithProvider(p))
//	err = img.Forge()
//	addr, _ := p.GuestOffset(img.Block())
//
// Requests that no longer fit in MaxPages are declined and the view falls
// back to its heap.
package wasmmem
