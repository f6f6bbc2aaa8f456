package storage

// Provider allocates blocks for views being forged.
//
// Allocate returns a block large enough for the layout left in req. A nil
// block with a nil error declines the request; the view then allocates
// from its Heap. A provider that writes back strides must leave a valid
// layout in req.
type Provider interface {
	Allocate(req *Request) (*Block, error)
}
