// Package view implements strided image views over shared storage blocks.
//
// A View describes an n-dimensional image whose pixels hold a fixed number
// of tensor elements (samples) of one data type. The description is a shape,
// a signed stride per dimension and a stride for the tensor dimension, all
// measured in samples. A view starts out raw:
//
//	v := view.New(layout.Shape{256, 256}, 3, dtype.UInt8)
//	v.SetStrides(layout.Strides{3, 768}) // optional, before forging
//
// Forge attaches storage. When the strides are invalid or do not match the
// shape, normal strides (tensor elements interleaved, dimension 0 fastest)
// are used instead:
//
//	if err := v.Forge(); err != nil {
//	    return err
//	}
//	defer v.Release()
//
// # Derived views
//
// Crop, Mirror, SwapDimensions, Permute, TensorElement, Real, Imaginary and
// the singleton expansions return new views of the same block. They share
// pixels with the original and hold their own reference to the block:
//
//	roi, err := v.Crop(view.Range{Start: 10, Stop: 99, Step: 1}, view.FullRange())
//
// Use Aliases to find out whether two views may address the same bytes
// before writing to one while reading the other.
//
// # Storage
//
// By default blocks come from storage.DefaultHeap. WithHeap selects another
// heap and WithProvider installs a storage.Provider that is asked first;
// a provider may decline, in which case the heap is used.
//
// Views are not safe for concurrent mutation. Distinct views sharing a block
// may be used from different goroutines.
package view
