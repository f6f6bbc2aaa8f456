// Package layout implements shape and stride bookkeeping for strided views.
//
// Sizes and strides are parallel slices. Strides are in units of samples and
// may be negative (the dimension is traversed backwards) or zero (a
// singleton dimension that was expanded without copying). A view's tensor
// dimension is handled by callers as one more (size, stride) pair, see
// WithTensor.
//
// # Normal Strides
//
// The default layout is contiguous with dimension 0 varying fastest and the
// tensor elements of a pixel stored next to each other:
//
//	strides := layout.NormalStrides(layout.Shape{50, 80}, 3) // [3 150]
//
// # Block Extent
//
// DataBlock returns the number of samples spanned by a layout and the
// (non-positive) offset of its lowest sample relative to the origin:
//
//	size, start := layout.DataBlock(layout.Shape{4}, layout.Strides{-1})
//	// size == 4, start == -3
//
// # Translator
//
// A Translator converts a linear offset (or a linear index, see
// NewIndexTranslator) back into coordinates for a fixed layout:
//
//	tr, _ := layout.NewTranslator(sizes, strides)
//	coords := tr.Coordinates(offset)
package layout
