// Package dtype defines the elemental sample types of an image.
//
// DataType is a closed enumeration of eleven sample kinds. All per-type facts
// (byte size, name, class membership) live in one trait table indexed by the
// tag, so every query is a table lookup:
//
//	dt := dtype.SComplex
//	dt.Size()      // 8
//	dt.IsComplex() // true
//	dt.Real()      // dtype.SFloat
//
// # Classes
//
// Classes is a bitset of data types. Named unions mirror the common
// groupings used when validating operator inputs:
//
//	if !dtype.ClassFlex.Contains(dt) {
//	    // operator needs floating-point or complex samples
//	}
//
// # Type Promotion
//
// The Suggest* helpers choose an output type for an operation on inputs of
// the given types, e.g. SuggestFloat(UInt8) is SFloat and
// SuggestDyadicOperation(UInt8, SInt8) is SInt16.
//
// # WIT Bridge
//
// FromWIT and DataType.WIT map component-model primitive types onto sample
// types, for buffers shared with a WebAssembly guest.
package dtype
