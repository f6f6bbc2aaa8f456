// Package errors provides structured error types for the diplib view model.
//
// Errors are categorized by Phase (which operation failed) and Kind (error
// category). The Error type carries the offending dimension path, the value
// that triggered the failure and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseIndex, errors.KindIndexOutOfRange).
//		Path("dim", "2").
//		Value(17).
//		Detail("coordinate %d exceeds size %d", 17, 16).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotForged(errors.PhaseAlias)
//	err := errors.IndexOutOfRange(errors.PhaseIndex, 2, 17, 16)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches any phase, so the exported sentinels
// can be used directly:
//
//	if errors.Is(err, errors.ErrNotForged) { ... }
package errors
