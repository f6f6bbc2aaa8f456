package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseForge    Phase = "forge"    // storage allocation for a raw view
	PhaseReforge  Phase = "reforge"  // reshape/retype with storage reuse
	PhaseStrip    Phase = "strip"    // storage release
	PhaseLayout   Phase = "layout"   // stride and shape computations
	PhaseIndex    Phase = "index"    // offset/index translation
	PhaseAlias    Phase = "alias"    // overlap detection
	PhaseView     Phase = "view"     // derived views and setters
	PhaseAlloc    Phase = "alloc"    // default allocator
	PhaseProvider Phase = "provider" // external allocation providers
	PhaseDataType Phase = "dtype"    // data type names and conversions
)

// Kind categorizes the error
type Kind string

const (
	KindNotForged        Kind = "not_forged"
	KindNotRaw           Kind = "not_raw"
	KindSizeMismatch     Kind = "size_mismatch"
	KindIndexOutOfRange  Kind = "index_out_of_range"
	KindSizeExceedsLimit Kind = "size_exceeds_limit"
	KindAllocation       Kind = "allocation"
	KindIllegalArraySize Kind = "illegal_array_size"
	KindInvalidInput     Kind = "invalid_input"
	KindProtected        Kind = "protected"
	KindUnsupported      Kind = "unsupported"
	KindClosed           Kind = "closed"
)

// Sentinels for errors.Is; they match any phase.
var (
	ErrNotForged        = &Error{Kind: KindNotForged}
	ErrNotRaw           = &Error{Kind: KindNotRaw}
	ErrSizeMismatch     = &Error{Kind: KindSizeMismatch}
	ErrIndexOutOfRange  = &Error{Kind: KindIndexOutOfRange}
	ErrSizeExceedsLimit = &Error{Kind: KindSizeExceedsLimit}
	ErrAllocation       = &Error{Kind: KindAllocation}
	ErrIllegalArraySize = &Error{Kind: KindIllegalArraySize}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrProtected        = &Error{Kind: KindProtected}
	ErrUnsupported      = &Error{Kind: KindUnsupported}
	ErrClosed           = &Error{Kind: KindClosed}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kinds must be equal; phases are compared only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the dimension or field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotForged reports an operation that needs storage on a raw view
func NotForged(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotForged,
		Detail: "view is not forged",
	}
}

// NotRaw reports an operation that needs a raw view
func NotRaw(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotRaw,
		Detail: "view is already forged",
	}
}

// Protected reports an attempt to release or replace protected storage
func Protected(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProtected,
		Detail: "view is protected",
	}
}

// SizeMismatch reports incompatible operand shapes
func SizeMismatch(phase Phase, a, b any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSizeMismatch,
		Detail: fmt.Sprintf("sizes %v and %v do not match", a, b),
	}
}

// IndexOutOfRange reports a coordinate outside its dimension
func IndexOutOfRange(phase Phase, dim, index, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndexOutOfRange,
		Path:   []string{"dim", fmt.Sprint(dim)},
		Detail: fmt.Sprintf("index %d out of range (size %d)", index, size),
		Value:  index,
	}
}

// SizeExceedsLimit reports a pixel, sample or byte count that is zero or overflows
func SizeExceedsLimit(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSizeExceedsLimit,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// IllegalArraySize reports a coordinate or stride array of the wrong length
func IllegalArraySize(phase Phase, got, want int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIllegalArraySize,
		Detail: fmt.Sprintf("array has %d elements, want %d", got, want),
		Value:  got,
	}
}

// InvalidInput reports an argument that can never be valid
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed reports use of a provider or registry after Close
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
