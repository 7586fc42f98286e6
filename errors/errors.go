package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the allocation lifecycle the error occurred
type Phase string

const (
	PhaseAlloc Phase = "alloc" // block allocation
	PhaseArena Phase = "arena" // handle table operations
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation    Kind = "allocation"
	KindInvalidHandle Kind = "invalid_handle"
	KindOverflow      Kind = "overflow"
	KindClosed        Kind = "closed"
	KindLeaked        Kind = "leaked"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// InvalidHandle creates an invalid handle error
func InvalidHandle(handle uint32) *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("handle %d is not live", handle),
		Value:  handle,
	}
}

// Overflow creates a size overflow error
func Overflow(count, size int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%d x %d bytes overflows", count, size),
	}
}

// Closed creates an arena-closed error
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseArena,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}
