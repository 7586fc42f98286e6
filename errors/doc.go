// Package errors provides structured error types for the autoref library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: a human-readable detail, the offending value,
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseArena, errors.KindInvalidHandle).
//		Value(handle).
//		Detail("freed twice").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(h)
//	err := errors.Overflow(count, size)
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Promotion failure is deliberately not an error: Lock on an expired
// reference returns a Null pointer the caller branches on.
package errors
