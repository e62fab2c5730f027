// Package errors provides structured error types for the remote object bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: method path, Go/script type names, and cause chain.
//
// These errors describe host-side failures only: a malformed binding, a broken
// transport, an unreadable config file. Failures visible to the calling script
// are the closed set of wire error codes and never surface as Go errors.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
//		Path("greet").
//		GoType("func(int) string").
//		Detail("binding must take the receiver as first parameter").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidTag(errors.PhaseDecode, path, 9)
//	err := errors.NotFound(errors.PhaseHost, "object", "17")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
