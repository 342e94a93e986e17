// Package errors provides structured error types for the native bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the library and entry point involved and
// the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindBadSignature).
//		Library("MultiPlatformGUI").
//		Symbol("init").
//		Detail("entry point takes %d parameter(s)", 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LoadFailure(name, "read library", cause)
//	err := errors.NativeFailure(name, "cleanup", trap)
//
// Only load failures are expected in normal operation; the bridge logs them
// and degrades instead of propagating. All errors implement the standard error
// interface and support errors.Is/As.
package errors
