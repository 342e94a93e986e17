package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseLoad      Phase = "load"      // reading and compiling the library
	PhaseResolve   Phase = "resolve"   // entry point lookup
	PhaseLifecycle Phase = "lifecycle" // host event handling
	PhaseNative    Phase = "native"    // calls into the native runtime
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseShell     Phase = "shell"     // host shell plumbing
	PhaseHost      Phase = "host"      // host function registration
)

// Kind categorizes the error
type Kind string

const (
	KindLoadFailure       Kind = "load_failure"
	KindMissingSymbol     Kind = "missing_symbol"
	KindBadSignature      Kind = "bad_signature"
	KindInvalidTransition Kind = "invalid_transition"
	KindNativeFailure     Kind = "native_failure"
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindRegistration      Kind = "registration"
	KindInstantiation     Kind = "instantiation"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Library string
	Symbol  string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Library != "" {
		b.WriteString(" library ")
		b.WriteString(e.Library)
	}
	if e.Symbol != "" {
		b.WriteString(" symbol ")
		b.WriteString(e.Symbol)
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
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

// Library sets the library name
func (b *Builder) Library(name string) *Builder {
	b.err.Library = name
	return b
}

// Symbol sets the entry point name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
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

// Sentinels for errors.Is checks against a phase/kind pair.
var (
	ErrLoadFailure       = &Error{Phase: PhaseLoad, Kind: KindLoadFailure}
	ErrInvalidTransition = &Error{Phase: PhaseLifecycle, Kind: KindInvalidTransition}
	ErrNativeFailure     = &Error{Phase: PhaseNative, Kind: KindNativeFailure}
)

// LoadFailure creates a library load error
func LoadFailure(library, detail string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindLoadFailure,
		Library: library,
		Detail:  detail,
		Cause:   cause,
	}
}

// BadSignature reports an entry point that cannot be called without arguments
func BadSignature(library, symbol string, params int) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindBadSignature,
		Library: library,
		Symbol:  symbol,
		Detail:  fmt.Sprintf("entry point takes %d parameter(s), want 0", params),
	}
}

// InvalidTransition creates an out-of-order lifecycle event error
func InvalidTransition(state, event string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindInvalidTransition,
		Detail: fmt.Sprintf("event %s ignored in state %s", event, state),
	}
}

// NativeFailure wraps an error raised by a native entry point
func NativeFailure(library, symbol string, cause error) *Error {
	return &Error{
		Phase:   PhaseNative,
		Kind:    KindNativeFailure,
		Library: library,
		Symbol:  symbol,
		Cause:   cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates an error for a library file that could not be located
func NotFound(library, detail string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindNotFound,
		Library: library,
		Detail:  detail,
		Cause:   cause,
	}
}

// Registration creates a host function registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s.%s", namespace, name),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(library string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindInstantiation,
		Library: library,
		Detail:  "instantiate module",
		Cause:   cause,
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

// MissingSymbolsError is returned when a library lacks required entry points
type MissingSymbolsError struct {
	Library string
	Symbols []string
}

// NewMissingSymbolsError creates an error listing the absent entry points in
// sorted order.
func NewMissingSymbolsError(library string, symbols []string) *MissingSymbolsError {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	return &MissingSymbolsError{
		Library: library,
		Symbols: sorted,
	}
}

func (e *MissingSymbolsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[resolve] missing_symbol: no symbols specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "library %s is missing %d entry point(s):", e.Library, len(e.Symbols))
	for _, s := range e.Symbols {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingSymbolsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingSymbolsError:
		return true
	case *Error:
		return t.Phase == PhaseResolve && t.Kind == KindMissingSymbol
	}
	return false
}
