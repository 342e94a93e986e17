package native

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/errors"
)

// Entry point names every native runtime must export.
const (
	SymbolInit    = "init"
	SymbolRun     = "run"
	SymbolCleanup = "cleanup"
)

// RequiredSymbols lists the entry points resolved at load time.
var RequiredSymbols = []string{SymbolInit, SymbolRun, SymbolCleanup}

// Library is a loaded native runtime with its entry points resolved.
// It owns a dedicated wazero runtime that Close releases.
type Library struct {
	runtime wazero.Runtime
	entries map[string]api.Function
	name    string
	path    string
	closed  bool
}

func (l *Library) Name() string {
	return l.name
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

func (l *Library) Init(ctx context.Context) error {
	return l.call(ctx, SymbolInit)
}

// Run enters the native runtime's own loop. The bridge never calls it; it
// is kept callable for integrations that drive the native loop themselves.
func (l *Library) Run(ctx context.Context) error {
	return l.call(ctx, SymbolRun)
}

func (l *Library) Cleanup(ctx context.Context) error {
	return l.call(ctx, SymbolCleanup)
}

func (l *Library) call(ctx context.Context, symbol string) error {
	if l.closed {
		return errors.New(errors.PhaseNative, errors.KindNativeFailure).
			Library(l.name).
			Symbol(symbol).
			Detail("library closed").
			Build()
	}

	fn := l.entries[symbol]
	if fn == nil {
		return errors.New(errors.PhaseResolve, errors.KindMissingSymbol).
			Library(l.name).
			Symbol(symbol).
			Build()
	}

	Logger().Debug("calling entry point", zap.String("library", l.name), zap.String("symbol", symbol))
	if _, err := fn.Call(ctx); err != nil {
		return errors.NativeFailure(l.name, symbol, err)
	}
	return nil
}

// Close releases the module and its runtime. Safe to call more than once.
func (l *Library) Close(ctx context.Context) error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.entries = nil
	return l.runtime.Close(ctx)
}
