package native

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/errors"
)

// HostNamespace is the import module name of the built-in host functions.
const HostNamespace = "host"

// ExitHandler receives a native runtime's request to finish. The argument is
// the library name.
type ExitHandler func(library string)

// HostRegistry holds Go functions exposed to native runtimes as imports,
// grouped by namespace (the wasm import module name).
type HostRegistry struct {
	funcs map[string]map[string]any
	exit  ExitHandler
	mu    sync.RWMutex
}

// NewHostRegistry returns a registry preloaded with the "host" namespace.
func NewHostRegistry() *HostRegistry {
	r := &HostRegistry{
		funcs: make(map[string]map[string]any),
	}
	r.funcs[HostNamespace] = map[string]any{
		"log":          r.hostLog,
		"request_exit": r.hostRequestExit,
	}
	return r
}

// RegisterFunc registers fn as namespace.name. fn follows wazero's WithFunc
// rules: optional context.Context and api.Module leading parameters, then
// numeric parameters and results.
func (r *HostRegistry) RegisterFunc(namespace, name string, fn any) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Symbol(name).
			Detail("handler for %s.%s must be a function, got %T", namespace, name, fn).
			Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]any)
	}
	r.funcs[namespace][name] = fn
	return nil
}

// SetExitHandler installs the receiver of host.request_exit calls.
func (r *HostRegistry) SetExitHandler(h ExitHandler) {
	r.mu.Lock()
	r.exit = h
	r.mu.Unlock()
}

// Namespaces returns the registered namespaces in sorted order.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Instantiate builds one wazero host module per namespace in rt.
// Must run before the native module is instantiated.
func (r *HostRegistry) Instantiate(ctx context.Context, rt wazero.Runtime) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	namespaces := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		funcs := r.funcs[ns]
		names := make([]string, 0, len(funcs))
		for name := range funcs {
			names = append(names, name)
		}
		sort.Strings(names)

		b := rt.NewHostModuleBuilder(ns)
		for _, name := range names {
			b.NewFunctionBuilder().WithFunc(funcs[name]).Export(name)
		}
		if _, err := b.Instantiate(ctx); err != nil {
			return errors.Registration(ns, "*", err)
		}
	}
	return nil
}

func (r *HostRegistry) hostLog(_ context.Context, m api.Module, ptr, length uint32) {
	mem := m.Memory()
	if mem == nil {
		Logger().Warn("host.log called by module without memory", zap.String("library", m.Name()))
		return
	}
	msg, ok := mem.Read(ptr, length)
	if !ok {
		Logger().Warn("host.log message out of range",
			zap.String("library", m.Name()),
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", length))
		return
	}
	Logger().Info(string(msg), zap.String("library", m.Name()))
}

func (r *HostRegistry) hostRequestExit(_ context.Context, m api.Module) {
	r.mu.RLock()
	h := r.exit
	r.mu.RUnlock()

	Logger().Info("native runtime requested exit", zap.String("library", m.Name()))
	if h != nil {
		h(m.Name())
	}
}
