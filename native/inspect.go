package native

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/native-bridge/errors"
)

// Function describes one imported or exported function of a library.
type Function struct {
	Module  string
	Name    string
	Params  []string
	Results []string
}

// EntryPoint reports how a required symbol resolved.
type EntryPoint struct {
	Symbol   string
	Present  bool
	Callable bool
}

// Manifest is the static view of a library: what it exports, what it needs
// from the host, and whether Load would accept it.
type Manifest struct {
	Library     string
	Path        string
	Exports     []Function
	Imports     []Function
	EntryPoints []EntryPoint
}

// Loadable reports whether every required entry point is present and
// callable without arguments.
func (m *Manifest) Loadable() bool {
	for _, ep := range m.EntryPoints {
		if !ep.Callable {
			return false
		}
	}
	return true
}

// Inspect compiles the named library without instantiating it.
func (l *Loader) Inspect(ctx context.Context, name string) (*Manifest, error) {
	path, wasm, err := l.read(ctx, name)
	if err != nil {
		return nil, err
	}

	rt := wazero.NewRuntimeWithConfig(ctx, l.runtimeConfig())
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.LoadFailure(name, "compile module", err)
	}
	defer compiled.Close(ctx)

	m := &Manifest{Library: name, Path: path}

	exports := compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for n := range exports {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		m.Exports = append(m.Exports, describe("", n, exports[n]))
	}

	for _, def := range compiled.ImportedFunctions() {
		mod, n, _ := def.Import()
		m.Imports = append(m.Imports, describe(mod, n, def))
	}

	for _, sym := range RequiredSymbols {
		def, ok := exports[sym]
		m.EntryPoints = append(m.EntryPoints, EntryPoint{
			Symbol:   sym,
			Present:  ok,
			Callable: ok && len(def.ParamTypes()) == 0,
		})
	}
	return m, nil
}

func describe(module, name string, def api.FunctionDefinition) Function {
	f := Function{Module: module, Name: name}
	for _, t := range def.ParamTypes() {
		f.Params = append(f.Params, api.ValueTypeName(t))
	}
	for _, t := range def.ResultTypes() {
		f.Results = append(f.Results, api.ValueTypeName(t))
	}
	return f
}
