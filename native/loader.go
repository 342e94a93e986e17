package native

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/errors"
)

// Config holds configuration for library loading
type Config struct {
	// Stdout and Stderr receive the module's WASI output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Paths are the directories searched for bare library names, in order.
	// Empty means the working directory.
	Paths []string

	// RetryInterval is the pause between read attempts.
	RetryInterval time.Duration

	// Retries is how many extra read attempts are made when the library file
	// is absent or unreadable. Compile and resolve failures are never retried.
	Retries uint64

	// MemoryLimitPages caps linear memory in 64KB pages. 0 keeps wazero's default.
	MemoryLimitPages uint32

	// WASI instantiates wasi_snapshot_preview1 for runtimes built against libc.
	WASI bool
}

// Loader resolves library names and loads native runtimes.
type Loader struct {
	hosts *HostRegistry
	cfg   Config
}

// NewLoader creates a loader. A nil cfg uses defaults.
func NewLoader(cfg *Config) *Loader {
	l := &Loader{hosts: NewHostRegistry()}
	if cfg != nil {
		l.cfg = *cfg
	}
	if len(l.cfg.Paths) == 0 {
		l.cfg.Paths = []string{"."}
	}
	return l
}

// Hosts returns the registry bound into every library this loader creates.
// Register functions BEFORE calling Load.
func (l *Loader) Hosts() *HostRegistry {
	return l.hosts
}

// FileNames returns the file names probed for a bare library name.
func FileNames(name string) []string {
	return []string{"lib" + name + ".wasm", name + ".wasm"}
}

// Resolve maps a library name to a file path.
func (l *Loader) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.InvalidInput(errors.PhaseLoad, "library name cannot be empty")
	}

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) || filepath.Ext(name) == ".wasm" {
		st, err := os.Stat(name)
		if err != nil {
			return "", errors.NotFound(name, "stat library file", err)
		}
		if st.IsDir() {
			return "", errors.InvalidInput(errors.PhaseLoad, name+" is a directory")
		}
		return name, nil
	}

	for _, dir := range l.cfg.Paths {
		for _, file := range FileNames(name) {
			p := filepath.Join(dir, file)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}
	return "", errors.NotFound(name, "searched "+strings.Join(l.cfg.Paths, string(filepath.ListSeparator)), nil)
}

func (l *Loader) read(ctx context.Context, name string) (string, []byte, error) {
	var (
		path string
		data []byte
	)

	attempt := 0
	op := func() error {
		attempt++
		p, err := l.Resolve(name)
		if err != nil {
			if errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput}) {
				return backoff.Permanent(err)
			}
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		path, data = p, b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		Logger().Debug("library not readable, retrying",
			zap.String("library", name),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(l.cfg.RetryInterval), l.cfg.Retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", nil, errors.LoadFailure(name, "read library", err)
	}
	return path, data, nil
}

func (l *Loader) runtimeConfig() wazero.RuntimeConfig {
	cfg := wazero.NewRuntimeConfig()
	if l.cfg.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}
	return cfg
}

// Load reads, compiles and instantiates the named library and resolves its
// entry points. Every failure is a load failure; a library missing entry
// points unwraps to *errors.MissingSymbolsError.
func (l *Loader) Load(ctx context.Context, name string) (*Library, error) {
	path, wasm, err := l.read(ctx, name)
	if err != nil {
		return nil, err
	}

	rt := wazero.NewRuntimeWithConfig(ctx, l.runtimeConfig())
	lib, err := l.instantiate(ctx, rt, name, path, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	Logger().Info("native library loaded", zap.String("library", name), zap.String("path", path))
	return lib, nil
}

func (l *Loader) instantiate(ctx context.Context, rt wazero.Runtime, name, path string, wasm []byte) (*Library, error) {
	if err := l.hosts.Instantiate(ctx, rt); err != nil {
		return nil, errors.LoadFailure(name, "bind host functions", err)
	}

	if l.cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			return nil, errors.LoadFailure(name, "instantiate WASI", err)
		}
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.LoadFailure(name, "compile module", err)
	}

	if err := checkEntryPoints(name, compiled.ExportedFunctions()); err != nil {
		return nil, errors.LoadFailure(name, "resolve entry points", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()
	if l.cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(l.cfg.Stdout)
	}
	if l.cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(l.cfg.Stderr)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, errors.LoadFailure(name, "instantiate module", errors.Instantiation(name, err))
	}

	if err := initializeReactor(ctx, mod, compiled.ExportedFunctions()); err != nil {
		_ = mod.Close(ctx)
		return nil, errors.LoadFailure(name, "initialize reactor", err)
	}

	entries := make(map[string]api.Function, len(RequiredSymbols))
	for _, sym := range RequiredSymbols {
		fn := mod.ExportedFunction(sym)
		if fn == nil {
			_ = mod.Close(ctx)
			return nil, errors.LoadFailure(name, "resolve entry points", errors.NewMissingSymbolsError(name, []string{sym}))
		}
		entries[sym] = fn
	}

	return &Library{
		runtime: rt,
		entries: entries,
		name:    name,
		path:    path,
	}, nil
}

// ReactorInit is the export a WASI reactor uses to set up libc and run static
// constructors before any other export is called.
const ReactorInit = "_initialize"

// initializeReactor calls _initialize once if the module exports it without
// parameters.
func initializeReactor(ctx context.Context, mod api.Module, exports map[string]api.FunctionDefinition) error {
	def, ok := exports[ReactorInit]
	if !ok || len(def.ParamTypes()) > 0 {
		return nil
	}
	fn := mod.ExportedFunction(ReactorInit)
	if fn == nil {
		return nil
	}
	if _, err := fn.Call(ctx); err != nil {
		return errors.NativeFailure(mod.Name(), ReactorInit, err)
	}
	return nil
}

// checkEntryPoints verifies every required symbol is exported as a function
// callable without arguments.
func checkEntryPoints(name string, exports map[string]api.FunctionDefinition) error {
	var missing []string
	for _, sym := range RequiredSymbols {
		def, ok := exports[sym]
		if !ok {
			missing = append(missing, sym)
			continue
		}
		if n := len(def.ParamTypes()); n > 0 {
			return errors.BadSignature(name, sym, n)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingSymbolsError(name, missing)
	}
	return nil
}
