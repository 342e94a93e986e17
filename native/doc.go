// Package native loads native application runtimes and invokes their entry
// points.
//
// A native runtime is a WebAssembly core module executed by wazero. It must
// export three functions taking no parameters:
//
//	init     prepares the runtime
//	run      enters the runtime's own loop (resolved, not driven by the bridge)
//	cleanup  releases everything init acquired
//
// # Loading
//
// Library names resolve the way a platform library loader does:
//
//	loader := native.NewLoader(&native.Config{Paths: []string{"lib"}})
//	lib, err := loader.Load(ctx, "MultiPlatformGUI") // lib/libMultiPlatformGUI.wasm
//	if err != nil {
//	    // errors.ErrLoadFailure; missing entry points unwrap to
//	    // *errors.MissingSymbolsError
//	}
//	defer lib.Close(ctx)
//
// A name containing a path separator or ending in ".wasm" is used as a path.
//
// # Host Functions
//
// Every library sees the "host" namespace:
//
//	(import "host" "log" (func (param i32 i32)))      ;; ptr, len of a UTF-8 message
//	(import "host" "request_exit" (func))              ;; ask the host shell to finish
//
// Additional Go functions can be registered before loading:
//
//	loader.Hosts().RegisterFunc("env", "trace", func(ctx context.Context, code uint32) {})
//
// # Thread Safety
//
// Loader is safe for concurrent use. Library is NOT thread-safe; the bridge
// drives it from a single dispatcher goroutine.
package native
