// Package nativebridge hosts a dynamically loaded native application runtime
// behind a lifecycle bridge.
//
// A host platform drives applications through lifecycle events (create,
// resume, pause, destroy). A native runtime exposes three entry points (init,
// run, cleanup). The bridge translates one into the other, calling init and
// cleanup exactly once each, and keeps the host running when the native
// library cannot be loaded.
//
// # Architecture Overview
//
//	nativebridge/
//	├── bridge/            Lifecycle state machine, transition table, metrics
//	├── native/            Library loading and entry point calls (wazero)
//	├── shell/             Host shell: dispatcher, signals, status server, TUI
//	├── config/            Configuration (viper, YAML, NATIVEBRIDGE_ env)
//	├── errors/            Structured error types
//	└── cmd/nativebridge/  Command line host
//
// # Quick Start
//
//	loader := native.NewLoader(&native.Config{Paths: []string{"lib"}})
//	b := bridge.New(shell.NativeLoader(loader))
//
//	if res := b.AttemptLoad(ctx, "MultiPlatformGUI"); !res.OK() {
//	    // logged; the bridge runs degraded and skips native calls
//	}
//	b.OnCreate(ctx)  // init
//	b.OnResume(ctx)
//	b.OnPause(ctx)
//	b.OnDestroy(ctx) // cleanup, then the library is closed
//
// # Native Libraries
//
// A native library is a WebAssembly core module exporting init, run and
// cleanup, each taking no parameters. "Gui" resolves to libGui.wasm or
// Gui.wasm on the configured search paths. A missing file, an invalid
// module or an absent entry point is a load failure.
//
// # Thread Safety
//
// A Bridge is driven by one goroutine. shell.Shell provides that goroutine
// and accepts events from any other through Post and Finish.
package nativebridge
