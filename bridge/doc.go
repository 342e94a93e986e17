// Package bridge maps host application lifecycle events onto the entry points
// of a dynamically loaded native runtime.
//
// The host shell delivers four events (create, resume, pause, destroy). The
// native runtime exposes three entry points (init, run, cleanup). The bridge
// guarantees that init is called at most once, after a successful load, and
// that cleanup is called at most once, before the runtime is released:
//
//	b := bridge.New(loader)
//	if res := b.AttemptLoad(ctx, "MultiPlatformGUI"); !res.OK() {
//		// degraded: the shell keeps running without native code
//	}
//	b.OnCreate(ctx)  // init
//	b.OnResume(ctx)
//	b.OnPause(ctx)
//	b.OnDestroy(ctx) // cleanup, release
//
// A load failure is never fatal. The bridge logs it, records it (LoadErr)
// and keeps accepting events while skipping every native call.
//
// Events that are not valid in the current state are ignored. The table is
// implemented by the pure function Transition, which the Bridge applies.
//
// A Bridge is driven by a single goroutine and holds no locks.
package bridge
