// Package shell hosts a bridge the way a mobile platform hosts an activity.
//
// A Shell owns one bridge and one dispatcher goroutine. Run loads the native
// library and delivers create and resume, then forwards posted events until
// the context ends or Finish is called, and finally delivers pause and
// destroy:
//
//	b := bridge.New(shell.NativeLoader(loader), bridge.WithObserver(status.Observe))
//	sh := shell.New(b, "MultiPlatformGUI")
//	shell.Signals(ctx, sh)
//	err := sh.Run(ctx)
//
// Events reach the shell from signals (Signals), from a terminal UI
// (RunInteractive) or from the native runtime itself through the host
// request_exit import, which calls Finish.
//
// Status and Server publish the bridge state to other goroutines and over
// HTTP.
package shell
