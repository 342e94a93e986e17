package shell

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

// Signals maps process signals onto host events for sh until ctx ends or the
// shell stops. Finish signals end the shell; on unix SIGUSR1 pauses and
// SIGUSR2 resumes.
func Signals(ctx context.Context, sh *Shell) {
	ch := make(chan os.Signal, 4)
	watched := append([]os.Signal(nil), finishSignals...)
	for sig := range signalEvents {
		watched = append(watched, sig)
	}
	signal.Notify(ch, watched...)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sh.Done():
				return
			case sig := <-ch:
				dispatchSignal(sh, sig)
			}
		}
	}()
}

func dispatchSignal(sh *Shell, sig os.Signal) {
	if ev, ok := signalEvents[sig]; ok {
		sh.logger.Info("signal received", zap.Stringer("signal", sig), zap.Stringer("event", ev))
		sh.Post(ev)
		return
	}
	sh.logger.Info("signal received, finishing", zap.Stringer("signal", sig))
	sh.Finish()
}
