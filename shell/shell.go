package shell

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
	"github.com/wippyai/native-bridge/native"
)

const eventBuffer = 16

// NativeLoader adapts a native.Loader to bridge.Loader.
func NativeLoader(l *native.Loader) bridge.Loader {
	return bridge.LoaderFunc(func(ctx context.Context, name string) (bridge.Handle, error) {
		lib, err := l.Load(ctx, name)
		if err != nil {
			// a nil *native.Library must not become a non-nil Handle
			return nil, err
		}
		return lib, nil
	})
}

// Shell plays the host platform: it owns a bridge and delivers lifecycle
// events to it from a single dispatcher goroutine.
type Shell struct {
	bridge  *bridge.Bridge
	events  chan bridge.Event
	finish  chan struct{}
	stopped chan struct{}
	logger  *zap.Logger
	library string

	finishOnce sync.Once
	running    atomic.Bool
}

// New creates a shell that will load library into b.
func New(b *bridge.Bridge, library string) *Shell {
	return &Shell{
		bridge:  b,
		library: library,
		events:  make(chan bridge.Event, eventBuffer),
		finish:  make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  Logger(),
	}
}

func (s *Shell) Bridge() *bridge.Bridge {
	return s.bridge
}

// Post enqueues a host event. It reports false once the shell has stopped.
func (s *Shell) Post(ev bridge.Event) bool {
	select {
	case <-s.stopped:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.stopped:
		return false
	}
}

// Finish asks the shell to tear down, like the platform finishing the
// activity. Safe to call from any goroutine, including from inside a native
// call, and more than once.
func (s *Shell) Finish() {
	s.finishOnce.Do(func() {
		close(s.finish)
	})
}

// Done is closed when Run has returned.
func (s *Shell) Done() <-chan struct{} {
	return s.stopped
}

// Run performs the launch sequence (load, create, resume), dispatches posted
// events until ctx ends, Finish is called or a destroy event arrives, and
// then delivers pause and destroy. Destroy is always delivered before Run
// returns, even when ctx is already cancelled.
func (s *Shell) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.InvalidInput(errors.PhaseShell, "shell already started")
	}
	defer close(s.stopped)

	res := s.bridge.AttemptLoad(ctx, s.library)
	if !res.OK() {
		s.logger.Warn("running without native runtime",
			zap.String("library", s.library),
			zap.Error(res.Err()))
	}
	s.bridge.OnCreate(ctx)
	s.bridge.OnResume(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("context done, finishing", zap.Error(ctx.Err()))
			s.teardown(ctx)
			return nil
		case <-s.finish:
			s.logger.Debug("finish requested")
			s.teardown(ctx)
			return nil
		case ev := <-s.events:
			s.bridge.Deliver(ctx, ev)
			if s.bridge.State() == bridge.StateDestroyed {
				return nil
			}
		}
	}
}

func (s *Shell) teardown(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.bridge.OnPause(ctx)
	s.bridge.OnDestroy(ctx)
}
