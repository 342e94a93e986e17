package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/native-bridge/errors"
)

// Handle is a loaded native runtime. Run is part of the contract but the
// bridge never invokes it.
type Handle interface {
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	Cleanup(ctx context.Context) error
	Close(ctx context.Context) error
}

// Loader acquires native runtime handles by library name.
type Loader interface {
	Load(ctx context.Context, library string) (Handle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, library string) (Handle, error)

func (f LoaderFunc) Load(ctx context.Context, library string) (Handle, error) {
	return f(ctx, library)
}

// Record describes one handled event.
type Record struct {
	Err     error
	Library string
	Calls   []Call
	Event   Event
	From    State
	To      State
	Ignored bool
}

// Observer receives a Record after every handled event, on the dispatching
// goroutine.
type Observer func(Record)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger overrides the package logger for one bridge.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics records transitions and native calls into m.
func WithMetrics(m *Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithObserver adds an observer. Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(b *Bridge) {
		b.observers = append(b.observers, o)
	}
}

// Bridge maps host lifecycle events onto native runtime entry points.
//
// A Bridge is NOT safe for concurrent use: the host shell delivers events
// one at a time from a single goroutine. Correctness rests on the guards in
// Transition, not on locking.
type Bridge struct {
	loader    Loader
	handle    Handle
	loadErr   error
	logger    *zap.Logger
	metrics   *Metrics
	library   string
	observers []Observer
	state     State
}

// New creates a bridge in the Unloaded state.
func New(loader Loader, opts ...Option) *Bridge {
	b := &Bridge{
		loader: loader,
		logger: Logger(),
		state:  StateUnloaded,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.metrics.setState(b.state)
	return b
}

func (b *Bridge) State() State {
	return b.state
}

// HandleValid reports whether a native runtime handle is held.
func (b *Bridge) HandleValid() bool {
	return b.handle != nil
}

// Degraded reports whether the bridge runs without a native runtime: the
// load failed, or the host created it without loading.
func (b *Bridge) Degraded() bool {
	if b.handle != nil || b.state == StateDestroyed {
		return false
	}
	return b.loadErr != nil || b.state != StateUnloaded
}

// LoadErr returns the reason of the last failed load attempt.
func (b *Bridge) LoadErr() error {
	return b.loadErr
}

func (b *Bridge) Library() string {
	return b.library
}

// AttemptLoad acquires the native runtime. It never fails the caller: a load
// failure is logged, recorded and returned as Failed, and the bridge carries
// on in degraded mode. Only valid from Unloaded; once loaded it returns the
// held handle.
func (b *Bridge) AttemptLoad(ctx context.Context, library string) LoadResult {
	res, _ := b.load(ctx, library)
	return res
}

func (b *Bridge) load(ctx context.Context, library string) (LoadResult, Record) {
	if b.state != StateUnloaded {
		if b.handle != nil {
			return Loaded(b.handle), b.ignore(EventLoad, nil)
		}
		err := errors.InvalidTransition(b.state.String(), EventLoad.String())
		return Failed(err), b.ignore(EventLoad, err)
	}

	b.library = library
	var (
		h   Handle
		err error
	)
	if b.loader == nil {
		err = errors.LoadFailure(library, "no loader configured", nil)
	} else {
		h, err = b.loader.Load(ctx, library)
		switch {
		case err != nil && !errors.Is(err, errors.ErrLoadFailure):
			err = errors.LoadFailure(library, "load native library", err)
		case err == nil && h == nil:
			err = errors.LoadFailure(library, "loader returned no handle", nil)
		}
	}

	step := Transition(b.state, EventLoad, err == nil)
	rec := Record{Event: EventLoad, Library: library, From: b.state, To: step.Next}

	if err != nil {
		if h != nil {
			_ = h.Close(ctx)
		}
		b.loadErr = err
		rec.Err = err
		b.metrics.loadAttempt(false)
		b.logger.Warn("native library failed to load, continuing without native runtime",
			zap.String("library", library),
			zap.Error(err))
		b.finish(rec)
		return Failed(err), rec
	}

	b.handle = h
	b.loadErr = nil
	b.state = step.Next
	b.metrics.loadAttempt(true)
	b.logger.Info("native library loaded", zap.String("library", library))
	b.finish(rec)
	return Loaded(h), rec
}

// OnCreate invokes native init once, if a runtime is loaded.
func (b *Bridge) OnCreate(ctx context.Context) {
	b.Deliver(ctx, EventCreate)
}

// OnResume moves Initialized or Paused to Running.
func (b *Bridge) OnResume(ctx context.Context) {
	b.Deliver(ctx, EventResume)
}

// OnPause moves Running to Paused.
func (b *Bridge) OnPause(ctx context.Context) {
	b.Deliver(ctx, EventPause)
}

// OnDestroy invokes native cleanup once, if a runtime is loaded, then
// releases the handle. Only the first call has any effect.
func (b *Bridge) OnDestroy(ctx context.Context) {
	b.Deliver(ctx, EventDestroy)
}

// Deliver handles one host event and returns what happened. Events that are
// invalid in the current state are ignored, never returned as errors.
func (b *Bridge) Deliver(ctx context.Context, ev Event) Record {
	if ev == EventLoad {
		_, rec := b.load(ctx, b.library)
		return rec
	}

	from := b.state
	step := Transition(from, ev, b.handle != nil)
	if !step.Applied {
		return b.ignore(ev, errors.InvalidTransition(from.String(), ev.String()))
	}

	rec := Record{Event: ev, Library: b.library, From: from, To: step.Next}
	for _, c := range step.Calls {
		rec.Calls = append(rec.Calls, c)
		if err := b.invoke(ctx, c); err != nil && rec.Err == nil {
			rec.Err = err
		}
	}
	if step.Release {
		b.release(ctx)
	}
	b.state = step.Next

	fields := []zap.Field{
		zap.String("event", ev.String()),
		zap.Stringer("from", from),
		zap.Stringer("to", step.Next),
	}
	if b.Degraded() {
		fields = append(fields, zap.Bool("degraded", true))
	}
	b.logger.Info("lifecycle transition", fields...)

	b.finish(rec)
	return rec
}

func (b *Bridge) invoke(ctx context.Context, c Call) error {
	var err error
	switch c {
	case CallInit:
		err = b.handle.Init(ctx)
	case CallRun:
		err = b.handle.Run(ctx)
	case CallCleanup:
		err = b.handle.Cleanup(ctx)
	}
	b.metrics.nativeCall(c, err)
	if err != nil {
		b.logger.Error("native entry point failed",
			zap.String("library", b.library),
			zap.String("symbol", string(c)),
			zap.Error(err))
	}
	return err
}

func (b *Bridge) release(ctx context.Context) {
	if b.handle == nil {
		return
	}
	if err := b.handle.Close(ctx); err != nil {
		b.logger.Warn("closing native library", zap.String("library", b.library), zap.Error(err))
	}
	b.handle = nil
}

func (b *Bridge) ignore(ev Event, err error) Record {
	rec := Record{Event: ev, Library: b.library, From: b.state, To: b.state, Ignored: true, Err: err}
	b.logger.Debug("lifecycle event ignored",
		zap.String("event", ev.String()),
		zap.Stringer("state", b.state),
		zap.Error(err))
	b.finish(rec)
	return rec
}

func (b *Bridge) finish(rec Record) {
	b.metrics.transition(rec)
	for _, o := range b.observers {
		o(rec)
	}
}
