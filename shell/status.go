package shell

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
)

// Snapshot is a point-in-time view of a bridge.
type Snapshot struct {
	Updated   time.Time     `json:"updated"`
	Session   string        `json:"session"`
	Library   string        `json:"library"`
	LoadError string        `json:"load_error,omitempty"`
	Trace     []bridge.Call `json:"trace"`
	Events    int           `json:"events"`
	Ignored   int           `json:"ignored"`
	State     bridge.State  `json:"state"`
	Degraded  bool          `json:"degraded"`
}

// Status tracks bridge records for readers on other goroutines.
type Status struct {
	mu     sync.RWMutex
	snap   Snapshot
	loaded bool
}

// NewStatus starts a new session for library.
func NewStatus(library string) *Status {
	return &Status{
		snap: Snapshot{
			Session: uuid.NewString(),
			Library: library,
			Trace:   []bridge.Call{},
			Updated: time.Now(),
		},
	}
}

// Observe records rec. Pass it to bridge.WithObserver.
func (s *Status) Observe(rec bridge.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Events++
	s.snap.Updated = time.Now()
	if rec.Library != "" {
		s.snap.Library = rec.Library
	}
	if rec.Ignored {
		s.snap.Ignored++
		return
	}

	switch rec.Event {
	case bridge.EventLoad:
		if rec.Err != nil {
			s.snap.LoadError = rec.Err.Error()
		} else {
			s.snap.LoadError = ""
			s.loaded = true
		}
	case bridge.EventDestroy:
		s.loaded = false
	}
	s.snap.Trace = append(s.snap.Trace, rec.Calls...)
	s.snap.State = rec.To
	s.snap.Degraded = !s.loaded && rec.To != bridge.StateDestroyed &&
		(s.snap.LoadError != "" || rec.To != bridge.StateUnloaded)
}

// Snapshot returns a copy of the current status.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Trace = make([]bridge.Call, len(s.snap.Trace))
	copy(snap.Trace, s.snap.Trace)
	return snap
}

// Ready reports an error unless the host has created the bridge and not yet
// destroyed it.
func (s *Status) Ready() error {
	s.mu.RLock()
	state := s.snap.State
	s.mu.RUnlock()

	switch state {
	case bridge.StateInitialized, bridge.StateRunning, bridge.StatePaused:
		return nil
	}
	return errors.New(errors.PhaseShell, errors.KindInvalidInput).
		Detail("bridge is %s", state).
		Build()
}
