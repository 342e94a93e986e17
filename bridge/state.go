package bridge

import (
	"strconv"
	"strings"

	"github.com/wippyai/native-bridge/errors"
)

// State is the bridge's position in the host lifecycle.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateInitialized
	StateRunning
	StatePaused
	StateDestroyed
)

var stateNames = [...]string{
	StateUnloaded:    "Unloaded",
	StateLoaded:      "Loaded",
	StateInitialized: "Initialized",
	StateRunning:     "Running",
	StatePaused:      "Paused",
	StateDestroyed:   "Destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// MarshalText renders the state name, so JSON status documents stay readable.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event is an input to the state machine. Load is produced by AttemptLoad;
// the other four are delivered by the host shell.
type Event int

const (
	EventLoad Event = iota
	EventCreate
	EventResume
	EventPause
	EventDestroy
)

var eventNames = [...]string{
	EventLoad:    "load",
	EventCreate:  "create",
	EventResume:  "resume",
	EventPause:   "pause",
	EventDestroy: "destroy",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "Event(" + strconv.Itoa(int(e)) + ")"
	}
	return eventNames[e]
}

func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// HostEvents are the events a host shell may deliver.
var HostEvents = []Event{EventCreate, EventResume, EventPause, EventDestroy}

// ParseEvent parses a host event name. Accepts the bare name or the
// on-prefixed callback name, case-insensitively ("pause", "onPause").
func ParseEvent(s string) (Event, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "on")
	for _, ev := range HostEvents {
		if ev.String() == name {
			return ev, nil
		}
	}
	return 0, errors.InvalidInput(errors.PhaseShell, "unknown lifecycle event "+strings.TrimSpace(s))
}

// Call is a native entry point invocation.
type Call string

const (
	CallInit    Call = "init"
	CallRun     Call = "run"
	CallCleanup Call = "cleanup"
)

// Step is the outcome of one transition: the next state, the native calls
// to issue in order, and whether the handle is released afterwards.
// Applied is false when the event is not valid in the current state; such a
// step leaves the state unchanged and carries no calls.
type Step struct {
	Calls   []Call
	Next    State
	Release bool
	Applied bool
}

// Transition computes the step for ev in state s. handleValid reports whether
// a native runtime handle is held (for EventLoad: whether the load succeeded).
//
//	Unloaded              --load ok-->  Loaded
//	Unloaded              --load err--> Unloaded
//	Loaded                --create-->   Initialized  [init]
//	Unloaded              --create-->   Initialized  (degraded, no calls)
//	Initialized, Paused   --resume-->   Running
//	Running               --pause-->    Paused
//	any but Destroyed     --destroy-->  Destroyed    [cleanup if handle], release
func Transition(s State, ev Event, handleValid bool) Step {
	switch ev {
	case EventLoad:
		if s == StateUnloaded {
			if handleValid {
				return Step{Next: StateLoaded, Applied: true}
			}
			return Step{Next: StateUnloaded, Applied: true}
		}

	case EventCreate:
		switch s {
		case StateLoaded:
			step := Step{Next: StateInitialized, Applied: true}
			if handleValid {
				step.Calls = []Call{CallInit}
			}
			return step
		case StateUnloaded:
			return Step{Next: StateInitialized, Applied: true}
		}

	case EventResume:
		if s == StateInitialized || s == StatePaused {
			return Step{Next: StateRunning, Applied: true}
		}

	case EventPause:
		if s == StateRunning {
			return Step{Next: StatePaused, Applied: true}
		}

	case EventDestroy:
		if s != StateDestroyed {
			step := Step{Next: StateDestroyed, Release: true, Applied: true}
			if handleValid {
				step.Calls = []Call{CallCleanup}
			}
			return step
		}
	}

	return Step{Next: s}
}
