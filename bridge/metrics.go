package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nativebridge"

// Metrics exports bridge activity to Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	ignored     *prometheus.CounterVec
	nativeCalls *prometheus.CounterVec
	loads       *prometheus.CounterVec
	state       prometheus.Gauge
}

// NewMetrics creates the bridge collectors and registers them on reg.
// Registering twice on the same registerer fails.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Lifecycle transitions applied, by event and states.",
		}, []string{"event", "from", "to"}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_events_total",
			Help:      "Lifecycle events ignored because they were invalid in the current state.",
		}, []string{"event", "state"}),
		nativeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "native_calls_total",
			Help:      "Native entry point invocations, by symbol and outcome.",
		}, []string{"symbol", "outcome"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_attempts_total",
			Help:      "Native library load attempts, by outcome.",
		}, []string{"outcome"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current lifecycle state (0=Unloaded .. 5=Destroyed).",
		}),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.ignored, m.nativeCalls, m.loads, m.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNewMetrics is like NewMetrics but panics on registration failure.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) transition(rec Record) {
	if m == nil {
		return
	}
	if rec.Ignored {
		m.ignored.WithLabelValues(rec.Event.String(), rec.From.String()).Inc()
		return
	}
	m.transitions.WithLabelValues(rec.Event.String(), rec.From.String(), rec.To.String()).Inc()
	m.state.Set(float64(rec.To))
}

func (m *Metrics) nativeCall(c Call, err error) {
	if m == nil {
		return
	}
	m.nativeCalls.WithLabelValues(string(c), outcome(err == nil)).Inc()
}

func (m *Metrics) loadAttempt(ok bool) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
