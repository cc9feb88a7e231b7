package observability

import (
	"context"

	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/events"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sceneflow"

// Metrics holds the transition collectors.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Events      *prometheus.CounterVec
	LoadTime    *prometheus.HistogramVec
	Progress    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Finished transitions by outcome",
			},
			[]string{"outcome"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Published transition events by type",
			},
			[]string{"type"},
		),
		LoadTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Time from load start until content was staged",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		Progress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "transition_progress",
				Help:      "Normalized progress of the transition in flight",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Events, m.LoadTime, m.Progress)
	}
	return m
}

// Attach subscribes the collectors to bus. The returned function detaches them.
func (m *Metrics) Attach(bus *events.Bus) func() {
	id := bus.SubscribeAll(m.handle)
	return func() {
		bus.Unsubscribe(id)
	}
}

func (m *Metrics) handle(_ context.Context, e domain.Event) error {
	m.Events.WithLabelValues(string(e.Type)).Inc()
	switch e.Type {
	case domain.EventProgress:
		m.Progress.Set(e.Progress)
	case domain.EventSceneLoaded, domain.EventTransitionSuperseded, domain.EventTransitionFailed:
		if e.TransitionID != "" {
			m.Progress.Set(0)
		}
	}
	return nil
}

// ObserveRecord counts a finished transition.
func (m *Metrics) ObserveRecord(rec domain.TransitionRecord) {
	m.Transitions.WithLabelValues(string(rec.Outcome)).Inc()
	if rec.LoadTime > 0 {
		m.LoadTime.WithLabelValues(string(rec.Mode)).Observe(rec.LoadTime.Seconds())
	}
}
