package observability

import (
	"context"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Actions     *prometheus.CounterVec
	Durations   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "varia_transitions_total",
				Help: "Rule applications by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "varia_actions_total",
				Help: "Side-effect requests by action and dispatch status",
			},
			[]string{"action", "status"},
		),
		Durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "varia_transition_duration_seconds",
				Help:    "Animation durations declared by applied rules",
				Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 1, 2},
			},
			[]string{"trigger"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Transitions, m.Actions, m.Durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	record := func(_ context.Context, ev *domain.TransitionEvent) {
		m.Transitions.WithLabelValues(string(ev.Trigger), string(ev.Outcome)).Inc()
		if ev.Outcome == domain.OutcomeApplied && ev.HasDuration {
			m.Durations.WithLabelValues(string(ev.Trigger)).Observe(ev.Duration / 1000)
		}
	}
	return domain.LifecycleHooks{
		OnTransition: record,
		OnRejected:   record,
		OnAction: func(_ context.Context, ev *domain.ActionEvent) {
			status := "ok"
			if ev.Err != nil {
				status = "error"
			}
			m.Actions.WithLabelValues(string(ev.Request.Type), status).Inc()
		},
	}
}
