// Package metrics exposes Prometheus collectors fed by the agent's
// lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/intake/pkg/domain"
)

// Metrics owns a private registry so tests and embedders never collide
// with the global one.
type Metrics struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	sinkDeliveries *prometheus.CounterVec
	sinkDuration   *prometheus.HistogramVec
}

// New registers the intake collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_transitions_total",
				Help: "Dialogue state transitions.",
			},
			[]string{"from", "to"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_rejections_total",
				Help: "Answers refused by the validator.",
			},
			[]string{"field", "reason"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Confirmed records, by whether every available sink delivered.",
			},
			[]string{"outcome"},
		),
		sinkDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_sink_deliveries_total",
				Help: "Sink delivery attempts by result.",
			},
			[]string{"sink", "status"},
		),
		sinkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_sink_duration_seconds",
				Help:    "Duration of sink calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sink"},
		),
	}
	m.registry.MustRegister(
		m.transitions,
		m.rejections,
		m.submissions,
		m.sinkDeliveries,
		m.sinkDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// WatchSessions exports the number of mid-dialogue sessions, read from
// count at scrape time.
func (m *Metrics) WatchSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Sessions currently mid-dialogue.",
		},
		func() float64 { return float64(count()) },
	))
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			m.transitions.WithLabelValues(ev.From, ev.To).Inc()
		},
		OnRejection: func(_ context.Context, ev *domain.RejectionEvent) {
			m.rejections.WithLabelValues(ev.Field, ev.Reason).Inc()
		},
		OnSink: func(_ context.Context, ev *domain.SinkEvent) {
			m.sinkDeliveries.WithLabelValues(ev.Sink, string(ev.Status)).Inc()
			if ev.Status != domain.SinkSkipped {
				m.sinkDuration.WithLabelValues(ev.Sink).Observe(ev.Duration.Seconds())
			}
		},
	}
}

// ObserveSubmission counts a finished submission. It matches the
// signature of intake.WithSubmissionCallback.
func (m *Metrics) ObserveSubmission(res domain.SubmissionResult) {
	outcome := "complete"
	if res.Notifier == domain.SinkFailed || res.Ledger == domain.SinkFailed {
		outcome = "partial"
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
