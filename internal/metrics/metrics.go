// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// Metrics groups the collectors so tests can use a private registry.
type Metrics struct {
	Calculations     *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	FormEvents       *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
	SessionsStarted  prometheus.Counter
	SplitsSaved      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tipsplit",
			Name:      "calculations_total",
			Help:      "Split computations, by entry point.",
		}, []string{"source"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tipsplit",
			Name:      "validation_errors_total",
			Help:      "Field validation failures reported to clients.",
		}, []string{"field"}),
		FormEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tipsplit",
			Name:      "form_events_total",
			Help:      "Form events applied to sessions, by kind.",
		}, []string{"kind"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tipsplit",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tipsplit",
			Name:      "sessions_started_total",
			Help:      "Form sessions created.",
		}),
		SplitsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tipsplit",
			Name:      "splits_saved_total",
			Help:      "Splits written to history.",
		}),
	}
	reg.MustRegister(
		m.Calculations,
		m.ValidationErrors,
		m.FormEvents,
		m.RPCDuration,
		m.SessionsStarted,
		m.SplitsSaved,
	)
	return m
}

// ObserveErrors counts each failing field once.
func (m *Metrics) ObserveErrors(errs calculator.FieldErrors) {
	for f := range errs {
		m.ValidationErrors.WithLabelValues(string(f)).Inc()
	}
}
