// Package metrics exposes Prometheus counters for the deletion pipeline.
//
// Collectors live on a per-instance registry so tests and multiple daemons in
// one process never collide on the default registry. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediasyncdel/internal/syncdel"
)

const namespace = "mediasyncdel"

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	events         *prometheus.CounterVec
	selfDisable    prometheus.Counter
	executorErrors *prometheus.CounterVec
	enabled        prometheus.Gauge
}

// New creates the collectors on a fresh registry, along with the Go runtime
// and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Webhook events processed, by outcome.",
			},
			[]string{"outcome"},
		),
		selfDisable: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "self_disable_total",
				Help:      "Times sync was switched off because item_isvirtual was missing.",
			},
		),
		executorErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executor_errors_total",
				Help:      "Deletion executor failures, by operation.",
			},
			[]string{"operation"},
		),
		enabled: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "enabled",
				Help:      "1 when deletion sync is enabled.",
			},
		),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOutcome counts one processed event.
func (m *Metrics) ObserveOutcome(outcome syncdel.Outcome) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(outcome.Result)).Inc()
	if outcome.SelfDisabled {
		m.selfDisable.Inc()
	}
}

// ExecutorError counts a failed executor operation such as "delete_history".
func (m *Metrics) ExecutorError(operation string) {
	if m == nil {
		return
	}
	m.executorErrors.WithLabelValues(operation).Inc()
}

// SetEnabled mirrors the enable toggle.
func (m *Metrics) SetEnabled(enabled bool) {
	if m == nil {
		return
	}
	if enabled {
		m.enabled.Set(1)
		return
	}
	m.enabled.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
