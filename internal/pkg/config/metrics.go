package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loads and fallbacks for one component.
// Metric names are prefixed with the component name, e.g.
// worker_config_fallbacks_total{field}.
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge

	component string
}

// NewConfigMetrics registers the component's metrics with reg. A nil reg
// means the default registerer.
func NewConfigMetrics(component string, reg prometheus.Registerer) *ConfigMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix timestamp of the last " + component + " configuration load",
		}),
		ValidationErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_validation_errors_total",
			Help: "Total " + component + " configuration values that failed validation",
		}, []string{"field"}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Total " + component + " configuration values replaced by their default",
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 if any " + component + " configuration fallback is active",
		}),
		component: component,
	}
}

// RecordLoadTimestamp marks a completed load.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordFallback counts a rejected value for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flips the fallback gauge.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

// Tracker applies loader results to a config struct, logging and
// counting every fallback.
type Tracker struct {
	logger  *slog.Logger
	metrics *ConfigMetrics
	active  bool
}

// NewTracker returns a Tracker. metrics may be nil.
func NewTracker(logger *slog.Logger, metrics *ConfigMetrics) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{logger: logger, metrics: metrics}
}

// Note records the outcome for field.
func (t *Tracker) Note(field string, fallback bool, warning string) {
	if !fallback {
		return
	}
	t.active = true
	if t.metrics != nil {
		t.metrics.RecordFallback(field)
	}
	t.logger.Warn("configuration fallback applied",
		slog.String("field", field),
		slog.String("warning", warning))
}

// Done updates the load gauges and reports whether any fallback fired.
func (t *Tracker) Done() bool {
	if t.metrics != nil {
		t.metrics.SetFallbackActive(t.active)
		t.metrics.RecordLoadTimestamp()
	}
	return t.active
}

// Apply stores r.Value in dst and notes the outcome.
func Apply[T any](t *Tracker, field string, dst *T, r Result[T]) {
	*dst = r.Value
	t.Note(field, r.FallbackApplied, r.Warning)
}
