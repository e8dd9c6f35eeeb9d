// Package metrics exposes the Prometheus counters of the pipeline and the alert checks
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fxwatch"

// Run outcomes
const (
	OutcomeWritten   = "written"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Alert outcomes
const (
	AlertTriggered = "triggered"
	AlertQuiet     = "quiet"
	AlertSkipped   = "skipped"
	AlertFailed    = "failed"
)

// Metrics holds the collectors, registered on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	mergedTotal   prometheus.Counter
	capturesTotal prometheus.Counter
	lastMiddle    prometheus.Gauge
	alerts        *prometheus.CounterVec
}

// New creates the metrics and registers them, with the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome",
		}, []string{"outcome"}),
		mergedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_merged_total",
			Help:      "Records added to a period series",
		}),
		capturesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Capture log entries appended",
		}),
		lastMiddle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_middle_rate",
			Help:      "Middle rate of the last captured record (CNY per 100 units)",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_checks_total",
			Help:      "Alert checks by check and outcome",
		}, []string{"check", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runs,
		m.mergedTotal,
		m.capturesTotal,
		m.lastMiddle,
		m.alerts,
	)

	return m
}

// Handler returns the scrape handler of the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun counts a pipeline run by outcome
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}

	m.runs.WithLabelValues(outcome).Inc()
}

// ObserveMerge counts a record newly added to a series
func (m *Metrics) ObserveMerge() {
	if m == nil {
		return
	}

	m.mergedTotal.Inc()
}

// ObserveCapture counts a capture log entry
func (m *Metrics) ObserveCapture() {
	if m == nil {
		return
	}

	m.capturesTotal.Inc()
}

// ObserveMiddle tracks the middle rate of the latest capture
func (m *Metrics) ObserveMiddle(middle float64) {
	if m == nil {
		return
	}

	m.lastMiddle.Set(middle)
}

// ObserveAlert counts an alert check by outcome
func (m *Metrics) ObserveAlert(check, outcome string) {
	if m == nil {
		return
	}

	m.alerts.WithLabelValues(check, outcome).Inc()
}
