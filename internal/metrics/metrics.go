// Package metrics exposes prometheus instruments for the segmentation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mallseg"

// Metrics groups the instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	CacheLookup *prometheus.CounterVec
	Fits        prometheus.Counter
	Stage       *prometheus.HistogramVec
	Renders     *prometheus.CounterVec
}

// New registers a fresh set of instruments.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline executions by result.",
		}, []string{"result"}),
		CacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_cache_lookups_total",
			Help:      "Model cache lookups by outcome (hit, miss, stale).",
		}, []string{"outcome"}),
		Fits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fits_total",
			Help:      "K-means fits performed.",
		}),
		Stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_renders_total",
			Help:      "Rendered views by view name and format.",
		}, []string{"view", "format"}),
	}
	m.registry.MustRegister(m.Runs, m.CacheLookup, m.Fits, m.Stage, m.Renders)
	return m
}

// ObserveStage records how long stage took since start. Nil receivers are no-ops.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.Stage.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Run counts a pipeline execution.
func (m *Metrics) Run(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Runs.WithLabelValues(result).Inc()
}

// Lookup counts a cache outcome and, for anything but a hit, a fit.
func (m *Metrics) Lookup(outcome string) {
	if m == nil {
		return
	}
	m.CacheLookup.WithLabelValues(outcome).Inc()
	if outcome != "hit" {
		m.Fits.Inc()
	}
}

// Render counts a rendered view.
func (m *Metrics) Render(view, format string) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(view, format).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
