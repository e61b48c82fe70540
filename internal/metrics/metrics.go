// Package metrics exposes pipeline counters for Prometheus scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobradar/pipeline-service/internal/cache"
	"jobradar/pipeline-service/internal/model"
)

// Metrics holds the pipeline's Prometheus collectors on a private registry so
// tests can instantiate isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal   prometheus.Counter
	RecordsFound  prometheus.Counter
	AlertsSent    prometheus.Counter
	CycleErrors   prometheus.Counter
	CycleDuration prometheus.Histogram
	CacheHits     prometheus.Gauge
	CacheMisses   prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_cycles_total",
			Help: "Completed pipeline cycles.",
		}),
		RecordsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_records_found_total",
			Help: "Records returned by all source adapters.",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_alerts_sent_total",
			Help: "Alerts successfully dispatched.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_cycle_errors_total",
			Help: "Non-fatal errors collected across cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_cycle_duration_seconds",
			Help:    "Wall-clock duration of one cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "response_cache_hits",
			Help: "Cumulative response-cache hits.",
		}),
		CacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "response_cache_misses",
			Help: "Cumulative response-cache misses.",
		}),
	}
	reg.MustRegister(
		m.CyclesTotal, m.RecordsFound, m.AlertsSent, m.CycleErrors,
		m.CycleDuration, m.CacheHits, m.CacheMisses,
	)
	return m
}

// ObserveRun records one finished cycle.
func (m *Metrics) ObserveRun(res *model.PipelineRunResult) {
	m.CyclesTotal.Inc()
	m.RecordsFound.Add(float64(res.RecordsFound))
	m.AlertsSent.Add(float64(res.AlertsSent))
	m.CycleErrors.Add(float64(len(res.Errors)))
	m.CycleDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
}

// ObserveCache refreshes the cache gauges from a stats snapshot.
func (m *Metrics) ObserveCache(s cache.Stats) {
	m.CacheHits.Set(float64(s.Hits))
	m.CacheMisses.Set(float64(s.Misses))
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
