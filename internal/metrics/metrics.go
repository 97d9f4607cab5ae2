// Package metrics exposes refresh counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the calendar collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	refreshes       prometheus.Counter
	fetchFailures   *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	eventsRendered  prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmcal_refresh_total",
			Help: "Calendar refreshes started.",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crmcal_source_fetch_failures_total",
			Help: "Source queries that failed during refresh.",
		}, []string{"object"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmcal_refresh_duration_seconds",
			Help:    "Wall time of a calendar refresh.",
			Buckets: prometheus.DefBuckets,
		}),
		eventsRendered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crmcal_refresh_events",
			Help:    "Events returned by a calendar refresh.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshes,
		m.fetchFailures,
		m.refreshDuration,
		m.eventsRendered,
	)
	return m
}

// ObserveRefresh records one completed refresh.
func (m *Metrics) ObserveRefresh(d time.Duration, events int, failedObjects []string) {
	if m == nil {
		return
	}
	m.refreshes.Inc()
	m.refreshDuration.Observe(d.Seconds())
	m.eventsRendered.Observe(float64(events))
	for _, obj := range failedObjects {
		m.fetchFailures.WithLabelValues(obj).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
