// Package metrics defines the Prometheus collectors of the service and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcome labels.
const (
	ResultOK         = "ok"
	ResultZeroResult = "zero_result"
	ResultEmptyQuery = "empty_query"
	ResultError      = "error"
)

// Metrics holds all Prometheus collectors. Each instance owns its registry,
// so several engines (or tests) can coexist in one process. All recording
// methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	QueryLatency         *prometheus.HistogramVec
	QueryResultsCount    *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RebuildsTotal        *prometheus.CounterVec
	RebuildDuration      prometheus.Histogram
	DocsIndexed          prometheus.Gauge
	IndexTerms           prometheus.Gauge
	RowsSkippedTotal     prometheus.Counter
	SentimentRejected    prometheus.Counter
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_queries_total",
				Help: "Total queries by operation and result (ok, zero_result, empty_query, error).",
			},
			[]string{"operation", "result"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "review_query_latency_seconds",
				Help:    "Query latency in seconds by operation.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
		QueryResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "review_query_results_count",
				Help:    "Number of results returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 1000},
			},
			[]string{"operation"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranking_cache_hits_total",
				Help: "Total number of ranking cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ranking_cache_misses_total",
				Help: "Total number of ranking cache misses.",
			},
		),
		RebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_rebuilds_total",
				Help: "Total index rebuilds by status.",
			},
			[]string{"status"},
		),
		RebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_rebuild_duration_seconds",
				Help:    "Duration of full index rebuilds in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		DocsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_documents",
				Help: "Number of documents in the live index snapshot.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_terms",
				Help: "Vocabulary size of the live index snapshot.",
			},
		),
		RowsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "normalizer_rows_skipped_total",
				Help: "Total raw rows skipped as malformed.",
			},
		),
		SentimentRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sentiment_rejected_total",
				Help: "Total annotator outputs rejected by the range check.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RebuildsTotal,
		m.RebuildDuration,
		m.DocsIndexed,
		m.IndexTerms,
		m.RowsSkippedTotal,
		m.SentimentRejected,
	)

	return m
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveQuery records one query outcome.
func (m *Metrics) ObserveQuery(operation, result string, took time.Duration, results int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(operation, result).Inc()
	m.QueryLatency.WithLabelValues(operation).Observe(took.Seconds())
	if result != ResultError {
		m.QueryResultsCount.WithLabelValues(operation).Observe(float64(results))
	}
}

// ObserveRebuild records a finished rebuild. On failure only the status
// counter moves.
func (m *Metrics) ObserveRebuild(err error, took time.Duration, docs, terms, skipped, rejected int) {
	if m == nil {
		return
	}
	if err != nil {
		m.RebuildsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.RebuildsTotal.WithLabelValues("completed").Inc()
	m.RebuildDuration.Observe(took.Seconds())
	m.DocsIndexed.Set(float64(docs))
	m.IndexTerms.Set(float64(terms))
	m.RowsSkippedTotal.Add(float64(skipped))
	m.SentimentRejected.Add(float64(rejected))
}

// CacheHit records a ranking cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss records a ranking cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}
