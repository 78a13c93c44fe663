// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track the 8-stage ingestion/synthesis pipeline.
var (
	// ClustersActiveTotal tracks the number of open (non-closed) clusters.
	ClustersActiveTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusters_active_total",
			Help: "Number of clusters not yet closed",
		},
	)

	// PublishedEventsTotal tracks total number of published events in the store.
	PublishedEventsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "published_events_total",
			Help: "Total number of published events in the store",
		},
	)

	// EntriesFetchedTotal counts feed entries fetched from each source.
	EntriesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entries_fetched_total",
			Help: "Total number of feed entries fetched from sources",
		},
		[]string{"source"},
	)

	// ScoringTotal counts scoring stage outcomes by status.
	ScoringTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_total",
			Help: "Total number of entries scored",
		},
		[]string{"status"},
	)

	// ScoringDuration measures time to score one entry.
	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "Time taken to score a feed entry",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// ClusterMatchTotal counts clustering decisions by the match rule that fired.
	ClusterMatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluster_match_total",
			Help: "Total number of clustering decisions by matching rule",
		},
		[]string{"rule"}, // strong, reject_floor, moderate, entity, new_cluster
	)

	// FeedCrawlDuration measures time to crawl a feed source.
	FeedCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_crawl_duration_seconds",
			Help:    "Time taken to crawl a feed source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// FeedCrawlErrors counts errors during feed crawling.
	FeedCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_crawl_errors_total",
			Help: "Total number of feed crawl errors",
		},
		[]string{"source", "error_type"},
	)

	// ContentFetchAttemptsTotal counts body-fetch attempts by result.
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of body fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch a cluster member's body.
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article body content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes.
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)

	// PublishTotal counts publisher outcomes: inserted, updated, skipped.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Total number of publisher decisions",
		},
		[]string{"outcome"},
	)

	// OutboundCallTotal counts shared HTTP client calls by endpoint and outcome.
	OutboundCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_call_total",
			Help: "Total number of outbound calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
