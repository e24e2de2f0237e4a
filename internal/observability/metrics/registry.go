// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed ingestion metrics
var (
	// FeedIngestRunsTotal counts ingestion runs by mode (public/user) and status
	FeedIngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ingest_runs_total",
			Help: "Total number of feed ingestion runs",
		},
		[]string{"mode", "status"},
	)

	// FeedIngestDuration measures one ingestion run from fetch to commit
	FeedIngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_ingest_duration_seconds",
			Help:    "Feed ingestion duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	// FeedIngestArticlesTotal counts feed items by outcome (inserted/duplicated)
	FeedIngestArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ingest_articles_total",
			Help: "Total number of feed items processed by outcome",
		},
		[]string{"result"},
	)

	// FeedIngestErrors counts failed runs by error type
	FeedIngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ingest_errors_total",
			Help: "Total number of feed ingestion errors by type",
		},
		[]string{"error_type"},
	)

	// FeedDateParseWarnings counts items stored without a publication date
	FeedDateParseWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_date_parse_warnings_total",
			Help: "Total number of feed items whose publication date could not be parsed",
		},
	)
)

// Authorization metrics
var (
	// AuthzDecisionsTotal counts policy decisions by resource kind and outcome
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of ownership policy decisions",
		},
		[]string{"resource", "decision"},
	)
)

// Database metrics
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
)
