package metrics

import "time"

// RecordIngestRun records the outcome and duration of one ingestion run.
func RecordIngestRun(mode string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	FeedIngestRunsTotal.WithLabelValues(mode, status).Inc()
	FeedIngestDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordIngestArticles records how many items were stored and how many
// were skipped as already known.
func RecordIngestArticles(inserted, duplicated int) {
	if inserted > 0 {
		FeedIngestArticlesTotal.WithLabelValues("inserted").Add(float64(inserted))
	}
	if duplicated > 0 {
		FeedIngestArticlesTotal.WithLabelValues("duplicated").Add(float64(duplicated))
	}
}

// RecordIngestError records a failed run. errorType is one of
// fetch, parse, validation, storage or internal.
func RecordIngestError(errorType string) {
	FeedIngestErrors.WithLabelValues(errorType).Inc()
}

// RecordDateParseWarning records an item stored with an empty publication date.
func RecordDateParseWarning() {
	FeedDateParseWarnings.Inc()
}

// RecordAuthzDecision records one ownership policy decision.
func RecordAuthzDecision(resource, decision string) {
	AuthzDecisionsTotal.WithLabelValues(resource, decision).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "insert_articles", "list_articles").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
