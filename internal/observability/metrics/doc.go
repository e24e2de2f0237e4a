// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the business metrics of the service:
//   - Feed ingestion runs, outcomes and durations
//   - Ownership policy decisions
//   - Database query durations
//
// HTTP request metrics live next to the HTTP middleware that records them.
// All metrics are registered with the Prometheus default registry and
// exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	inserted, err := repo.InsertBatch(ctx, staged)
//	metrics.RecordDBQuery("insert_articles", time.Since(start))
package metrics
