// Package observability groups the logging, metrics and tracing helpers
// shared by the api, worker and ingest processes.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus business metrics (ingestion, authorization, database)
//   - tracing: OpenTelemetry spans for HTTP requests and ingestion runs
package observability
