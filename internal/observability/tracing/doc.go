// Package tracing provides OpenTelemetry tracing for HTTP requests and
// feed ingestion runs.
//
// Init installs an SDK tracer provider and the W3C trace context
// propagator. Spans are recorded in-process; exporting them is left to
// whichever exporter the deployment registers on the provider.
//
//	shutdown := tracing.Init("my-ankode-api")
//	defer func() { _ = shutdown(context.Background()) }()
//
//	ctx, span := tracing.StartSpan(ctx, "ingest.public")
//	defer span.End()
package tracing
