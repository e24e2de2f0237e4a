// Package logging provides structured logging utilities with context propagation.
//
// Loggers are built on log/slog. LOG_LEVEL selects the minimum level
// (debug, info, warn, error) and LOG_FORMAT selects json (default) or text.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("processing request")
//	}
package logging
