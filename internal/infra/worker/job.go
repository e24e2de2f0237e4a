package worker

import (
	"context"
	"fmt"
	"log/slog"

	"my-ankode/internal/usecase/ingest"

	"github.com/robfig/cron/v3"
)

// ActiveIngester runs one pass over the active sources.
type ActiveIngester interface {
	IngestActiveSources(ctx context.Context, opts ingest.BatchOptions) (*ingest.RunStats, error)
}

// Job is the scheduled ingestion pass.
type Job struct {
	ingester ActiveIngester
	cfg      *WorkerConfig
	metrics  *WorkerMetrics
	logger   *slog.Logger
}

// NewJob returns a job. metrics may be nil.
func NewJob(ingester ActiveIngester, cfg *WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{ingester: ingester, cfg: cfg, metrics: metrics, logger: logger}
}

// Run performs one pass bounded by CrawlTimeout.
func (j *Job) Run(ctx context.Context) (*ingest.RunStats, error) {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.CrawlTimeout)
	defer cancel()

	j.logger.Info("scheduled ingestion started")
	stats, err := j.ingester.IngestActiveSources(ctx, j.cfg.BatchOptions())
	if j.metrics != nil {
		j.metrics.RecordRun(stats, err)
	}
	if err != nil {
		j.logger.Error("scheduled ingestion failed", slog.Any("error", err))
		return nil, err
	}
	j.logger.Info("scheduled ingestion finished",
		slog.Int("sources", stats.Sources),
		slog.Int64("failed", stats.Failed),
		slog.Int64("inserted", stats.Inserted),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// NewScheduler registers the job on a cron in the configured zone. A run
// still in progress makes the next tick a no-op.
func NewScheduler(ctx context.Context, j *Job) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(j.cfg.Location()),
		cron.WithChain(cron.Recover(cronLogger{j.logger}), cron.SkipIfStillRunning(cronLogger{j.logger})),
	)
	if _, err := c.AddFunc(j.cfg.CronSchedule, func() { _, _ = j.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", j.cfg.CronSchedule, err)
	}
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug("cron: "+msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error("cron: "+msg, append([]any{slog.Any("error", err)}, kv...)...)
}
