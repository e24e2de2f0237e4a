package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	pgRepo "my-ankode/internal/infra/adapter/persistence/postgres"
	"my-ankode/internal/infra/db"
	"my-ankode/internal/infra/feed"
	workerPkg "my-ankode/internal/infra/worker"
	"my-ankode/internal/observability/logging"
	"my-ankode/internal/usecase/ingest"
	envcfg "my-ankode/pkg/config"
)

// waitForMigrations blocks until the API has created the schema.
func waitForMigrations(ctx context.Context, logger *slog.Logger, database *sql.DB) error {
	const probe = "SELECT 1 FROM sources LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.ExecContext(ctx, probe); err == nil {
			return nil
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return errors.New("migrations did not complete in time")
}

func main() {
	if err := envcfg.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env file", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	metrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	cfg := workerPkg.LoadConfigFromEnv(logger, metrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("ingest_concurrency", cfg.IngestConcurrency),
		slog.Duration("crawl_timeout", cfg.CrawlTimeout),
		slog.Int("health_port", cfg.HealthPort),
		slog.Int("metrics_port", cfg.MetricsPort))

	feedCfg, err := feed.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("feed configuration: %w", err)
	}

	database, err := db.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := waitForMigrations(ctx, logger, database); err != nil {
		return err
	}

	fetcher := feed.NewHTTPFetcher(feedCfg, nil)
	svc := ingest.NewService(
		fetcher,
		feed.NewGofeedParser(),
		pgRepo.NewArticleRepo(database),
		pgRepo.NewSourceRepo(database),
		logger,
	)

	health := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger, fetcher)
	job := workerPkg.NewJob(svc, cfg, metrics, logger)
	scheduler, err := workerPkg.NewScheduler(ctx, job)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return health.Start(gctx) })
	g.Go(func() error {
		srv := workerPkg.MetricsServer(fmt.Sprintf(":%d", cfg.MetricsPort), prometheus.DefaultGatherer)
		return workerPkg.Serve(gctx, logger, "metrics", srv)
	})
	g.Go(func() error {
		scheduler.Start()
		health.SetReady(true)
		logger.Info("worker ready", slog.Any("next_run", scheduler.Entries()[0].Next))

		if envcfg.GetEnvBool("WORKER_RUN_ON_START", false) {
			_, _ = job.Run(gctx)
		}

		<-gctx.Done()
		health.SetReady(false)
		logger.Info("stopping scheduler, waiting for the running pass")
		<-scheduler.Stop().Done()
		return nil
	})

	return g.Wait()
}
