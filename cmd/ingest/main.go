// Command ingest runs one-shot feed ingestion and source management.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pgRepo "my-ankode/internal/infra/adapter/persistence/postgres"
	"my-ankode/internal/infra/db"
	"my-ankode/internal/infra/feed"
	workerPkg "my-ankode/internal/infra/worker"
	"my-ankode/internal/observability/logging"
	"my-ankode/internal/usecase/ingest"
	srcUC "my-ankode/internal/usecase/source"
	envcfg "my-ankode/pkg/config"
)

func main() {
	if err := envcfg.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env file", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := RootApp(postgresBackend(logger))
	if err := app.RunContext(ctx, os.Args); err != nil {
		if !errors.Is(err, errIngestFailed) {
			logger.Error("command failed", slog.Any("error", err))
		}
		stop()
		os.Exit(1)
	}
}

// postgresBackend opens the database and builds the same pipeline as the worker.
func postgresBackend(logger *slog.Logger) Opener {
	return func(ctx context.Context) (*Backend, error) {
		feedCfg, err := feed.LoadConfigFromEnv()
		if err != nil {
			return nil, err
		}
		database, err := db.Open(ctx)
		if err != nil {
			return nil, err
		}

		articles := pgRepo.NewArticleRepo(database)
		sources := pgRepo.NewSourceRepo(database)
		fetcher := feed.NewHTTPFetcher(feedCfg, nil)
		client := feed.NewHTTPClient(feedCfg)

		workerCfg := workerPkg.DefaultConfig()
		return &Backend{
			Ingester: ingest.NewService(fetcher, feed.NewGofeedParser(), articles, sources, logger),
			Sources:  srcUC.NewService(sources, feed.NewDiscoverer(feedCfg, client)),
			Batch:    workerCfg.BatchOptions(),
			Migrate: func(down bool) error {
				if down {
					return db.MigrateDown(database)
				}
				return db.MigrateUp(database)
			},
			Seed:  func() error { return db.SeedSources(database) },
			Close: database.Close,
		}, nil
	}
}
