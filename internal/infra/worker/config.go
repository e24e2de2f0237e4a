// Package worker holds the runtime pieces of the scheduled ingestion
// process: its configuration, metrics and probe server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"my-ankode/internal/pkg/config"
	"my-ankode/internal/usecase/ingest"
)

// WorkerConfig controls the ingestion schedule.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression or a descriptor.
	CronSchedule string
	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string
	// IngestConcurrency bounds how many sources are fetched at once.
	IngestConcurrency int
	// CrawlTimeout bounds a whole pass over the active sources.
	CrawlTimeout time.Duration
	// SourceTimeout bounds a single source within a pass.
	SourceTimeout time.Duration
	HealthPort    int
	MetricsPort   int
}

// DefaultConfig runs every six hours in UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:      "0 */6 * * *",
		Timezone:          "UTC",
		IngestConcurrency: 4,
		CrawlTimeout:      10 * time.Minute,
		SourceTimeout:     time.Minute,
		HealthPort:        9091,
		MetricsPort:       9090,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.IngestConcurrency, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("ingest concurrency: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.CrawlTimeout); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.SourceTimeout); err != nil {
		errs = append(errs, fmt.Errorf("source timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health and metrics ports must differ"))
	}
	return errors.Join(errs...)
}

// Location returns the schedule's time zone.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BatchOptions maps the config onto one ingestion pass.
func (c *WorkerConfig) BatchOptions() ingest.BatchOptions {
	return ingest.BatchOptions{
		Parallelism:   c.IngestConcurrency,
		SourceTimeout: c.SourceTimeout,
	}
}

// LoadConfigFromEnv never fails: a bad variable falls back to its default,
// is logged and is counted in metrics.
//
//	CRON_SCHEDULE              "0 */6 * * *"
//	WORKER_TIMEZONE            "UTC"
//	WORKER_INGEST_CONCURRENCY  4 (1-32)
//	CRAWL_TIMEOUT              10m (1m-4h)
//	WORKER_SOURCE_TIMEOUT      1m (5s-10m)
//	WORKER_HEALTH_PORT         9091
//	WORKER_METRICS_PORT        9090
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	tr := config.NewTracker(logger, cm)

	config.Apply(tr, "cron_schedule", &cfg.CronSchedule,
		config.LoadString("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	config.Apply(tr, "timezone", &cfg.Timezone,
		config.LoadString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	config.Apply(tr, "ingest_concurrency", &cfg.IngestConcurrency,
		config.LoadInt("WORKER_INGEST_CONCURRENCY", cfg.IngestConcurrency, config.IntRange(1, 32)))
	config.Apply(tr, "crawl_timeout", &cfg.CrawlTimeout,
		config.LoadDuration("CRAWL_TIMEOUT", cfg.CrawlTimeout, config.DurationRange(time.Minute, 4*time.Hour)))
	config.Apply(tr, "source_timeout", &cfg.SourceTimeout,
		config.LoadDuration("WORKER_SOURCE_TIMEOUT", cfg.SourceTimeout, config.DurationRange(5*time.Second, 10*time.Minute)))
	config.Apply(tr, "health_port", &cfg.HealthPort,
		config.LoadInt("WORKER_HEALTH_PORT", cfg.HealthPort, config.IntRange(1024, 65535)))
	config.Apply(tr, "metrics_port", &cfg.MetricsPort,
		config.LoadInt("WORKER_METRICS_PORT", cfg.MetricsPort, config.IntRange(1024, 65535)))

	if cfg.HealthPort == cfg.MetricsPort {
		def := DefaultConfig()
		tr.Note("metrics_port", true, fmt.Sprintf("metrics port %d collides with health port, using %d and %d",
			cfg.MetricsPort, def.HealthPort, def.MetricsPort))
		cfg.HealthPort, cfg.MetricsPort = def.HealthPort, def.MetricsPort
	}
	tr.Done()
	return &cfg
}
