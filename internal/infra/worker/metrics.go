package worker

import (
	"my-ankode/internal/pkg/config"
	"my-ankode/internal/usecase/ingest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics covers scheduled ingestion passes and configuration
// fallbacks (worker_config_*).
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	SourcesTotal         *prometheus.CounterVec
	ArticlesInserted     prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with reg, or with the
// default registerer when reg is nil.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total scheduled ingestion passes by status",
		}, []string{"status"}),

		JobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of a scheduled ingestion pass",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		SourcesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sources_ingested_total",
			Help: "Sources ingested by scheduled passes, by result",
		}, []string{"result"}),

		ArticlesInserted: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_articles_inserted_total",
			Help: "Articles inserted by scheduled passes",
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful pass",
		}),
	}
}

// RecordRun records one pass. A nil stats means the pass could not start.
func (m *WorkerMetrics) RecordRun(stats *ingest.RunStats, err error) {
	if err != nil || stats == nil {
		m.JobRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.JobRunsTotal.WithLabelValues("success").Inc()
	m.JobDurationSeconds.Observe(stats.Duration.Seconds())
	m.SourcesTotal.WithLabelValues("succeeded").Add(float64(stats.Succeeded))
	m.SourcesTotal.WithLabelValues("failed").Add(float64(stats.Failed))
	m.ArticlesInserted.Add(float64(stats.Inserted))
	m.LastSuccessTimestamp.SetToCurrentTime()
}
