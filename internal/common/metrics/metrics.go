// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	InventoryIngests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_ingests_total",
			Help: "Dataset ingestions by outcome and detected domain",
		},
		[]string{"outcome", "domain"},
	)

	InventoryRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_rows",
			Help: "Rows in the active dataset per session",
		},
		[]string{"session"},
	)

	InventoryQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_queries_total",
			Help: "Product questions by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	InventoryMatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_match_score",
			Help:    "Similarity score of the best candidate per question",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	InventoryReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reports_total",
			Help: "Summaries generated by kind",
		},
		[]string{"kind"},
	)

	ExchangeRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_exchange_rate",
			Help: "Active exchange rate per session",
		},
		[]string{"session"},
	)
)
