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

	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_runs_total",
			Help: "Total lender match runs by resulting routing state",
		},
		[]string{"routing_state"},
	)

	MatchEligibleLenders = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_eligible_lenders",
			Help:    "Eligible lender count per run and pool",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"pool"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog snapshot cache requests by outcome",
		},
		[]string{"outcome"},
	)

	CatalogSnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_lenders",
			Help: "Lender count in the last loaded catalog snapshot",
		},
		[]string{"lender_type"},
	)

	DecisionRecordsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_records_indexed_total",
			Help: "Decision records written to the audit index",
		},
		[]string{"status"},
	)

	EscalationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_sent_total",
			Help: "Hero-mode and stale-catalog escalations sent",
		},
		[]string{"channel", "status"},
	)
)
