// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job durations span four orders of magnitude: single-product
// classification finishes in milliseconds while a reprocess-all batch
// can run for minutes. The default buckets top out too early.
var durationBuckets = []float64{.005, .025, .1, .5, 1, 5, 15, 60, 300, 900}

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Jobs completed, by task type",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Jobs failed, by task type and thrown error code",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Job processing duration in seconds",
			Buckets: durationBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being processed, by task type",
		},
		[]string{"task_type"},
	)

	ProductsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_classified_total",
			Help: "Products classified, by food category",
		},
		[]string{"category"},
	)

	BaseScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "base_scores_computed_total",
			Help: "Base score computations, by outcome (scored, withheld, skipped)",
		},
		[]string{"outcome"},
	)

	ManualReviewRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manual_review_routed_total",
			Help: "Products routed to manual review, by blocking reason",
		},
		[]string{"reason"},
	)
)
