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

	MatchesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_scored_total",
			Help: "Founder-funder pairs scored, by quality tier",
		},
		[]string{"quality_tier"},
	)

	MatchScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_scoring_duration_seconds",
			Help:    "Time spent scoring and ranking the candidates of one request",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Match API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Calls to the embeddings provider by outcome",
		},
		[]string{"status"},
	)
)

// JobTimer tracks a single job from start to completion.
type JobTimer struct {
	taskType string
	timer    *prometheus.Timer
}

// StartJob marks a job active and starts its duration timer.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{
		taskType: taskType,
		timer:    prometheus.NewTimer(WorkerJobDuration.WithLabelValues(taskType)),
	}
}

// Done records the outcome. An empty errorCode counts as completed.
func (j *JobTimer) Done(errorCode string) {
	j.timer.ObserveDuration()
	WorkerJobsActive.WithLabelValues(j.taskType).Dec()
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(j.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(j.taskType, errorCode).Inc()
}
