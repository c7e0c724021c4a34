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

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_llm_requests_total",
			Help: "Text generation calls made by the ingestion pipeline, by outcome code",
		},
		[]string{"operation", "outcome"},
	)

	QuestionsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_questions_dropped_total",
			Help: "Question elements skipped during normalization",
		},
	)

	ReportFieldIssues = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_report_field_issues_total",
			Help: "Report fields replaced by defaults because the model value was unusable",
		},
	)
)
