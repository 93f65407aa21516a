package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loan_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loan_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_gateway_calls_total",
			Help: "Downstream gateway calls by outcome (ok, absent, failed)",
		},
		[]string{"gateway", "operation", "outcome"},
	)

	GatewayRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_gateway_retries_total",
			Help: "Retried downstream gateway attempts",
		},
		[]string{"gateway", "operation"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_gateway_call_duration_seconds",
			Help:    "Duration of downstream gateway calls including retries",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"gateway", "operation"},
	)

	// 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loan_gateway_circuit_state",
			Help: "Circuit breaker state per gateway",
		},
		[]string{"gateway"},
	)

	UnderwritingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_underwriting_decisions_total",
			Help: "Automated underwriting classifications",
		},
		[]string{"decision"},
	)

	FundingSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_funding_steps_total",
			Help: "Funding pipeline steps by outcome",
		},
		[]string{"step", "outcome"},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_application_transitions_total",
			Help: "Application status transitions",
		},
		[]string{"from", "to"},
	)
)
