package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "jarvis"

// Reasoning engine metrics.
var (
	ReasoningRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoning_requests_total",
			Help:      "Engine calls by stage and outcome",
		},
		[]string{"model", "stage", "status"},
	)

	ReasoningRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reasoning_request_duration_seconds",
			Help:      "Engine call latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"model", "stage"},
	)

	ReasoningTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoning_tokens_total",
			Help:      "Engine tokens consumed",
		},
		[]string{"model", "type"}, // prompt / completion
	)

	ReasoningErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoning_errors_total",
			Help:      "Engine errors by failure kind",
		},
		[]string{"model", "kind"},
	)

	ReasoningBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reasoning_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"period"},
	)

	RateLimitWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reasoning_rate_limit_wait_seconds",
			Help:      "Time an engine call waited for the per-minute ceiling",
			Buckets:   []float64{0, 0.5, 1, 3, 6, 12, 30, 60},
		},
	)

	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoning_rate_limit_rejected_total",
			Help:      "Engine calls rejected by the per-minute ceiling",
		},
	)
)

var reasoningRegistered bool

// RegisterReasoningMetrics registers engine metrics. Must be called once from main.
func RegisterReasoningMetrics() {
	if reasoningRegistered {
		return
	}
	prometheus.MustRegister(
		ReasoningRequestsTotal,
		ReasoningRequestDuration,
		ReasoningTokensTotal,
		ReasoningErrorsTotal,
		ReasoningBudgetTokensRemaining,
		RateLimitWaitSeconds,
		RateLimitRejectedTotal,
	)
	reasoningRegistered = true
}
