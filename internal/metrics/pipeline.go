package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and collaborator metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Chat pipeline runs by outcome (ok, fallback) and failure kind",
		},
		[]string{"outcome", "kind"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Stage latency including tool execution",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"stage", "status"},
	)

	NormalizerStepTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizer_step_total",
			Help:      "Which normalization step produced the final response",
		},
		[]string{"step"},
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_sample_fallback_total",
			Help:      "Searches answered from the built-in sample catalog",
		},
		[]string{"provider"}, // food / restaurant
	)

	CartRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_requests_total",
			Help:      "Cart collaborator calls; simulated means the service was unreachable",
		},
		[]string{"op", "result"}, // ok / error / simulated
	)
)

var pipelineRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineRegistered {
		return
	}
	prometheus.MustRegister(
		PipelineRunsTotal,
		PipelineStageDuration,
		NormalizerStepTotal,
		SearchFallbackTotal,
		CartRequestsTotal,
	)
	pipelineRegistered = true
}
