package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codequest_executions_total",
			Help: "Total number of submission executions",
		},
		[]string{"language", "status"},
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codequest_execution_duration_ms",
			Help:    "End-to-end submission execution duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"language"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codequest_queue_depth",
			Help: "Current number of submissions waiting in the queue",
		},
	)

	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codequest_active_workers",
			Help: "Number of workers currently executing submissions",
		},
	)

	ContainerCreationTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codequest_container_creation_ms",
			Help:    "Time to create and start an execution container",
			Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000},
		},
	)

	NativeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codequest_native_fallbacks_total",
			Help: "Times the native Go backend failed and execution fell back to a container",
		},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codequest_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
