// Package ml provides Prometheus metrics for model operations.
package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yourusername/scoresight/internal/metrics"
)

var factory = promauto.With(metrics.GetRegistry())

var (
	// ModelRequestsTotal tracks model inferences
	ModelRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "model_requests_total",
			Help:      "Total number of model inferences",
		},
		[]string{"model_kind", "cache_hit"},
	)

	// ModelLatency tracks model inference latency
	ModelLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Name:      "model_latency_seconds",
			Help:      "Model inference latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model_kind"},
	)

	// ModelErrorsTotal tracks failed model calls
	ModelErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "model_errors_total",
			Help:      "Total number of failed model calls",
		},
		[]string{"model_kind", "method", "error_type"},
	)

	// ModelCacheHitRatio tracks cache hit ratio
	ModelCacheHitRatio = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "model_cache_hit_ratio",
			Help:      "Model answer cache hit ratio",
		},
		[]string{"model_name"},
	)
)

// ModelCircuitState tracks the circuit breaker state per model (0 closed, 1 half-open, 2 open)
var ModelCircuitState = factory.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "model_circuit_state",
		Help:      "Circuit breaker state per model",
	},
	[]string{"model_name"},
)
