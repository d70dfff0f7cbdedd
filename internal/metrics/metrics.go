// Package metrics provides centralized Prometheus metrics registry for ScoreSight.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every ScoreSight metric
const Namespace = "scoresight"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "predictions_total",
		Help:      "Total number of packaged predictions by target and source",
	}, []string{"target", "source"})
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of heuristic fallbacks by target and reason",
	}, []string{"target", "reason"})
	RejectedInputsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rejected_inputs_total",
		Help:      "Total number of inputs rejected before prediction",
	}, []string{"target"})
	AnchorHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "anchor_hits_total",
		Help:      "Total number of inputs answered by a calibration anchor",
	}, []string{"target"})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of the full prediction pipeline in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"target"})
	PredictionConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "prediction_confidence",
		Help:      "Confidence scores attached to packaged predictions",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95},
	}, []string{"target"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(FallbacksTotal)
		registry.MustRegister(RejectedInputsTotal)
		registry.MustRegister(AnchorHitsTotal)

		// Register histogram metrics
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(PredictionConfidence)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// WriteText writes every gathered metric family in the Prometheus text format.
func WriteText(w io.Writer) error {
	families, err := GetRegistry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}

// RecordPrediction records a packaged prediction.
func RecordPrediction(target, source string, confidence int, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(target, source).Inc()
	PredictionConfidence.WithLabelValues(target).Observe(float64(confidence))
	PredictionLatency.WithLabelValues(target).Observe(durationSeconds)
}

// RecordFallback records a heuristic fallback.
func RecordFallback(target, reason string) {
	FallbacksTotal.WithLabelValues(target, reason).Inc()
}

// RecordRejectedInput records an input rejected by decoding or validation.
func RecordRejectedInput(target string) {
	RejectedInputsTotal.WithLabelValues(target).Inc()
}

// RecordAnchorHit records an input answered by a calibration anchor.
func RecordAnchorHit(target string) {
	AnchorHitsTotal.WithLabelValues(target).Inc()
}
