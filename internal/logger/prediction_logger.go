// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for prediction requests.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a packaged prediction.
func (pl *PredictionLogger) LogPrediction(requestID, target, source string, value float64, confidence int, category string, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"request_id": requestID,
		"target":     target,
		"source":     source,
		"value":      value,
		"confidence": confidence,
		"category":   category,
		"latency_ms": latencyMs,
	}).Info("Prediction completed")
}

// LogModelFallback logs a switch from the model path to the heuristic.
func (pl *PredictionLogger) LogModelFallback(requestID, target, reason string, err error) {
	entry := pl.WithFields(logrus.Fields{
		"request_id": requestID,
		"target":     target,
		"reason":     reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Model unavailable, using heuristic")
}

// LogAnchorHit logs an input that matched a pinned calibration fixture.
func (pl *PredictionLogger) LogAnchorHit(target string, value float64) {
	pl.WithFields(logrus.Fields{
		"target": target,
		"value":  value,
	}).Warn("Calibration anchor matched, formula bypassed")
}

// LogRejectedInput logs an input that failed decoding or validation.
func (pl *PredictionLogger) LogRejectedInput(requestID, target string, err error) {
	pl.WithFields(logrus.Fields{
		"request_id": requestID,
		"target":     target,
	}).WithError(err).Info("Prediction input rejected")
}
