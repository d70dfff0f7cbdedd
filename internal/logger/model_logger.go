// Package logger provides model-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for trained model operations.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogModelRequest logs a single model inference.
func (ml *ModelLogger) LogModelRequest(modelName, kind string, featuresCount int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_name":     modelName,
		"model_kind":     kind,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Debug("Model request completed")
}

// LogModelLoaded logs a model that was opened at startup.
func (ml *ModelLogger) LogModelLoaded(modelName, kind, version string, featureCount int) {
	ml.WithFields(logrus.Fields{
		"model_name":    modelName,
		"model_kind":    kind,
		"model_version": version,
		"feature_count": featureCount,
	}).Info("Model loaded")
}

// LogModelLoadFailed logs a model slot that could not be opened.
// The slot stays empty and its target is served by the heuristic.
func (ml *ModelLogger) LogModelLoadFailed(modelName, kind string, err error) {
	ml.WithFields(logrus.Fields{
		"model_name": modelName,
		"model_kind": kind,
	}).WithError(err).Warn("Model load failed")
}

// LogModelHealth logs the result of a model health probe.
func (ml *ModelLogger) LogModelHealth(modelName string, healthy bool, err error) {
	entry := ml.WithFields(logrus.Fields{
		"model_name": modelName,
		"healthy":    healthy,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("Model health checked")
}
