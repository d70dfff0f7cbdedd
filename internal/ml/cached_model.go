// Package ml provides a caching model wrapper.
package ml

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scoresight/internal/logger"
)

// CachedModel wraps a Predictor with answer caching.
// Errors are never cached.
type CachedModel struct {
	model   Predictor
	kind    string
	version string
	cache   *PredictionCache
	logger  *logger.ModelLogger
}

// NewCachedModel creates a new cached model
func NewCachedModel(model Predictor, kind, version string, cache *PredictionCache, log *logrus.Logger) *CachedModel {
	return &CachedModel{
		model:   model,
		kind:    kind,
		version: version,
		cache:   cache,
		logger:  logger.NewModelLogger(log),
	}
}

// Predict retrieves a value with caching
func (c *CachedModel) Predict(ctx context.Context, row []float64) (float64, error) {
	key := CacheKey{Model: c.cache.name, ModelVersion: c.version, Method: "predict", Row: row}

	start := time.Now()
	if cached, ok := c.cache.GetValue(key); ok {
		ModelRequestsTotal.WithLabelValues(c.kind, "true").Inc()
		c.logRequest(len(row), true, start)
		return cached, nil
	}

	value, err := c.model.Predict(ctx, row)
	if err != nil {
		return 0, err
	}
	c.cache.SetValue(key, value)
	c.logRequest(len(row), false, start)
	return value, nil
}

// PredictProba retrieves class probabilities with caching
func (c *CachedModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	key := CacheKey{Model: c.cache.name, ModelVersion: c.version, Method: "predict_proba", Row: row}

	start := time.Now()
	if cached, ok := c.cache.GetProba(key); ok {
		ModelRequestsTotal.WithLabelValues(c.kind, "true").Inc()
		c.logRequest(len(row), true, start)
		return cached, nil
	}

	proba, err := PredictProba(ctx, c.model, row)
	if err != nil {
		return nil, err
	}
	c.cache.SetProba(key, proba)
	c.logRequest(len(row), false, start)
	return proba, nil
}

func (c *CachedModel) logRequest(features int, hit bool, start time.Time) {
	c.logger.LogModelRequest(c.cache.name, c.kind, features, hit, float64(time.Since(start).Microseconds())/1000)
}

// HealthCheck probes the wrapped model
func (c *CachedModel) HealthCheck(ctx context.Context) error {
	if hc, ok := c.model.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// ClearCache clears all cached answers
func (c *CachedModel) ClearCache() {
	c.cache.Clear()
}

// GetCacheStats returns cache statistics
func (c *CachedModel) GetCacheStats() (hits, misses uint64, hitRatio float64) {
	return c.cache.Stats()
}

// Close closes the wrapped model
func (c *CachedModel) Close() error {
	if closer, ok := c.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Unwrap returns the cached model
func (c *CachedModel) Unwrap() Predictor {
	return c.model
}
