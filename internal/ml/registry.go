// Package ml provides the factory and registry for model handles.
package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scoresight/internal/config"
	"github.com/yourusername/scoresight/internal/logger"
	"github.com/yourusername/scoresight/internal/models"
)

// Open builds the model handle for one target from its configuration
func Open(target models.Target, cfg config.ModelConfig, log *logrus.Logger) (*Handle, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: no model configured for %s", ErrModelUnavailable, target)
	}

	var (
		model Predictor
		spec  FeatureSpec
		err   error
	)

	switch cfg.Kind {
	case config.ModelKindLinear:
		var linear *LinearModel
		linear, err = LoadLinearModel(cfg.Path)
		if err != nil {
			return nil, err
		}
		spec = linear.Spec()
		if cfg.Sidecar != "" {
			sidecar, err := LoadFeatureSpec(cfg.Sidecar)
			if err != nil {
				return nil, err
			}
			if len(sidecar.FeatureOrder) != len(spec.FeatureOrder) {
				return nil, fmt.Errorf("%w: sidecar lists %d features, artifact %d",
					ErrShapeMismatch, len(sidecar.FeatureOrder), len(spec.FeatureOrder))
			}
			spec.Ranges = sidecar.Ranges
		}
		model = linear

	case config.ModelKindHTTP:
		spec, err = LoadFeatureSpec(cfg.Sidecar)
		if err != nil {
			return nil, err
		}
		httpCfg := DefaultHTTPModelConfig(cfg.URL)
		if cfg.TimeoutSeconds > 0 {
			httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpCfg.MaxRetries = cfg.RetryAttempts
		httpCfg.RateLimit = cfg.RateLimit
		model = NewHTTPModel(httpCfg, spec, log)

	case config.ModelKindGRPC:
		spec, err = LoadFeatureSpec(cfg.Sidecar)
		if err != nil {
			return nil, err
		}
		model, err = NewGRPCModel(GRPCModelConfig{
			Address: cfg.Address,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, spec, log)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unknown model kind %q", ErrModelUnavailable, cfg.Kind)
	}

	if cfg.ModelVersion != "" {
		spec.Version = cfg.ModelVersion
	}
	if spec.Target != "" && spec.Target != string(target) {
		return nil, fmt.Errorf("%w: model trained for %q bound to %q", ErrInvalidArtifact, spec.Target, target)
	}

	if cfg.Guarded() {
		breaker := NewCircuitBreaker(string(target), BreakerConfig{
			MaxFailures:   cfg.BreakerFailures,
			FailureWindow: time.Duration(cfg.BreakerWindowSeconds) * time.Second,
			Cooldown:      time.Duration(cfg.BreakerCooldownSeconds) * time.Second,
		}, log)
		model = NewBreakerModel(model, breaker)
	}

	if cfg.Cached() {
		cache := NewPredictionCache(string(target), time.Duration(cfg.CacheTTLSeconds)*time.Second, cfg.CacheMaxSize)
		model = NewCachedModel(model, cfg.Kind, spec.Version, cache, log)
	}

	return &Handle{Target: target, Kind: cfg.Kind, Spec: spec, Model: model}, nil
}

// ModelStatus reports the state of one configured model slot
type ModelStatus struct {
	Target     models.Target `json:"target"`
	Kind       string        `json:"kind"`
	Version    string        `json:"version,omitempty"`
	Features   int           `json:"features"`
	Healthy    bool          `json:"healthy"`
	Error      string        `json:"error,omitempty"`
	CacheHits  uint64        `json:"cache_hits,omitempty"`
	CacheMiss  uint64        `json:"cache_misses,omitempty"`
	CacheRatio float64       `json:"cache_hit_ratio,omitempty"`
	Circuit    string        `json:"circuit,omitempty"`
}

// Registry holds the opened model handle of each target
type Registry struct {
	handles map[models.Target]*Handle
	logger  *logger.ModelLogger
}

// NewRegistry creates an empty registry
func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		handles: make(map[models.Target]*Handle),
		logger:  logger.NewModelLogger(log),
	}
}

// OpenRegistry opens every enabled model slot. A slot that fails to open is
// logged and left empty so its target is served by the heuristic.
func OpenRegistry(cfg config.ModelsConfig, log *logrus.Logger) *Registry {
	r := NewRegistry(log)
	for name, slot := range cfg.ByTarget() {
		if !slot.Enabled() {
			continue
		}
		target, err := models.ParseTarget(name)
		if err != nil {
			r.logger.LogModelLoadFailed(name, slot.Kind, err)
			continue
		}
		handle, err := Open(target, slot, log)
		if err != nil {
			r.logger.LogModelLoadFailed(name, slot.Kind, err)
			continue
		}
		r.Register(handle)
	}
	return r
}

// Register binds a handle to its target, replacing any previous one
func (r *Registry) Register(h *Handle) {
	r.handles[h.Target] = h
	r.logger.LogModelLoaded(string(h.Target), h.Kind, h.Spec.Version, len(h.Spec.FeatureOrder))
}

// Get returns the handle for a target
func (r *Registry) Get(target models.Target) (*Handle, bool) {
	h, ok := r.handles[target]
	return h, ok
}

// Status probes every registered handle
func (r *Registry) Status(ctx context.Context) []ModelStatus {
	statuses := make([]ModelStatus, 0, len(r.handles))
	for _, target := range models.AllTargets {
		h, ok := r.handles[target]
		if !ok {
			continue
		}

		st := ModelStatus{
			Target:   target,
			Kind:     h.Kind,
			Version:  h.Spec.Version,
			Features: len(h.Spec.FeatureOrder),
			Healthy:  true,
		}
		err := h.HealthCheck(ctx)
		if err != nil {
			st.Healthy = false
			st.Error = err.Error()
		}
		r.logger.LogModelHealth(string(target), st.Healthy, err)

		if cached, ok := h.Model.(*CachedModel); ok {
			st.CacheHits, st.CacheMiss, st.CacheRatio = cached.GetCacheStats()
		}
		if guarded, ok := findBreaker(h.Model); ok {
			st.Circuit = guarded.State().String()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Close closes every registered handle
func (r *Registry) Close() error {
	var errs []error
	for target, h := range r.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s model: %w", target, err))
		}
	}
	return errors.Join(errs...)
}
