package ml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed means model calls pass through
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means one trial call is allowed after cooldown
	CircuitHalfOpen
	// CircuitOpen means model calls are skipped
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker defaults applied when the config leaves a duration at zero
const (
	DefaultFailureWindow = time.Minute
	DefaultCooldown      = 30 * time.Second
)

// BreakerConfig defines circuit breaker thresholds
type BreakerConfig struct {
	MaxFailures   int
	FailureWindow time.Duration
	Cooldown      time.Duration
}

// CircuitBreaker stops calling a failing model backend until a cooldown passes
type CircuitBreaker struct {
	name        string
	config      BreakerConfig
	state       CircuitState
	failures    int
	lastFailure time.Time
	openedAt    time.Time
	trial       bool
	mu          sync.Mutex
	logger      *logrus.Entry
	now         func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(name string, config BreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	if config.FailureWindow <= 0 {
		config.FailureWindow = DefaultFailureWindow
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultCooldown
	}
	cb := &CircuitBreaker{
		name:   name,
		config: config,
		state:  CircuitClosed,
		logger: logger.WithFields(logrus.Fields{"component": "ml", "model_name": name}),
		now:    time.Now,
	}
	ModelCircuitState.WithLabelValues(name).Set(float64(CircuitClosed))
	return cb
}

// Allow reports whether a call may go through, moving an expired open circuit
// to half-open. While half-open only one trial call is let through until its
// outcome is recorded.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.config.Cooldown {
		cb.trial = false
		cb.setStateLocked(CircuitHalfOpen, "cooldown elapsed")
	}

	switch cb.state {
	case CircuitOpen:
		return false
	case CircuitHalfOpen:
		if cb.trial {
			return false
		}
		cb.trial = true
		return true
	default:
		return true
	}
}

// RecordFailure counts a failed call and opens the circuit past the threshold.
// A failure while half-open reopens immediately.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trial = false
	now := cb.now()
	if now.Sub(cb.lastFailure) > cb.config.FailureWindow {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now

	cb.logger.WithFields(logrus.Fields{
		"failure_count": cb.failures,
		"max_allowed":   cb.config.MaxFailures,
	}).WithError(err).Debug("Model failure recorded")

	if cb.state == CircuitHalfOpen || (cb.state == CircuitClosed && cb.failures >= cb.config.MaxFailures) {
		cb.openedAt = now
		cb.setStateLocked(CircuitOpen, fmt.Sprintf("%d failures within %v", cb.failures, cb.config.FailureWindow))
	}
}

// RecordSuccess resets the failure count and closes the circuit
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.trial = false
	if cb.state != CircuitClosed {
		cb.setStateLocked(CircuitClosed, "call succeeded")
	}
}

// State returns current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually resets circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.trial = false
	cb.setStateLocked(CircuitClosed, "manual reset")
}

func (cb *CircuitBreaker) setStateLocked(state CircuitState, reason string) {
	old := cb.state
	cb.state = state
	ModelCircuitState.WithLabelValues(cb.name).Set(float64(state))

	entry := cb.logger.WithFields(logrus.Fields{
		"old_state": old.String(),
		"new_state": state.String(),
		"reason":    reason,
	})
	if state == CircuitOpen {
		entry.Warn("Model circuit opened, heuristic will answer until cooldown")
		return
	}
	entry.Info("Model circuit state changed")
}

// BreakerModel guards a Predictor with a CircuitBreaker
type BreakerModel struct {
	model   Predictor
	breaker *CircuitBreaker
}

// NewBreakerModel wraps model with breaker
func NewBreakerModel(model Predictor, breaker *CircuitBreaker) *BreakerModel {
	return &BreakerModel{model: model, breaker: breaker}
}

// Predict calls the wrapped model unless the circuit is open
func (b *BreakerModel) Predict(ctx context.Context, row []float64) (float64, error) {
	if !b.breaker.Allow() {
		return 0, ErrCircuitOpen
	}
	v, err := b.model.Predict(ctx, row)
	b.record(err)
	return v, err
}

// PredictProba calls the wrapped model unless the circuit is open
func (b *BreakerModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	if _, ok := b.model.(ProbabilityPredictor); !ok {
		return nil, ErrCapabilityMissing
	}
	if !b.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	proba, err := PredictProba(ctx, b.model, row)
	b.record(err)
	return proba, err
}

// record treats a missing capability as an answer, not a backend fault
func (b *BreakerModel) record(err error) {
	switch {
	case err == nil, errors.Is(err, ErrCapabilityMissing):
		b.breaker.RecordSuccess()
	default:
		b.breaker.RecordFailure(err)
	}
}

// State returns the circuit state
func (b *BreakerModel) State() CircuitState {
	return b.breaker.State()
}

// HealthCheck probes the wrapped model regardless of the circuit
func (b *BreakerModel) HealthCheck(ctx context.Context) error {
	if hc, ok := b.model.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Unwrap returns the guarded model
func (b *BreakerModel) Unwrap() Predictor {
	return b.model
}

// Close closes the wrapped model
func (b *BreakerModel) Close() error {
	if closer, ok := b.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// findBreaker walks the wrapper chain of p looking for a BreakerModel
func findBreaker(p Predictor) (*BreakerModel, bool) {
	for p != nil {
		if b, ok := p.(*BreakerModel); ok {
			return b, true
		}
		u, ok := p.(interface{ Unwrap() Predictor })
		if !ok {
			return nil, false
		}
		p = u.Unwrap()
	}
	return nil, false
}
