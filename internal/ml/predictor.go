// Package ml provides handles to trained prediction models.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/models"
)

// Predictor answers a single value for a feature row
type Predictor interface {
	Predict(ctx context.Context, row []float64) (float64, error)
}

// ProbabilityPredictor answers class probabilities for a feature row.
// The order of the returned slice follows FeatureSpec.Classes.
type ProbabilityPredictor interface {
	PredictProba(ctx context.Context, row []float64) ([]float64, error)
}

// HealthChecker is implemented by models that can probe their backend
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PredictProba asks p for class probabilities, failing with ErrCapabilityMissing
// when p cannot produce them.
func PredictProba(ctx context.Context, p Predictor, row []float64) ([]float64, error) {
	pp, ok := p.(ProbabilityPredictor)
	if !ok {
		return nil, ErrCapabilityMissing
	}
	return pp.PredictProba(ctx, row)
}

// FeatureSpec describes the feature row a model was trained on
type FeatureSpec struct {
	Target       string                `json:"target"`
	Version      string                `json:"version"`
	FeatureOrder []string              `json:"feature_order"`
	Classes      []string              `json:"classes,omitempty"`
	Ranges       map[string][2]float64 `json:"ranges,omitempty"`
}

// LoadFeatureSpec reads a JSON feature sidecar
func LoadFeatureSpec(path string) (FeatureSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FeatureSpec{}, fmt.Errorf("%w: failed to read feature sidecar: %v", ErrInvalidArtifact, err)
	}

	var spec FeatureSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return FeatureSpec{}, fmt.Errorf("%w: failed to parse feature sidecar %s: %v", ErrInvalidArtifact, path, err)
	}
	if len(spec.FeatureOrder) == 0 {
		return FeatureSpec{}, fmt.Errorf("%w: feature sidecar %s has no feature_order", ErrInvalidArtifact, path)
	}
	for name, r := range spec.Ranges {
		if r[0] > r[1] {
			return FeatureSpec{}, fmt.Errorf("%w: range for %s is inverted", ErrInvalidArtifact, name)
		}
	}
	return spec, nil
}

// ClassIndex returns the position of label in Classes, or -1
func (s FeatureSpec) ClassIndex(label string) int {
	for i, c := range s.Classes {
		if c == label {
			return i
		}
	}
	return -1
}

// BuildRow lays the feature set out in FeatureOrder.
// Values are clipped to the training ranges when Ranges carries them.
func BuildRow(spec FeatureSpec, set features.Set) ([]float64, error) {
	row := make([]float64, len(spec.FeatureOrder))
	for i, name := range spec.FeatureOrder {
		v, ok := set.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing feature %q", ErrShapeMismatch, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: feature %q is not finite", ErrShapeMismatch, name)
		}
		if r, ok := spec.Ranges[name]; ok {
			v = features.Clamp(v, r[0], r[1])
		}
		row[i] = v
	}
	return row, nil
}

// Handle is an opened model bound to one prediction target
type Handle struct {
	Target models.Target
	Kind   string
	Spec   FeatureSpec
	Model  Predictor
}

// Row builds the feature row this handle's model expects
func (h *Handle) Row(set features.Set) ([]float64, error) {
	return BuildRow(h.Spec, set)
}

// HealthCheck probes the model backend when it supports probing
func (h *Handle) HealthCheck(ctx context.Context) error {
	if hc, ok := h.Model.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Close releases the model's resources
func (h *Handle) Close() error {
	if c, ok := h.Model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
