// Package ml provides a local linear model loaded from an exported artifact.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Linear artifact types
const (
	LinearRegression   = "linear"
	LogisticRegression = "logistic"
	SoftmaxRegression  = "softmax"
)

// LinearArtifact is the JSON export of a fitted linear estimator
type LinearArtifact struct {
	Target       string      `json:"target"`
	Version      string      `json:"version"`
	Type         string      `json:"type"`
	FeatureOrder []string    `json:"feature_order"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
	Classes      []string    `json:"classes,omitempty"`
}

// LinearModel evaluates a LinearArtifact in process
type LinearModel struct {
	artifact LinearArtifact
}

// LoadLinearModel reads and checks a linear artifact
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model artifact: %v", ErrInvalidArtifact, err)
	}

	var artifact LinearArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model artifact %s: %v", ErrInvalidArtifact, path, err)
	}
	return NewLinearModel(artifact)
}

// NewLinearModel checks the artifact's shape and wraps it
func NewLinearModel(artifact LinearArtifact) (*LinearModel, error) {
	width := len(artifact.FeatureOrder)
	if width == 0 {
		return nil, fmt.Errorf("%w: artifact has no feature_order", ErrInvalidArtifact)
	}
	if len(artifact.Coefficients) == 0 || len(artifact.Coefficients) != len(artifact.Intercepts) {
		return nil, fmt.Errorf("%w: %d coefficient rows for %d intercepts",
			ErrInvalidArtifact, len(artifact.Coefficients), len(artifact.Intercepts))
	}
	for i, coef := range artifact.Coefficients {
		if len(coef) != width {
			return nil, fmt.Errorf("%w: coefficient row %d has %d weights, want %d",
				ErrInvalidArtifact, i, len(coef), width)
		}
	}

	switch artifact.Type {
	case LinearRegression:
		if len(artifact.Coefficients) != 1 {
			return nil, fmt.Errorf("%w: linear artifact must have one coefficient row", ErrInvalidArtifact)
		}
	case LogisticRegression:
		if len(artifact.Coefficients) != 1 || len(artifact.Classes) != 2 {
			return nil, fmt.Errorf("%w: logistic artifact must have one coefficient row and two classes", ErrInvalidArtifact)
		}
	case SoftmaxRegression:
		if len(artifact.Classes) != len(artifact.Coefficients) {
			return nil, fmt.Errorf("%w: softmax artifact has %d classes for %d coefficient rows",
				ErrInvalidArtifact, len(artifact.Classes), len(artifact.Coefficients))
		}
	default:
		return nil, fmt.Errorf("%w: unknown artifact type %q", ErrInvalidArtifact, artifact.Type)
	}

	return &LinearModel{artifact: artifact}, nil
}

// Spec returns the feature spec embedded in the artifact
func (m *LinearModel) Spec() FeatureSpec {
	return FeatureSpec{
		Target:       m.artifact.Target,
		Version:      m.artifact.Version,
		FeatureOrder: m.artifact.FeatureOrder,
		Classes:      m.artifact.Classes,
	}
}

// Predict returns the regression value, or the most likely class index for classifiers
func (m *LinearModel) Predict(ctx context.Context, row []float64) (float64, error) {
	start := time.Now()
	defer func() {
		ModelLatency.WithLabelValues("linear").Observe(time.Since(start).Seconds())
	}()

	if err := m.checkRow(row); err != nil {
		return 0, err
	}
	ModelRequestsTotal.WithLabelValues("linear", "false").Inc()

	if m.artifact.Type == LinearRegression {
		return dot(m.artifact.Coefficients[0], row) + m.artifact.Intercepts[0], nil
	}

	proba := m.proba(row)
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return float64(best), nil
}

// PredictProba returns class probabilities in the order of the artifact's classes
func (m *LinearModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	if m.artifact.Type == LinearRegression {
		return nil, ErrCapabilityMissing
	}

	start := time.Now()
	defer func() {
		ModelLatency.WithLabelValues("linear").Observe(time.Since(start).Seconds())
	}()

	if err := m.checkRow(row); err != nil {
		return nil, err
	}
	ModelRequestsTotal.WithLabelValues("linear", "false").Inc()
	return m.proba(row), nil
}

func (m *LinearModel) checkRow(row []float64) error {
	if len(row) != len(m.artifact.FeatureOrder) {
		return fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(row), len(m.artifact.FeatureOrder))
	}
	return nil
}

func (m *LinearModel) proba(row []float64) []float64 {
	if m.artifact.Type == LogisticRegression {
		p := sigmoid(dot(m.artifact.Coefficients[0], row) + m.artifact.Intercepts[0])
		return []float64{1 - p, p}
	}

	scores := make([]float64, len(m.artifact.Coefficients))
	maxScore := math.Inf(-1)
	for i, coef := range m.artifact.Coefficients {
		scores[i] = dot(coef, row) + m.artifact.Intercepts[i]
		maxScore = math.Max(maxScore, scores[i])
	}
	var sum float64
	for i := range scores {
		scores[i] = math.Exp(scores[i] - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
