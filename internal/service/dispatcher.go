package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/heuristic"
	"github.com/yourusername/scoresight/internal/ml"
	"github.com/yourusername/scoresight/internal/models"
)

// Fallback reasons reported when the heuristic answers instead of a model
const (
	ReasonUnavailable       = "unavailable"
	ReasonShapeMismatch     = "shape_mismatch"
	ReasonCapabilityMissing = "capability_missing"
	ReasonNonFinite         = "non_finite"
	ReasonPanic             = "panic"
	ReasonError             = "error"
)

// ModelSource looks up the model handle bound to a target
type ModelSource interface {
	Get(target models.Target) (*ml.Handle, bool)
}

// Estimate is a point estimate. Match is set for the match target only.
type Estimate struct {
	Value float64
	Match *heuristic.MatchProbabilities
}

// HeuristicFunc computes the fallback estimate for one request
type HeuristicFunc func() (Estimate, error)

// Dispatched is an estimate together with the path that produced it
type Dispatched struct {
	Estimate
	Source         models.Source
	FallbackReason string
	ModelErr       error
}

// Dispatcher prefers a trained model and falls back to the heuristic on any model failure
type Dispatcher struct {
	models ModelSource
}

// NewDispatcher creates a dispatcher over the given model source. A nil source
// means every target is served by the heuristic.
func NewDispatcher(source ModelSource) *Dispatcher {
	return &Dispatcher{models: source}
}

// Predict asks the target's model first. Model failures of any kind are
// recovered and reported through FallbackReason; only errors returned by
// heuristicFn reach the caller.
func (d *Dispatcher) Predict(ctx context.Context, target models.Target, set features.Set, heuristicFn HeuristicFunc) (Dispatched, error) {
	est, err := d.fromModel(ctx, target, set)
	if err == nil {
		return Dispatched{Estimate: est, Source: models.SourceModel}, nil
	}

	fallback, herr := heuristicFn()
	if herr != nil {
		return Dispatched{}, herr
	}
	return Dispatched{
		Estimate:       fallback,
		Source:         models.SourceHeuristic,
		FallbackReason: fallbackReason(err),
		ModelErr:       err,
	}, nil
}

func (d *Dispatcher) fromModel(ctx context.Context, target models.Target, set features.Set) (est Estimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			est = Estimate{}
			err = &modelPanic{value: r}
		}
	}()

	if d.models == nil {
		return Estimate{}, ml.ErrModelUnavailable
	}
	handle, ok := d.models.Get(target)
	if !ok || handle == nil || handle.Model == nil {
		return Estimate{}, ml.ErrModelUnavailable
	}

	row, err := handle.Row(set)
	if err != nil {
		return Estimate{}, err
	}

	switch target {
	case models.TargetMatch:
		return matchFromModel(ctx, handle, row)
	case models.TargetChampion:
		return championFromModel(ctx, handle, row)
	case models.TargetPoints:
		return scalarFromModel(ctx, handle, row, 0)
	default:
		return scalarFromModel(ctx, handle, row, 1)
	}
}

func scalarFromModel(ctx context.Context, handle *ml.Handle, row []float64, places int32) (Estimate, error) {
	v, err := handle.Model.Predict(ctx, row)
	if err != nil {
		return Estimate{}, err
	}
	if !finite(v) {
		return Estimate{}, ml.ErrNonFinitePrediction
	}
	return Estimate{Value: features.Round(v, places)}, nil
}

// championFromModel uses the positive class probability when the model has
// one and otherwise reads Predict as a percentage.
func championFromModel(ctx context.Context, handle *ml.Handle, row []float64) (Estimate, error) {
	proba, err := ml.PredictProba(ctx, handle.Model, row)
	if errors.Is(err, ml.ErrCapabilityMissing) {
		return scalarFromModel(ctx, handle, row, 1)
	}
	if err != nil {
		return Estimate{}, err
	}

	idx := positiveClass(handle.Spec, len(proba))
	if idx < 0 {
		return Estimate{}, fmt.Errorf("%w: no positive class among %d probabilities", ml.ErrShapeMismatch, len(proba))
	}
	p := proba[idx]
	if !finite(p) {
		return Estimate{}, ml.ErrNonFinitePrediction
	}
	return Estimate{Value: features.Round(p*100, 1)}, nil
}

func positiveClass(spec ml.FeatureSpec, n int) int {
	for _, label := range []string{"1", "true", "True", "champion"} {
		if i := spec.ClassIndex(label); i >= 0 && i < n {
			return i
		}
	}
	if len(spec.Classes) == 0 && n == 2 {
		return 1
	}
	return -1
}

// matchFromModel maps class probabilities onto home/draw/away percentages
// summing to 100.
func matchFromModel(ctx context.Context, handle *ml.Handle, row []float64) (Estimate, error) {
	proba, err := ml.PredictProba(ctx, handle.Model, row)
	if err != nil {
		return Estimate{}, err
	}
	if len(handle.Spec.Classes) != len(proba) {
		return Estimate{}, fmt.Errorf("%w: %d probabilities for %d class labels",
			ml.ErrShapeMismatch, len(proba), len(handle.Spec.Classes))
	}

	byOutcome := make(map[models.Outcome]float64, 3)
	var total float64
	for i, label := range handle.Spec.Classes {
		outcome, err := models.ParseOutcome(label)
		if err != nil {
			return Estimate{}, fmt.Errorf("%w: %v", ml.ErrShapeMismatch, err)
		}
		p := proba[i]
		if !finite(p) || p < 0 {
			return Estimate{}, ml.ErrNonFinitePrediction
		}
		byOutcome[outcome] += p
		total += p
	}
	if len(byOutcome) != 3 {
		return Estimate{}, fmt.Errorf("%w: class labels do not cover home, draw and away", ml.ErrShapeMismatch)
	}
	if total <= 0 {
		return Estimate{}, ml.ErrNonFinitePrediction
	}

	probs := splitPercent(
		byOutcome[models.OutcomeHome]/total*100,
		byOutcome[models.OutcomeDraw]/total*100,
		byOutcome[models.OutcomeAway]/total*100,
	)
	probs.Outcome = heuristic.PickOutcome(probs.Home, probs.Draw, probs.Away)
	return Estimate{Value: probs.Max(), Match: &probs}, nil
}

// splitPercent rounds each share to one decimal and lets the largest share
// absorb the rounding slack, so the triple sums to 100 with no negative part.
func splitPercent(home, draw, away float64) heuristic.MatchProbabilities {
	raw := [3]float64{home, draw, away}
	var rounded [3]float64
	largest := 0
	for i, v := range raw {
		rounded[i] = features.Round(v, 1)
		if v > raw[largest] {
			largest = i
		}
	}

	rest := 0.0
	for i, v := range rounded {
		if i != largest {
			rest += v
		}
	}
	rounded[largest] = features.Round(100-rest, 1)

	return heuristic.MatchProbabilities{Home: rounded[0], Draw: rounded[1], Away: rounded[2]}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// modelPanic carries a value recovered from a panicking model
type modelPanic struct {
	value interface{}
}

func (p *modelPanic) Error() string {
	return fmt.Sprintf("model panicked: %v", p.value)
}

func fallbackReason(err error) string {
	var panicked *modelPanic
	switch {
	case errors.As(err, &panicked):
		return ReasonPanic
	case errors.Is(err, ml.ErrModelUnavailable):
		return ReasonUnavailable
	case errors.Is(err, ml.ErrShapeMismatch):
		return ReasonShapeMismatch
	case errors.Is(err, ml.ErrCapabilityMissing):
		return ReasonCapabilityMissing
	case errors.Is(err, ml.ErrNonFinitePrediction):
		return ReasonNonFinite
	default:
		return ReasonError
	}
}
