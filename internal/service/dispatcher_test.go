package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/heuristic"
	"github.com/yourusername/scoresight/internal/ml"
	"github.com/yourusername/scoresight/internal/models"
	"github.com/yourusername/scoresight/internal/testutil"
)

// MockModelSource mocks the model lookup
type MockModelSource struct {
	mock.Mock
}

func (m *MockModelSource) Get(target models.Target) (*ml.Handle, bool) {
	args := m.Called(target)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*ml.Handle), args.Bool(1)
}

func fixedHeuristic(v float64) HeuristicFunc {
	return func() (Estimate, error) {
		return Estimate{Value: v}, nil
	}
}

var playerSet = features.Set{"goals": 10, "xG": 9.5}

// TestDispatcherFallsBack tests that every model failure is absorbed by the heuristic
func TestDispatcherFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		source ModelSource
		reason string
	}{
		{
			name:   "nil source",
			source: nil,
			reason: ReasonUnavailable,
		},
		{
			name:   "no model for target",
			source: testutil.Models{},
			reason: ReasonUnavailable,
		},
		{
			name: "model error",
			source: testutil.Models{
				models.TargetGoals: testutil.Bind(models.TargetGoals,
					&testutil.StaticModel{Err: ml.ErrConnectionFailed}, []string{"goals"}),
			},
			reason: ReasonError,
		},
		{
			name: "model panics",
			source: testutil.Models{
				models.TargetGoals: testutil.Bind(models.TargetGoals, testutil.PanicModel{}, []string{"goals"}),
			},
			reason: ReasonPanic,
		},
		{
			name: "non-finite output",
			source: testutil.Models{
				models.TargetGoals: testutil.Bind(models.TargetGoals, testutil.NaNModel{}, []string{"goals"}),
			},
			reason: ReasonNonFinite,
		},
		{
			name: "missing feature",
			source: testutil.Models{
				models.TargetGoals: testutil.Bind(models.TargetGoals,
					&testutil.StaticModel{Value: 3}, []string{"goals", "shots_on_target"}),
			},
			reason: ReasonShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.source)

			got, err := d.Predict(context.Background(), models.TargetGoals, playerSet, fixedHeuristic(14.6))
			require.NoError(t, err)
			assert.Equal(t, models.SourceHeuristic, got.Source)
			assert.Equal(t, 14.6, got.Value)
			assert.Equal(t, tt.reason, got.FallbackReason)
			assert.Error(t, got.ModelErr)
		})
	}
}

// TestDispatcherNilHandle tests that a source returning a nil handle counts as unavailable
func TestDispatcherNilHandle(t *testing.T) {
	source := new(MockModelSource)
	source.On("Get", models.TargetAssists).Return(nil, true)

	got, err := NewDispatcher(source).Predict(context.Background(), models.TargetAssists, playerSet, fixedHeuristic(6))
	require.NoError(t, err)
	assert.Equal(t, models.SourceHeuristic, got.Source)
	assert.Equal(t, ReasonUnavailable, got.FallbackReason)
	source.AssertExpectations(t)
}

// TestDispatcherUsesModel tests rounding of model values per target
func TestDispatcherUsesModel(t *testing.T) {
	tests := []struct {
		name     string
		target   models.Target
		value    float64
		expected float64
	}{
		{name: "goals one decimal", target: models.TargetGoals, value: 12.345, expected: 12.3},
		{name: "assists one decimal", target: models.TargetAssists, value: 7.25, expected: 7.3},
		{name: "points whole", target: models.TargetPoints, value: 71.5, expected: 72},
		{name: "champion percentage", target: models.TargetChampion, value: 41.26, expected: 41.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &testutil.StaticModel{Value: tt.value}
			source := new(MockModelSource)
			source.On("Get", tt.target).Return(testutil.Bind(tt.target, model, []string{"goals"}), true)

			heuristicCalled := false
			got, err := NewDispatcher(source).Predict(context.Background(), tt.target, playerSet, func() (Estimate, error) {
				heuristicCalled = true
				return Estimate{}, nil
			})
			require.NoError(t, err)
			assert.Equal(t, models.SourceModel, got.Source)
			assert.Equal(t, tt.expected, got.Value)
			assert.Empty(t, got.FallbackReason)
			assert.False(t, heuristicCalled)
			assert.Equal(t, 1, model.Calls)
			source.AssertExpectations(t)
		})
	}
}

// TestDispatcherChampionProbability tests the positive class lookup
func TestDispatcherChampionProbability(t *testing.T) {
	tests := []struct {
		name     string
		classes  []string
		proba    []float64
		expected float64
		reason   string
	}{
		{name: "labelled positive class", classes: []string{"0", "1"}, proba: []float64{0.35, 0.65}, expected: 65},
		{name: "positive class first", classes: []string{"champion", "other"}, proba: []float64{0.123, 0.877}, expected: 12.3},
		{name: "unlabelled binary", proba: []float64{0.2, 0.8}, expected: 80},
		{name: "no positive class", classes: []string{"a", "b"}, proba: []float64{0.5, 0.5}, reason: ReasonShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &testutil.StaticProbaModel{Proba: tt.proba}
			source := testutil.Models{
				models.TargetChampion: testutil.Bind(models.TargetChampion, model, []string{"goals"}, tt.classes...),
			}

			got, err := NewDispatcher(source).Predict(context.Background(), models.TargetChampion, playerSet, fixedHeuristic(50))
			require.NoError(t, err)
			if tt.reason != "" {
				assert.Equal(t, models.SourceHeuristic, got.Source)
				assert.Equal(t, tt.reason, got.FallbackReason)
				return
			}
			assert.Equal(t, models.SourceModel, got.Source)
			assert.InDelta(t, tt.expected, got.Value, 1e-9)
		})
	}
}

// TestDispatcherMatchProbabilities tests mapping class probabilities onto outcomes
func TestDispatcherMatchProbabilities(t *testing.T) {
	heuristicMatch := func() (Estimate, error) {
		probs := heuristic.MatchProbabilities{Home: 50, Draw: 20, Away: 30, Outcome: models.OutcomeHome}
		return Estimate{Value: probs.Max(), Match: &probs}, nil
	}

	t.Run("reordered labels", func(t *testing.T) {
		model := &testutil.StaticProbaModel{Proba: []float64{0.2, 0.25, 0.55}}
		source := testutil.Models{
			models.TargetMatch: testutil.Bind(models.TargetMatch, model, []string{"goals"}, "A", "D", "H"),
		}

		got, err := NewDispatcher(source).Predict(context.Background(), models.TargetMatch, playerSet, heuristicMatch)
		require.NoError(t, err)
		require.NotNil(t, got.Match)
		assert.Equal(t, models.SourceModel, got.Source)
		assert.Equal(t, 55.0, got.Match.Home)
		assert.Equal(t, 25.0, got.Match.Draw)
		assert.Equal(t, 20.0, got.Match.Away)
		assert.Equal(t, models.OutcomeHome, got.Match.Outcome)
		assert.Equal(t, 55.0, got.Value)
	})

	t.Run("unnormalised probabilities", func(t *testing.T) {
		model := &testutil.StaticProbaModel{Proba: []float64{1, 1, 2}}
		source := testutil.Models{
			models.TargetMatch: testutil.Bind(models.TargetMatch, model, []string{"goals"}, "HOME", "DRAW", "AWAY"),
		}

		got, err := NewDispatcher(source).Predict(context.Background(), models.TargetMatch, playerSet, heuristicMatch)
		require.NoError(t, err)
		require.NotNil(t, got.Match)
		assert.Equal(t, 25.0, got.Match.Home)
		assert.Equal(t, 50.0, got.Match.Away)
		assert.InDelta(t, 100, got.Match.Home+got.Match.Draw+got.Match.Away, 1e-9)
		assert.Equal(t, models.OutcomeAway, got.Match.Outcome)
	})

	t.Run("tie resolves to draw", func(t *testing.T) {
		model := &testutil.StaticProbaModel{Proba: []float64{0.4, 0.2, 0.4}}
		source := testutil.Models{
			models.TargetMatch: testutil.Bind(models.TargetMatch, model, []string{"goals"}, "H", "D", "A"),
		}

		got, err := NewDispatcher(source).Predict(context.Background(), models.TargetMatch, playerSet, heuristicMatch)
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeDraw, got.Match.Outcome)
	})

	t.Run("rounding slack never goes negative", func(t *testing.T) {
		model := &testutil.StaticProbaModel{Proba: []float64{0.5005, 0, 0.4995}}
		source := testutil.Models{
			models.TargetMatch: testutil.Bind(models.TargetMatch, model, []string{"goals"}, "H", "D", "A"),
		}

		got, err := NewDispatcher(source).Predict(context.Background(), models.TargetMatch, playerSet, heuristicMatch)
		require.NoError(t, err)
		require.NotNil(t, got.Match)
		assert.Equal(t, models.SourceModel, got.Source)
		assert.Equal(t, 0.0, got.Match.Draw)
		assert.Equal(t, 50.0, got.Match.Home)
		assert.Equal(t, 50.0, got.Match.Away)
		assert.Equal(t, models.OutcomeDraw, got.Match.Outcome)
	})

	failures := []struct {
		name    string
		model   ml.Predictor
		classes []string
		reason  string
	}{
		{name: "value only model", model: &testutil.StaticModel{Value: 1}, classes: []string{"H", "D", "A"}, reason: ReasonCapabilityMissing},
		{name: "missing labels", model: &testutil.StaticProbaModel{Proba: []float64{0.5, 0.2, 0.3}}, reason: ReasonShapeMismatch},
		{name: "unknown label", model: &testutil.StaticProbaModel{Proba: []float64{0.5, 0.2, 0.3}}, classes: []string{"H", "D", "Q"}, reason: ReasonShapeMismatch},
		{name: "duplicate outcome", model: &testutil.StaticProbaModel{Proba: []float64{0.5, 0.2, 0.3}}, classes: []string{"H", "D", "HOME"}, reason: ReasonShapeMismatch},
		{name: "all zero", model: &testutil.StaticProbaModel{Proba: []float64{0, 0, 0}}, classes: []string{"H", "D", "A"}, reason: ReasonNonFinite},
		{name: "panics", model: testutil.PanicModel{}, classes: []string{"H", "D", "A"}, reason: ReasonPanic},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			source := testutil.Models{
				models.TargetMatch: testutil.Bind(models.TargetMatch, tt.model, []string{"goals"}, tt.classes...),
			}

			got, err := NewDispatcher(source).Predict(context.Background(), models.TargetMatch, playerSet, heuristicMatch)
			require.NoError(t, err)
			assert.Equal(t, models.SourceHeuristic, got.Source)
			assert.Equal(t, tt.reason, got.FallbackReason)
			require.NotNil(t, got.Match)
			assert.Equal(t, models.OutcomeHome, got.Match.Outcome)
		})
	}
}

// TestSplitPercent tests that rounded triples stay non-negative and sum to 100
func TestSplitPercent(t *testing.T) {
	triples := [][3]float64{
		{50.05, 0, 49.95},
		{33.35, 33.35, 33.3},
		{0.04, 0.04, 99.92},
		{100, 0, 0},
		{45.55, 9.35, 45.1},
	}

	for _, tr := range triples {
		probs := splitPercent(tr[0], tr[1], tr[2])
		for _, v := range []float64{probs.Home, probs.Draw, probs.Away} {
			assert.GreaterOrEqual(t, v, 0.0, "triple %v", tr)
		}
		assert.InDelta(t, 100, probs.Home+probs.Draw+probs.Away, 1e-9, "triple %v", tr)
	}
}

// TestDispatcherHeuristicError tests that heuristic errors reach the caller
func TestDispatcherHeuristicError(t *testing.T) {
	boom := errors.New("bad form")

	_, err := NewDispatcher(nil).Predict(context.Background(), models.TargetMatch, playerSet, func() (Estimate, error) {
		return Estimate{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
