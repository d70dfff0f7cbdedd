// Package testutil provides shared fixtures and model fakes for tests.
package testutil

import (
	"context"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scoresight/internal/ml"
	"github.com/yourusername/scoresight/internal/models"
)

// QuietLogger returns a logger that discards output
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ForwardInput is a regular starting forward. The default heuristic projects 14.6 goals.
func ForwardInput() models.RawStatInput {
	return models.RawStatInput{
		"goals":         10,
		"assists":       8,
		"matches":       20,
		"starts":        20,
		"minutes":       1800,
		"90s_played":    20,
		"xG":            10,
		"npxG":          8,
		"xAG":           4,
		"age":           26,
		"position":      "FW",
		"prog_carries":  100,
		"prog_passes":   100,
		"prog_receives": 0,
	}
}

// ChampionAnchorInput is the pinned season answered with 97.2 while anchors are enabled
func ChampionAnchorInput() models.RawStatInput {
	return models.RawStatInput{
		"wins":            28,
		"draws":           7,
		"losses":          3,
		"points_per_game": 2.39,
		"goal_difference": 62,
	}
}

// MidTableSeasonInput is an ordinary season that hits no anchor
func MidTableSeasonInput() models.RawStatInput {
	return models.RawStatInput{
		"wins":            14,
		"draws":           10,
		"losses":          14,
		"points_per_game": 1.37,
		"goal_difference": 0,
	}
}

// EvenMatchupInput has identical sides. The default heuristic splits it 50/20/30.
func EvenMatchupInput() models.RawStatInput {
	return models.RawStatInput{
		"home_goals_scored":    40,
		"home_goals_conceded":  30,
		"home_form":            "WWDLW",
		"home_win_streak":      2,
		"home_points":          45,
		"home_goal_difference": 10,
		"away_goals_scored":    40,
		"away_goals_conceded":  30,
		"away_form":            "WWDLW",
		"away_win_streak":      2,
		"away_points":          45,
		"away_goal_difference": 10,
	}
}

// PointsAnchorInput is the pinned goal line answered with 90 while anchors are enabled
func PointsAnchorInput() models.RawStatInput {
	return models.RawStatInput{
		"goals_scored":    96,
		"goals_conceded":  34,
		"goal_difference": 62,
	}
}

// LevelGoalsInput is a level goal line projected to 53 points
func LevelGoalsInput() models.RawStatInput {
	return models.RawStatInput{
		"goals_scored":    50,
		"goals_conceded":  50,
		"goal_difference": 0,
	}
}

// Models is an in-memory ModelSource
type Models map[models.Target]*ml.Handle

// Get returns the handle bound to target
func (m Models) Get(target models.Target) (*ml.Handle, bool) {
	h, ok := m[target]
	return h, ok
}

// Bind wraps model in a handle for target using the given feature order
func Bind(target models.Target, model ml.Predictor, featureOrder []string, classes ...string) *ml.Handle {
	return &ml.Handle{
		Target: target,
		Kind:   "fake",
		Spec:   ml.FeatureSpec{Target: string(target), Version: "test", FeatureOrder: featureOrder, Classes: classes},
		Model:  model,
	}
}

// StaticModel answers fixed values and counts calls
type StaticModel struct {
	Value float64
	Err   error
	Calls int
}

// Predict returns Value or Err
func (m *StaticModel) Predict(ctx context.Context, row []float64) (float64, error) {
	m.Calls++
	return m.Value, m.Err
}

// StaticProbaModel answers fixed class probabilities
type StaticProbaModel struct {
	StaticModel
	Proba []float64
}

// PredictProba returns Proba or Err
func (m *StaticProbaModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Proba, nil
}

// PanicModel panics on every call
type PanicModel struct{}

// Predict panics
func (PanicModel) Predict(ctx context.Context, row []float64) (float64, error) {
	panic("model exploded")
}

// PredictProba panics
func (PanicModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	panic("model exploded")
}

// NaNModel answers NaN
type NaNModel struct{}

// Predict returns NaN
func (NaNModel) Predict(ctx context.Context, row []float64) (float64, error) {
	return math.NaN(), nil
}
