package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlayerInput() RawStatInput {
	return RawStatInput{
		"goals":         12,
		"assists":       "5",
		"matches":       30,
		"starts":        28,
		"minutes":       2500,
		"90s_played":    27.8,
		"xG":            11.2,
		"npxG":          9.6,
		"xAG":           4.1,
		"age":           27,
		"position":      "fw",
		"prog_carries":  40,
		"prog_passes":   55,
		"prog_receives": 160,
	}
}

// TestDecodeRawStatsSuccess tests weak typing and field mapping
func TestDecodeRawStatsSuccess(t *testing.T) {
	var stats PlayerStats
	err := DecodeRawStats(validPlayerInput(), &stats)
	require.NoError(t, err)

	assert.Equal(t, 12.0, stats.Goals)
	assert.Equal(t, 5.0, stats.Assists)
	assert.Equal(t, 27.8, stats.Nineties)
	assert.Equal(t, 11.2, stats.XG)
	assert.Equal(t, "fw", stats.Position)
	assert.Equal(t, 255.0, stats.TotalProgressive())
}

// TestDecodeRawStatsMissingKeys tests that every declared stat is required
func TestDecodeRawStatsMissingKeys(t *testing.T) {
	raw := validPlayerInput()
	delete(raw, "xAG")
	delete(raw, "age")

	var stats PlayerStats
	err := DecodeRawStats(raw, &stats)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingStat))
	assert.Contains(t, err.Error(), "age, xAG")

	err = DecodeRawStats(nil, &GoalStats{})
	assert.True(t, errors.Is(err, ErrMissingStat))
}

// TestDecodeRawStatsNegativeCounts tests rejection of negative counts
func TestDecodeRawStatsNegativeCounts(t *testing.T) {
	raw := validPlayerInput()
	raw["minutes"] = -90

	var stats PlayerStats
	err := DecodeRawStats(raw, &stats)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeCount))
	assert.Contains(t, err.Error(), "Minutes")
}

// TestDecodeRawStatsInvalidInput tests cross-field and categorical checks
func TestDecodeRawStatsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(RawStatInput)
	}{
		{name: "starts exceed matches", mutate: func(r RawStatInput) { r["starts"] = 31 }},
		{name: "unknown position", mutate: func(r RawStatInput) { r["position"] = "QB" }},
		{name: "non numeric", mutate: func(r RawStatInput) { r["goals"] = "lots" }},
		{name: "infinite count", mutate: func(r RawStatInput) { r["goals"] = "Inf" }},
		{name: "nan expected goals", mutate: func(r RawStatInput) { r["xG"] = "NaN" }},
		{name: "negative infinity", mutate: func(r RawStatInput) { r["minutes"] = "-Inf" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validPlayerInput()
			tt.mutate(raw)

			var stats PlayerStats
			err := DecodeRawStats(raw, &stats)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.False(t, errors.Is(err, ErrNegativeCount))
		})
	}
}

// TestDecodeSignedFieldsMustBeFinite tests fields without a lower bound
func TestDecodeSignedFieldsMustBeFinite(t *testing.T) {
	var goals GoalStats
	err := DecodeRawStats(RawStatInput{"goals_scored": 30, "goals_conceded": 55, "goal_difference": "NaN"}, &goals)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var season SeasonStats
	err = DecodeRawStats(RawStatInput{"wins": 20, "draws": 10, "losses": 8, "points_per_game": 1.84, "goal_difference": "-Inf"}, &season)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

// TestDecodeGoalDifferenceMayBeNegative tests signed fields
func TestDecodeGoalDifferenceMayBeNegative(t *testing.T) {
	var goals GoalStats
	err := DecodeRawStats(RawStatInput{"goals_scored": 30, "goals_conceded": 55, "goal_difference": -25}, &goals)
	require.NoError(t, err)
	assert.Equal(t, -25.0, goals.GoalDifference)
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget(" Goals ")
	require.NoError(t, err)
	assert.Equal(t, TargetGoals, target)

	_, err = ParseTarget("corners")
	assert.True(t, errors.Is(err, ErrUnknownTarget))
}

func TestParseOutcome(t *testing.T) {
	for label, expected := range map[string]Outcome{
		"H": OutcomeHome, "home_win": OutcomeHome,
		"x": OutcomeDraw, "Draw": OutcomeDraw,
		"A": OutcomeAway, "2": OutcomeAway,
	} {
		got, err := ParseOutcome(label)
		require.NoError(t, err, label)
		assert.Equal(t, expected, got, label)
	}

	_, err := ParseOutcome("maybe")
	assert.True(t, errors.Is(err, ErrUnknownOutcome))
}
