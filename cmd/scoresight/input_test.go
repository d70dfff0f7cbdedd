package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scoresight/internal/models"
)

func TestParseStats(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []string
		expected models.RawStatInput
		wantErr  bool
	}{
		{
			name:     "numbers and tokens",
			pairs:    []string{"goals=10", "position = FW", "home_form=WWDLW"},
			expected: models.RawStatInput{"goals": "10", "position": "FW", "home_form": "WWDLW"},
		},
		{
			name:     "empty value",
			pairs:    []string{"away_form="},
			expected: models.RawStatInput{"away_form": ""},
		},
		{
			name:    "missing separator",
			pairs:   []string{"goals"},
			wantErr: true,
		},
		{
			name:    "missing key",
			pairs:   []string{"=3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStats(tt.pairs)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadInputMergesFileAndPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "season.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wins: 28\ndraws: 7\nlosses: 3\npoints_per_game: 2.39\ngoal_difference: 60\n"), 0o600))

	raw, err := readInput(path, []string{"goal_difference=62"})
	require.NoError(t, err)

	var season models.SeasonStats
	require.NoError(t, models.DecodeRawStats(raw, &season))
	assert.Equal(t, 28.0, season.Wins)
	assert.Equal(t, 2.39, season.PointsPerGame)
	assert.Equal(t, 62.0, season.GoalDifference)
}

func TestReadInputMissingFile(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
