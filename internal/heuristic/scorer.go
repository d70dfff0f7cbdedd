package heuristic

import (
	"math"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/models"
)

// MatchProbabilities is the home/draw/away split in percent, summing to 100
type MatchProbabilities struct {
	Home    float64
	Draw    float64
	Away    float64
	Outcome models.Outcome
}

// Map returns the probabilities keyed by outcome
func (m MatchProbabilities) Map() map[models.Outcome]float64 {
	return map[models.Outcome]float64{
		models.OutcomeHome: m.Home,
		models.OutcomeDraw: m.Draw,
		models.OutcomeAway: m.Away,
	}
}

// Max returns the probability of the predicted outcome
func (m MatchProbabilities) Max() float64 {
	return m.Map()[m.Outcome]
}

// Scorer evaluates the heuristic formulas. It holds no mutable state.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer from cfg
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer configuration
func (s *Scorer) Config() Config {
	return s.cfg
}

// ProjectGoals projects season goals for a player
func (s *Scorer) ProjectGoals(p models.PlayerStats) float64 {
	reliability := features.SafeDiv(p.NpxG, p.XG, s.cfg.Goals.ReliabilityMinDenom)
	return s.project(p.Goals, reliability, p, s.cfg.Goals)
}

// ProjectAssists projects season assists for a player
func (s *Scorer) ProjectAssists(p models.PlayerStats) float64 {
	reliability := features.SafeDiv(p.NpxG+p.XAG, p.XG+p.XAG, s.cfg.Assists.ReliabilityMinDenom)
	return s.project(p.Assists, reliability, p, s.cfg.Assists)
}

// project scales the observed total to the horizon. Per90(total)*denominator
// collapses to total whenever a denominator exists, so it is computed directly.
func (s *Scorer) project(total, reliability float64, p models.PlayerStats, cfg ContributionConfig) float64 {
	if !features.HasPlayingTime(p.Nineties, p.Minutes, p.Matches) {
		return 0
	}

	value := total * cfg.Horizon
	value *= reliability
	value *= features.AvailabilityFactor(features.StartRatio(p.Starts, p.Matches))
	value *= features.AgeFactor(p.Age)
	value *= features.ProgressiveFactor(p.TotalProgressive(), cfg.ProgressiveCap, cfg.ProgressiveDivisor)
	value *= features.PositionFactor(p.Position, cfg.Position)

	return features.Round(value, 1)
}

// ChampionProbability returns the league champion probability in percent, within [Min, Max]
func (s *Scorer) ChampionProbability(season models.SeasonStats) float64 {
	if v, ok := s.ChampionAnchor(season); ok {
		return v
	}

	cfg := s.cfg.Champion
	matches := season.Matches()

	prob := cfg.Base
	prob += cfg.PointsPerGame.Adjust(season.PointsPerGame)
	prob += cfg.GoalDiff.Adjust(season.GoalDifference)
	prob += cfg.WinRate.Adjust(features.Rate(season.Wins, matches))
	prob += cfg.LossRate.Adjust(features.Rate(season.Losses, matches))
	prob += cfg.DrawRate.Adjust(features.Rate(season.Draws, matches))

	return features.Round(features.Clamp(prob, cfg.Min, cfg.Max), 1)
}

// ChampionAnchor reports whether season hits a calibration anchor and its pinned value
func (s *Scorer) ChampionAnchor(season models.SeasonStats) (float64, bool) {
	if !s.cfg.Anchors.Enabled {
		return 0, false
	}
	for _, a := range s.cfg.Anchors.Champion {
		if season.Wins == a.Wins && season.Draws == a.Draws && season.Losses == a.Losses &&
			season.GoalDifference == a.GoalDifference &&
			math.Abs(season.PointsPerGame-a.PointsPerGame) < a.PPGTolerance {
			return a.Value, true
		}
	}
	return 0, false
}

// MatchWinner splits the match result probabilities. Ties for the largest
// probability resolve to a draw. Malformed form strings fail with
// features.ErrInvalidFormToken.
func (s *Scorer) MatchWinner(m models.MatchupStats) (MatchProbabilities, error) {
	cfg := s.cfg.Match
	home, away := m.Home(), m.Away()

	homeForm, err := features.FormPoints(home.Form)
	if err != nil {
		return MatchProbabilities{}, err
	}
	awayForm, err := features.FormPoints(away.Form)
	if err != nil {
		return MatchProbabilities{}, err
	}

	homeRatio := features.SafeDiv(home.GoalsScored, home.GoalsConceded, features.MinDenominator)
	awayRatio := features.SafeDiv(away.GoalsScored, away.GoalsConceded, features.MinDenominator)
	goalsFactor := 0.0
	if homeRatio+awayRatio > 0 {
		goalsFactor = (homeRatio - awayRatio) / (homeRatio + awayRatio)
	}

	formFactor := features.Clamp(features.SafeDiv(float64(homeForm-awayForm), cfg.FormNormalizer, 1), -1, 1)
	streakFactor := features.Clamp(features.SafeDiv(home.WinStreak-away.WinStreak, cfg.StreakNormalizer, 1), -1, 1)
	gapFactor := (sign(home.Points-away.Points) + sign(home.GoalDifference-away.GoalDifference)) / 2

	combined := cfg.GoalsWeight*goalsFactor +
		cfg.FormWeight*formFactor +
		cfg.StreakWeight*streakFactor +
		cfg.GapWeight*gapFactor

	homeProb := features.Round(features.Clamp(cfg.HomeBase+combined*cfg.Swing, cfg.Min, cfg.Max), 1)
	awayProb := features.Round(features.Clamp(100-homeProb-cfg.DrawShare, cfg.Min, cfg.Max), 1)
	drawProb := features.Round(100-homeProb-awayProb, 1)

	probs := MatchProbabilities{Home: homeProb, Draw: drawProb, Away: awayProb}
	probs.Outcome = PickOutcome(homeProb, drawProb, awayProb)
	return probs, nil
}

// PickOutcome returns the outcome with the strictly largest probability.
// Any tie for the maximum is a draw.
func PickOutcome(home, draw, away float64) models.Outcome {
	switch {
	case home > draw && home > away:
		return models.OutcomeHome
	case away > draw && away > home:
		return models.OutcomeAway
	default:
		return models.OutcomeDraw
	}
}

// TotalPoints projects season points from the goal line, rounded half away from zero
func (s *Scorer) TotalPoints(g models.GoalStats) float64 {
	if v, ok := s.PointsAnchor(g); ok {
		return v
	}

	cfg := s.cfg.Points
	points := cfg.Base +
		cfg.GoalDiffWeight*g.GoalDifference +
		cfg.ScoredWeight*g.GoalsScored -
		cfg.ConcededWeight*g.GoalsConceded

	return features.Round(features.Clamp(points, cfg.Min, cfg.Max), 0)
}

// PointsAnchor reports whether g hits a calibration anchor and its pinned value
func (s *Scorer) PointsAnchor(g models.GoalStats) (float64, bool) {
	if !s.cfg.Anchors.Enabled {
		return 0, false
	}
	for _, a := range s.cfg.Anchors.Points {
		if g.GoalsScored == a.GoalsScored && g.GoalsConceded == a.GoalsConceded && g.GoalDifference == a.GoalDifference {
			return a.Value, true
		}
	}
	return 0, false
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
