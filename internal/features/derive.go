package features

import (
	"sort"

	"github.com/yourusername/scoresight/internal/models"
)

// Set holds raw and derived features by name. It is the source of model feature rows.
type Set map[string]float64

// Get returns the named feature and whether it exists
func (s Set) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the feature names in sorted order
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DerivePlayer builds the feature set for goal and assist projections
func DerivePlayer(p models.PlayerStats) Set {
	set := Set{
		"goals":             p.Goals,
		"assists":           p.Assists,
		"matches":           p.Matches,
		"starts":            p.Starts,
		"minutes":           p.Minutes,
		"90s_played":        p.Nineties,
		"xG":                p.XG,
		"npxG":              p.NpxG,
		"xAG":               p.XAG,
		"age":               p.Age,
		"prog_carries":      p.ProgCarries,
		"prog_passes":       p.ProgPasses,
		"prog_receives":     p.ProgReceives,
		"goals_per_90":      Per90(p.Goals, p.Nineties, p.Minutes, p.Matches),
		"assists_per_90":    Per90(p.Assists, p.Nineties, p.Minutes, p.Matches),
		"xG_per_90":         Per90(p.XG, p.Nineties, p.Minutes, p.Matches),
		"npxG_per_90":       Per90(p.NpxG, p.Nineties, p.Minutes, p.Matches),
		"xAG_per_90":        Per90(p.XAG, p.Nineties, p.Minutes, p.Matches),
		"start_ratio":       StartRatio(p.Starts, p.Matches),
		"total_progressive": p.TotalProgressive(),
		"age_factor":        AgeFactor(p.Age),
	}
	for position := range models.Positions {
		set["position_"+position] = 0
	}
	set["position_"+models.NormalizePosition(p.Position)] = 1
	return set
}

// DeriveSeason builds the feature set for the champion probability
func DeriveSeason(s models.SeasonStats) Set {
	matches := s.Matches()
	return Set{
		"wins":            s.Wins,
		"draws":           s.Draws,
		"losses":          s.Losses,
		"matches":         matches,
		"points_per_game": s.PointsPerGame,
		"goal_difference": s.GoalDifference,
		"win_rate":        Rate(s.Wins, matches),
		"draw_rate":       Rate(s.Draws, matches),
		"loss_rate":       Rate(s.Losses, matches),
		"points":          s.Wins*winPoints + s.Draws*drawPoints,
	}
}

// DeriveMatchup builds the feature set for the match winner prediction.
// It fails with ErrInvalidFormToken when either form string is malformed.
func DeriveMatchup(m models.MatchupStats) (Set, error) {
	homeForm, err := FormPoints(m.HomeForm)
	if err != nil {
		return nil, err
	}
	awayForm, err := FormPoints(m.AwayForm)
	if err != nil {
		return nil, err
	}

	return Set{
		"home_goals_scored":    m.HomeGoalsScored,
		"home_goals_conceded":  m.HomeGoalsConceded,
		"home_win_streak":      m.HomeWinStreak,
		"home_points":          m.HomePoints,
		"home_goal_difference": m.HomeGoalDifference,
		"home_form_points":     float64(homeForm),
		"home_goal_ratio":      SafeDiv(m.HomeGoalsScored, m.HomeGoalsConceded, MinDenominator),
		"away_goals_scored":    m.AwayGoalsScored,
		"away_goals_conceded":  m.AwayGoalsConceded,
		"away_win_streak":      m.AwayWinStreak,
		"away_points":          m.AwayPoints,
		"away_goal_difference": m.AwayGoalDifference,
		"away_form_points":     float64(awayForm),
		"away_goal_ratio":      SafeDiv(m.AwayGoalsScored, m.AwayGoalsConceded, MinDenominator),
		"points_gap":           m.HomePoints - m.AwayPoints,
		"goal_difference_gap":  m.HomeGoalDifference - m.AwayGoalDifference,
		"form_points_gap":      float64(homeForm - awayForm),
	}, nil
}

// DeriveGoals builds the feature set for the total points projection
func DeriveGoals(g models.GoalStats) Set {
	return Set{
		"goals_scored":    g.GoalsScored,
		"goals_conceded":  g.GoalsConceded,
		"goal_difference": g.GoalDifference,
		"goal_ratio":      SafeDiv(g.GoalsScored, g.GoalsConceded, MinDenominator),
	}
}
