package models

import "strings"

// Positions accepted in PlayerStats.Position, compared case-insensitively
var Positions = map[string]bool{
	"GK": true, "DF": true, "CB": true, "LB": true, "RB": true, "WB": true,
	"MF": true, "DM": true, "CM": true, "AM": true, "LM": true, "RM": true,
	"FW": true, "AT": true, "ST": true, "CF": true, "LW": true, "RW": true,
}

// NormalizePosition upper-cases and trims a position token
func NormalizePosition(position string) string {
	return strings.ToUpper(strings.TrimSpace(position))
}

// PlayerStats is the raw input for goal and assist projections
type PlayerStats struct {
	Goals        float64 `mapstructure:"goals" json:"goals" validate:"finite,gte=0"`
	Assists      float64 `mapstructure:"assists" json:"assists" validate:"finite,gte=0"`
	Matches      float64 `mapstructure:"matches" json:"matches" validate:"finite,gte=0"`
	Starts       float64 `mapstructure:"starts" json:"starts" validate:"finite,gte=0,ltefield=Matches"`
	Minutes      float64 `mapstructure:"minutes" json:"minutes" validate:"finite,gte=0"`
	Nineties     float64 `mapstructure:"90s_played" json:"90s_played" validate:"finite,gte=0"`
	XG           float64 `mapstructure:"xG" json:"xG" validate:"finite,gte=0"`
	NpxG         float64 `mapstructure:"npxG" json:"npxG" validate:"finite,gte=0"`
	XAG          float64 `mapstructure:"xAG" json:"xAG" validate:"finite,gte=0"`
	Age          float64 `mapstructure:"age" json:"age" validate:"finite,gte=0"`
	Position     string  `mapstructure:"position" json:"position" validate:"position"`
	ProgCarries  float64 `mapstructure:"prog_carries" json:"prog_carries" validate:"finite,gte=0"`
	ProgPasses   float64 `mapstructure:"prog_passes" json:"prog_passes" validate:"finite,gte=0"`
	ProgReceives float64 `mapstructure:"prog_receives" json:"prog_receives" validate:"finite,gte=0"`
}

// TotalProgressive sums progressive carries, passes and receives
func (p PlayerStats) TotalProgressive() float64 {
	return p.ProgCarries + p.ProgPasses + p.ProgReceives
}

// SeasonStats is the raw input for the league champion probability
type SeasonStats struct {
	Wins           float64 `mapstructure:"wins" json:"wins" validate:"finite,gte=0"`
	Draws          float64 `mapstructure:"draws" json:"draws" validate:"finite,gte=0"`
	Losses         float64 `mapstructure:"losses" json:"losses" validate:"finite,gte=0"`
	PointsPerGame  float64 `mapstructure:"points_per_game" json:"points_per_game" validate:"finite,gte=0,lte=3"`
	GoalDifference float64 `mapstructure:"goal_difference" json:"goal_difference" validate:"finite"`
}

// Matches returns the number of matches played
func (s SeasonStats) Matches() float64 {
	return s.Wins + s.Draws + s.Losses
}

// TeamForm describes one side of a fixture
type TeamForm struct {
	GoalsScored    float64
	GoalsConceded  float64
	Form           string
	WinStreak      float64
	Points         float64
	GoalDifference float64
}

// MatchupStats is the raw input for the match winner prediction
type MatchupStats struct {
	HomeGoalsScored    float64 `mapstructure:"home_goals_scored" json:"home_goals_scored" validate:"finite,gte=0"`
	HomeGoalsConceded  float64 `mapstructure:"home_goals_conceded" json:"home_goals_conceded" validate:"finite,gte=0"`
	HomeForm           string  `mapstructure:"home_form" json:"home_form"`
	HomeWinStreak      float64 `mapstructure:"home_win_streak" json:"home_win_streak" validate:"finite,gte=0"`
	HomePoints         float64 `mapstructure:"home_points" json:"home_points" validate:"finite,gte=0"`
	HomeGoalDifference float64 `mapstructure:"home_goal_difference" json:"home_goal_difference" validate:"finite"`
	AwayGoalsScored    float64 `mapstructure:"away_goals_scored" json:"away_goals_scored" validate:"finite,gte=0"`
	AwayGoalsConceded  float64 `mapstructure:"away_goals_conceded" json:"away_goals_conceded" validate:"finite,gte=0"`
	AwayForm           string  `mapstructure:"away_form" json:"away_form"`
	AwayWinStreak      float64 `mapstructure:"away_win_streak" json:"away_win_streak" validate:"finite,gte=0"`
	AwayPoints         float64 `mapstructure:"away_points" json:"away_points" validate:"finite,gte=0"`
	AwayGoalDifference float64 `mapstructure:"away_goal_difference" json:"away_goal_difference" validate:"finite"`
}

// Home returns the home side
func (m MatchupStats) Home() TeamForm {
	return TeamForm{
		GoalsScored:    m.HomeGoalsScored,
		GoalsConceded:  m.HomeGoalsConceded,
		Form:           m.HomeForm,
		WinStreak:      m.HomeWinStreak,
		Points:         m.HomePoints,
		GoalDifference: m.HomeGoalDifference,
	}
}

// Away returns the away side
func (m MatchupStats) Away() TeamForm {
	return TeamForm{
		GoalsScored:    m.AwayGoalsScored,
		GoalsConceded:  m.AwayGoalsConceded,
		Form:           m.AwayForm,
		WinStreak:      m.AwayWinStreak,
		Points:         m.AwayPoints,
		GoalDifference: m.AwayGoalDifference,
	}
}

// GoalStats is the raw input for the season total points projection
type GoalStats struct {
	GoalsScored    float64 `mapstructure:"goals_scored" json:"goals_scored" validate:"finite,gte=0"`
	GoalsConceded  float64 `mapstructure:"goals_conceded" json:"goals_conceded" validate:"finite,gte=0"`
	GoalDifference float64 `mapstructure:"goal_difference" json:"goal_difference" validate:"finite"`
}
