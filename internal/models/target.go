package models

import (
	"fmt"
	"strings"
)

// Target identifies what is being predicted
type Target string

// Prediction targets
const (
	TargetGoals    Target = "goals"
	TargetAssists  Target = "assists"
	TargetChampion Target = "champion"
	TargetMatch    Target = "match"
	TargetPoints   Target = "points"
)

// AllTargets lists every supported target in display order
var AllTargets = []Target{TargetGoals, TargetAssists, TargetChampion, TargetMatch, TargetPoints}

// ParseTarget converts a case-insensitive name into a Target
func ParseTarget(name string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllTargets {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}

// Source reports which path produced a prediction
type Source string

// Prediction sources
const (
	SourceModel     Source = "MODEL"
	SourceHeuristic Source = "HEURISTIC"
)

// Outcome is the predicted result of a single match
type Outcome string

// Match outcomes
const (
	OutcomeHome Outcome = "HOME"
	OutcomeDraw Outcome = "DRAW"
	OutcomeAway Outcome = "AWAY"
)

// ParseOutcome maps class labels used by trained models onto an Outcome.
// Accepts HOME/H/HOME_WIN/1, DRAW/D/X/0 and AWAY/A/AWAY_WIN/2.
func ParseOutcome(label string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "HOME", "H", "HOME_WIN", "1":
		return OutcomeHome, nil
	case "DRAW", "D", "X", "0":
		return OutcomeDraw, nil
	case "AWAY", "A", "AWAY_WIN", "2":
		return OutcomeAway, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, label)
	}
}
