package service

import (
	"math"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/models"
)

// Band and confidence constants applied uniformly to every target
const (
	RangeLowFactor  = 0.8
	RangeHighFactor = 1.2
	ConfidenceBase  = 70
	ConfidenceSlope = 0.5
	ConfidenceMax   = 95
)

// Rung is one step of a category ladder
type Rung struct {
	Min   float64
	Label string
}

// Ladder maps a value to a label. Rungs are checked in order and the first
// with Min <= value wins; Otherwise applies below every rung.
type Ladder struct {
	Rungs     []Rung
	Otherwise string
}

// Category returns the label for v
func (l Ladder) Category(v float64) string {
	for _, r := range l.Rungs {
		if v >= r.Min {
			return r.Label
		}
	}
	return l.Otherwise
}

// DefaultLadders returns the category ladders for the scalar targets
func DefaultLadders() map[models.Target]Ladder {
	return map[models.Target]Ladder{
		models.TargetGoals: {
			Rungs: []Rung{
				{Min: 20, Label: "Elite Scorer"},
				{Min: 10, Label: "Consistent Scorer"},
				{Min: 5, Label: "Contributing Player"},
			},
			Otherwise: "Limited Scoring",
		},
		models.TargetAssists: {
			Rungs: []Rung{
				{Min: 15, Label: "Elite Playmaker"},
				{Min: 8, Label: "Creative Force"},
				{Min: 4, Label: "Regular Contributor"},
			},
			Otherwise: "Limited Creativity",
		},
		models.TargetChampion: {
			Rungs: []Rung{
				{Min: 80, Label: "Overwhelming Favourite"},
				{Min: 60, Label: "Strong Contender"},
				{Min: 40, Label: "Outside Chance"},
			},
			Otherwise: "Long Shot",
		},
		models.TargetPoints: {
			Rungs: []Rung{
				{Min: 85, Label: "Title Contender"},
				{Min: 70, Label: "European Qualification"},
				{Min: 50, Label: "Mid-Table"},
				{Min: 40, Label: "Lower Half"},
			},
			Otherwise: "Relegation Battle",
		},
	}
}

// OutcomeLabels names match outcomes for display
var OutcomeLabels = map[models.Outcome]string{
	models.OutcomeHome: "Home Win",
	models.OutcomeDraw: "Draw",
	models.OutcomeAway: "Away Win",
}

// Packager turns a dispatched estimate into a PredictionResult
type Packager struct {
	ladders map[models.Target]Ladder
}

// NewPackager creates a packager. Nil ladders select DefaultLadders.
func NewPackager(ladders map[models.Target]Ladder) *Packager {
	if ladders == nil {
		ladders = DefaultLadders()
	}
	return &Packager{ladders: ladders}
}

// Package builds the display record for one prediction
func (p *Packager) Package(target models.Target, d Dispatched) *models.PredictionResult {
	v := d.Value
	result := &models.PredictionResult{
		Target:     target,
		Value:      v,
		RangeMin:   features.Round(v*RangeLowFactor, 1),
		RangeMax:   features.Round(v*RangeHighFactor, 1),
		Confidence: Confidence(v),
		Source:     d.Source,
	}

	if d.Match != nil {
		result.Outcome = d.Match.Outcome
		result.Probabilities = d.Match.Map()
		result.Category = OutcomeLabels[d.Match.Outcome]
		return result
	}

	result.Category = p.ladders[target].Category(v)
	return result
}

// Confidence maps a point estimate to min(95, trunc(70 + v*0.5)), floored at 0
func Confidence(v float64) int {
	c := math.Trunc(ConfidenceBase + v*ConfidenceSlope)
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > ConfidenceMax:
		return ConfidenceMax
	default:
		return int(c)
	}
}
