// Package features derives rates, ratios and adjustment factors from raw football statistics.
package features

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MinDenominator is the smallest divisor used for reliability ratios
const MinDenominator = 0.1

const minutesPerNinety = 90.0

// Age brackets used by AgeFactor. Fixed lookup, not fitted.
const (
	primeAgeFrom  = 24
	primeAgeTo    = 28
	veteranAgeTo  = 32
	primeFactor   = 1.1
	veteranFactor = 1.0
	otherFactor   = 0.9
)

// Form point values
const (
	winPoints  = 3
	drawPoints = 1
	lossPoints = 0
)

// Per90 returns total per ninety minutes. It prefers nineties played, then
// minutes, then matches as the denominator and returns 0 when all are zero.
func Per90(total, nineties, minutes, matches float64) float64 {
	switch {
	case nineties > 0:
		return total / nineties
	case minutes > 0:
		return total / (minutes / minutesPerNinety)
	case matches > 0:
		return total / matches
	default:
		return 0
	}
}

// HasPlayingTime reports whether Per90 has a usable denominator
func HasPlayingTime(nineties, minutes, matches float64) bool {
	return nineties > 0 || minutes > 0 || matches > 0
}

// StartRatio returns starts/matches, or 0 when no matches were played
func StartRatio(starts, matches float64) float64 {
	if matches <= 0 {
		return 0
	}
	return starts / matches
}

// AvailabilityFactor scales projections down for part-time players
func AvailabilityFactor(startRatio float64) float64 {
	return 0.5 + startRatio*0.5
}

// AgeFactor returns 1.1 for ages 24-28, 1.0 for 29-32 and 0.9 otherwise
func AgeFactor(age float64) float64 {
	switch {
	case age >= primeAgeFrom && age <= primeAgeTo:
		return primeFactor
	case age > primeAgeTo && age <= veteranAgeTo:
		return veteranFactor
	default:
		return otherFactor
	}
}

// ProgressiveFactor returns min(ceiling, 1 + total/divisor). A non-positive divisor disables the adjustment.
func ProgressiveFactor(total, ceiling, divisor float64) float64 {
	if divisor <= 0 {
		return 1.0
	}
	return math.Min(ceiling, 1.0+total/divisor)
}

// PositionRule describes how a position token maps to a multiplier
type PositionRule struct {
	Bonus        []string
	BonusValue   float64
	Neutral      []string
	PenaltyValue float64
}

// PositionFactor applies rule to a case-insensitive position token
func PositionFactor(position string, rule PositionRule) float64 {
	token := strings.ToUpper(strings.TrimSpace(position))
	if containsToken(rule.Bonus, token) {
		return rule.BonusValue
	}
	if containsToken(rule.Neutral, token) {
		return 1.0
	}
	return rule.PenaltyValue
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// FormPoints sums 3 per W, 1 per D and 0 per L, case-insensitively
func FormPoints(sequence string) (int, error) {
	points := 0
	for i, r := range sequence {
		switch r {
		case 'W', 'w':
			points += winPoints
		case 'D', 'd':
			points += drawPoints
		case 'L', 'l':
			points += lossPoints
		default:
			return 0, &FormTokenError{Token: r, Index: i}
		}
	}
	return points, nil
}

// PointsPerGame returns (wins*3 + draws) / matches, or 0 without matches
func PointsPerGame(wins, draws, matches float64) float64 {
	if matches <= 0 {
		return 0
	}
	return (wins*winPoints + draws*drawPoints) / matches
}

// SafeDiv divides num by max(den, minDen). A non-positive minDen with a zero den returns 0.
func SafeDiv(num, den, minDen float64) float64 {
	d := math.Max(den, minDen)
	if d == 0 {
		return 0
	}
	return num / d
}

// Rate returns part/whole as a percentage, or 0 when whole is zero
func Rate(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v half away from zero to the given number of decimal places
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return rounded
}
