// Package money does currency arithmetic in decimal so cents never drift.
package money

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred   = decimal.NewFromInt(100)
	thirty    = decimal.NewFromInt(30)
	dueMargin = decimal.RequireFromString("1.1")
)

// ToMinorUnits converts a major-unit amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}

// DaysBetween counts whole days from start to end, rounding partial days up.
func DaysBetween(start, end time.Time) int64 {
	return int64(math.Ceil(end.Sub(start).Hours() / 24))
}

// SimpleInterestTotal is principal + principal × rate% × days/30, in cents.
func SimpleInterestTotal(principal, ratePercent float64, days int64) float64 {
	p := decimal.NewFromFloat(principal)
	interest := p.Mul(decimal.NewFromFloat(ratePercent).Div(hundred)).
		Mul(decimal.NewFromInt(days).Div(thirty))
	return p.Add(interest).Round(2).InexactFloat64()
}

func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns a − b rounded to cents.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Due is total − paid floored at zero.
func Due(total, paid float64) float64 {
	due := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(paid))
	if due.IsNegative() {
		return 0
	}
	return due.Round(2).InexactFloat64()
}

// ExceedsDueMargin reports amount > due × 1.1.
func ExceedsDueMargin(amount, due float64) bool {
	return decimal.NewFromFloat(amount).GreaterThan(decimal.NewFromFloat(due).Mul(dueMargin))
}
