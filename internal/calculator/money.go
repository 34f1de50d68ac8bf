package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance for comparing derived monetary sums against zero.
const Epsilon = 0.01

// IsZero reports whether v is within Epsilon of zero.
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// RoundCents rounds v half away from zero to two decimal places.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// toCents converts an amount to whole cents after rounding.
func toCents(v float64) int64 {
	return decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
}

// fromCents converts whole cents back to a currency amount.
func fromCents(c int64) float64 {
	return decimal.New(c, -2).InexactFloat64()
}
