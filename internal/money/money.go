// Package money provides the currency arithmetic used across invoicing.
//
// Amounts travel through the system as float64 values rounded to two
// fractional digits. Every operation here computes in decimal
// (github.com/shopspring/decimal) and rounds half away from zero before
// converting back, so chained calculations never accumulate binary
// floating-point error.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for currency values.
const Places = 2

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// RoundCurrency rounds x to two decimals, half away from zero.
// Non-finite input is returned unchanged.
func RoundCurrency(x float64) float64 {
	if !IsFinite(x) {
		return x
	}
	return toFloat(decimal.NewFromFloat(x))
}

// SumRounded adds already-rounded values and rounds the sum again.
func SumRounded(values ...float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		if !IsFinite(v) {
			return math.NaN()
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return toFloat(sum)
}

// Add returns the rounded sum of a and b.
func Add(a, b float64) float64 {
	return SumRounded(a, b)
}

// Sub returns the rounded difference a-b.
func Sub(a, b float64) float64 {
	if !IsFinite(a) || !IsFinite(b) {
		return math.NaN()
	}
	return toFloat(decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)))
}

// Mul returns the rounded product a*b.
func Mul(a, b float64) float64 {
	if !IsFinite(a) || !IsFinite(b) {
		return math.NaN()
	}
	return toFloat(decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)))
}

// TaxAmount is the rounded tax due on base at rate.
func TaxAmount(base, rate float64) float64 {
	return Mul(base, rate)
}

// Proportion returns value*part/whole rounded to two decimals. The
// multiplication happens before the division so that exact shares such as
// 200*150/300 stay exact. whole must be non-zero.
func Proportion(value, part, whole float64) float64 {
	if !IsFinite(value) || !IsFinite(part) || !IsFinite(whole) || whole == 0 {
		return math.NaN()
	}
	d := decimal.NewFromFloat(value).Mul(decimal.NewFromFloat(part))
	return toFloat(d.Div(decimal.NewFromFloat(whole)))
}

// Format renders x with exactly two decimals, e.g. "589.57".
func Format(x float64) string {
	if !IsFinite(x) {
		return "NaN"
	}
	return decimal.NewFromFloat(x).StringFixed(Places)
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(Places).InexactFloat64()
}
