// Package money converts between decimal currency amounts and integer minor
// units. All balance redistribution arithmetic runs on cents so that rounding
// is deterministic and plans sum exactly.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Cents converts a currency amount to integer minor units. Amounts come out of
// the store as float64, so the conversion goes through decimal to avoid binary
// float drift (e.g. 19.99 * 100 != 1999 in float64).
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer minor units back to a currency amount.
func FromCents(c int64) float64 {
	f, _ := decimal.NewFromInt(c).Div(hundred).Float64()
	return f
}
