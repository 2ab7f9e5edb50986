// Package money rounds currency amounts to pence, half away from zero.
package money

import "github.com/shopspring/decimal"

// Places is the currency precision used for every displayed amount.
const Places = 2

// Dec converts a float amount to a decimal using its shortest representation.
func Dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// RoundDec rounds d to currency precision.
func RoundDec(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Round rounds v to currency precision.
func Round(v float64) float64 {
	return RoundDec(Dec(v)).InexactFloat64()
}

// Float converts a rounded decimal back to float64.
func Float(d decimal.Decimal) float64 {
	return RoundDec(d).InexactFloat64()
}
