// Package money holds amounts as integer counts of the currency's minor unit
// so cart arithmetic never drifts. Rates are decimals; applying a rate rounds
// half away from zero to a whole minor unit.
package money

import (
	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (one peso for CLP, one cent for USD).
type Money int64

func (m Money) Int64() int64 { return int64(m) }

// Times multiplies a unit price by a quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }

// MulRate applies a decimal rate and rounds to a whole minor unit.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(rate).Round(0).IntPart())
}

// Decimal exposes the amount for callers that need decimal arithmetic.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

func (m Money) IsNegative() bool { return m < 0 }
