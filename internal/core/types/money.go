// Package types provides common monetary types for the ledger.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point drift in totals.
type Money = decimal.Decimal

// Quantity represents a stock quantity. Kept as decimal so products sold by
// weight or length keep exact fractional amounts.
type Quantity = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds a monetary value to 2 decimal places.
// All record totals are rounded at write time.
func Round2(m Money) Money {
	return m.Round(2)
}

// SecondaryFromReference derives the secondary-currency price from the
// reference price and the tenant exchange rate (secondary units per reference
// unit). Returns zero when the rate is not set.
func SecondaryFromReference(ref Money, rate Money) Money {
	if rate.IsZero() {
		return decimal.Zero
	}
	return Round2(ref.Mul(rate))
}
