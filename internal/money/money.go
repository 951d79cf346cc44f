// Package money normalizes monetary amounts to exchange-safe precision.
package money

import "github.com/shopspring/decimal"

// Normalize rounds an amount to two fractional digits using round-half-to-even
// (banker's rounding). Every amount must pass through here exactly once, at
// the orchestrator boundary, before a request leaves the process.
func Normalize(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(2)
}

// MinorUnits returns the normalized amount in minor currency units (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return Normalize(amount).Shift(2).IntPart()
}
