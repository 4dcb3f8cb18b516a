// Package core defines the domain model for the budget engine: accounts,
// debts, categories, expenses, paychecks, goals, and the money primitives
// everything else is computed with.
//
// All monetary amounts are decimal values rounded through Round2, which
// guarantees that allocation totals reconcile to the cent.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
// Every amount the engine computes or compares routes through this.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round4 rounds to 4 decimal places; used for progress fractions.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// ParseAmount converts a decimal string to a monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for empty or malformed input. Sign checks are
// left to the call sites: goal targets may legitimately be zero while
// expense and paycheck amounts must be positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount as dollars with two decimals, e.g. $12.34.
func FormatAmount(d decimal.Decimal) string {
	if d.Sign() < 0 {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
