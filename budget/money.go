/*
Package budget provides the core daily-budget allocation engine.

PURPOSE:
  This package contains the domain types and algorithms for a period-based
  budget that is divided into a rolling daily allowance: the budget period,
  the spend ledger, the spend entry session, and the recalculation algorithm
  that redistributes whatever is left over whatever days are left.

KEY CONCEPTS IN THIS FILE (money.go):
  - All currency arithmetic uses decimal.Decimal. Never float64.
  - ParseAmount: the single entry point for untrusted amount strings.

DESIGN PRINCIPLES:
  1. Precision: exact decimal arithmetic, no cent-level drift across
     repeated recalculation.
  2. Immutability: spend records are replaced, never mutated in place.
  3. Testability: "today" is an injected input, never a hidden clock read.

SEE ALSO:
  - date.go: calendar-day arithmetic
  - period.go: the budget period
  - allocation.go: the daily allowance calculation
  - engine.go: the orchestrator the view layer talks to
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal amounts
// =============================================================================

// ParseAmount parses an untrusted amount string into a decimal.
// Returns ErrInvalidAmount for unparsable input.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &AmountError{Input: s, Reason: "unparsable"}
	}
	return d, nil
}

// ParsePositiveAmount parses an amount that must be strictly positive.
// Used for spend amounts and budget totals.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, &AmountError{Input: s, Reason: "not positive"}
	}
	return d, nil
}

// MustParseDecimal is a test and fixture helper.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Cent is the default overspend tolerance: one minor currency unit.
var Cent = decimal.New(1, -2)
