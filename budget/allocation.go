/*
allocation.go - Daily allowance calculation and recalculation triggers

PURPOSE:
  Implements the "equal distribution of what's left, over what's left"
  rule. The allowance for a day is the budget remaining at the start of
  that day divided by the days remaining to the finish date, inclusive.

WHY RECOMPUTE INSTEAD OF ACCUMULATE:
  The allowance is recomputed fresh each day from the remaining total.
  A day with unspent allowance silently rolls its surplus into the next
  day's division; a day with overspend shrinks every subsequent day's
  share equally. Nothing is carried forward explicitly, so the
  computation is idempotent: same inputs, same allowance, every time.

EDGE CASES (all defined, no panic paths):
  - Today is the finish date: the whole remainder goes to today.
  - Today is past the finish date: same, clamped to the finish-day rule.
  - Remaining total is negative: the allowance clamps to zero and the
    deficit is surfaced explicitly, never silently absorbed.

SEE ALSO:
  - period.go: DaysLeft
  - engine.go: checks the trigger conditions and owns the current day
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION - The computed allowance for one day
// =============================================================================

// Allocation is the derived allowance state for a single day. It is a
// value, never persisted; the engine recomputes it on every mutation.
type Allocation struct {
	Day      Day
	DaysLeft int

	// Remaining is the total budget minus everything spent strictly
	// before Day. May legally be negative.
	Remaining decimal.Decimal

	// DailyBudget is Remaining / DaysLeft, clamped at zero.
	DailyBudget decimal.Decimal

	// Deficit is how far Remaining is below zero; zero when not overspent.
	Deficit decimal.Decimal
}

// Allocate computes the allowance for day d given the budget remaining
// from days strictly before d.
func Allocate(p Period, spentBefore decimal.Decimal, d Day) Allocation {
	daysLeft := p.DaysLeft(d)
	remaining := p.Total.Sub(spentBefore)

	alloc := Allocation{
		Day:         d,
		DaysLeft:    daysLeft,
		Remaining:   remaining,
		DailyBudget: decimal.Zero,
		Deficit:     decimal.Zero,
	}

	if remaining.IsNegative() {
		alloc.Deficit = remaining.Neg()
		return alloc
	}

	alloc.DailyBudget = remaining.Div(decimal.NewFromInt(int64(daysLeft)))
	return alloc
}

// =============================================================================
// RECALCULATION TRIGGERS
// =============================================================================

// TriggerCheck reports which recalculation trigger conditions currently
// hold. The engine evaluates it on every tick and mutation; any true
// field is reason enough to recompute the allocation.
type TriggerCheck struct {
	// DayChanged is true when today differs from the day of the last
	// recorded operation - a day-boundary crossing.
	DayChanged bool

	// Overspent is true when committed spending has pushed the projected
	// end-of-period balance negative beyond the tolerance.
	Overspent bool

	// Shortfall is how far the projected end-of-period balance is below
	// zero. Zero when not overspent.
	Shortfall decimal.Decimal
}

// Any reports whether any trigger condition holds.
func (tc TriggerCheck) Any() bool {
	return tc.DayChanged || tc.Overspent
}

// CheckTriggers evaluates the day-boundary and overspend trigger
// conditions. totalSpent is all committed spending in the period;
// tolerance bounds how far below zero the projection may drift before
// the overspend trigger fires.
func CheckTriggers(p Period, totalSpent decimal.Decimal, lastDay, today Day, tolerance decimal.Decimal) TriggerCheck {
	tc := TriggerCheck{Shortfall: decimal.Zero}

	if !lastDay.IsZero() && !today.Equal(lastDay) {
		tc.DayChanged = true
	}

	projected := p.Total.Sub(totalSpent)
	if projected.IsNegative() && projected.Neg().GreaterThan(tolerance) {
		tc.Overspent = true
		tc.Shortfall = projected.Neg()
	}
	return tc
}
