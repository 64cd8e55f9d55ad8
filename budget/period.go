package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD - The date range and total amount a budget runs over
// =============================================================================

// Period is a budget period: a total amount committed to the inclusive
// date range [Start, Finish].
//
// A period is immutable between edits. Recalculation with a new total or
// finish date replaces the period wholesale; nothing ever mutates one.
type Period struct {
	Total  decimal.Decimal
	Start  Day
	Finish Day
}

// NewPeriod builds a validated period. Returns ErrInvalidPeriod when the
// finish date precedes the start date or the total is not positive.
func NewPeriod(total decimal.Decimal, start, finish Day) (Period, error) {
	p := Period{Total: total, Start: start, Finish: finish}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the period invariants.
func (p Period) Validate() error {
	if p.Finish.Before(p.Start) {
		return &PeriodError{Period: p, Reason: "finish before start"}
	}
	if !p.Total.IsPositive() {
		return &PeriodError{Period: p, Reason: "total not positive"}
	}
	return nil
}

// Contains returns true if the day is within [Start, Finish].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.Finish)
}

// Length returns the period length in days, always >= 1.
func (p Period) Length() int {
	return DaysBetween(p.Start, p.Finish) + 1
}

// DaysLeft returns the number of days from d to Finish inclusive.
// On the finish day this is 1; past the finish it clamps to 1, so the
// whole remainder is always attributable to some current day and no
// division by zero is reachable.
func (p Period) DaysLeft(d Day) int {
	n := DaysBetween(d, p.Finish) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Expired reports whether d is past the finish date.
func (p Period) Expired(d Day) bool {
	return d.After(p.Finish)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.Finish.String() + "] " + p.Total.String()
}
