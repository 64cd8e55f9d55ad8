/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error kinds in one place. Every error here is local and recoverable:
  the engine leaves its state untouched and hands the caller the unchanged
  read model alongside the error. There is no "should never happen" branch;
  the allocation math is defined for every reachable input.

ERROR CATEGORIES:
  1. Input errors    - bad amounts, bad periods
  2. Session errors  - illegal state-machine transitions, empty commits
  3. Lookup errors   - unknown spend ids

USAGE:
  if errors.Is(err, budget.ErrInvalidSessionTransition) { ... }

SEE ALSO:
  - session.go: transition validation
  - engine.go: where errors are surfaced with the read model
*/
package budget

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for non-positive or unparsable amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmptyAmount is returned when a commit is attempted with nothing entered.
	ErrEmptyAmount = errors.New("empty amount")

	// ErrInvalidSessionTransition is returned for illegal state-machine requests.
	ErrInvalidSessionTransition = errors.New("invalid session transition")

	// ErrInvalidPeriod is returned when a finish date precedes the start date
	// or the total budget is not positive.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrRecalculationNotApplicable is returned when recalculation is requested
	// with no remaining days and no remaining budget - nothing to distribute.
	ErrRecalculationNotApplicable = errors.New("recalculation not applicable")

	// ErrSpendNotFound is returned when an edit or remove names an unknown id.
	ErrSpendNotFound = errors.New("spend not found")

	// ErrNoPeriod is returned when an operation needs a budget period and none
	// has been set yet.
	ErrNoPeriod = errors.New("no budget period set")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AmountError describes a rejected amount.
type AmountError struct {
	Input  string
	Reason string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// PeriodError describes a rejected period.
type PeriodError struct {
	Period Period
	Reason string
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("invalid period %s: %s", e.Period, e.Reason)
}

func (e *PeriodError) Unwrap() error { return ErrInvalidPeriod }

// TransitionError describes an illegal session transition request.
type TransitionError struct {
	From  SessionState
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal session transition: %s from %s", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidSessionTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an engine failure. The API layer maps these to 4xx.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyAmount) ||
		errors.Is(err, ErrInvalidSessionTransition) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrRecalculationNotApplicable) ||
		errors.Is(err, ErrNoPeriod)
}

// IsNotFound returns true if the error indicates a missing spend record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSpendNotFound)
}
