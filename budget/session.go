/*
session.go - Spend entry state machine

PURPOSE:
  Governs the lifecycle of "entering an amount": from the first keypress
  through commit or cancel. One session is active at a time; the engine
  owns it exclusively.

STATE DIAGRAM:

  IDLE ──startCreate──▶ CREATING_SPENT ──commit──▶ COMMITTING_SPENT ──▶ IDLE
    │                        │                          ▲    (automatic,
    └──startEdit──▶ EDIT_SPENT ──commit─────────────────┘     after side
                         │                                    effects)
       CREATING_SPENT/EDIT_SPENT ──cancel──▶ IDLE (discards entered amount)

  No other transitions are legal. An illegal request fails with
  ErrInvalidSessionTransition and leaves the session unchanged. Cancel is
  the one forgiving event: from IDLE or COMMITTING_SPENT it is a no-op,
  because a commit is atomic once initiated and cancelling nothing is safe.

CREATE vs EDIT:
  A create commit appends a new record. An edit commit replaces the
  original record in place: same id, new amount and date. The session is
  pre-loaded with the record being edited.

SEE ALSO:
  - engine.go: drives the transitions and performs the commit side effects
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SESSION STATE
// =============================================================================

type SessionState string

const (
	StateIdle            SessionState = "IDLE"
	StateCreatingSpent   SessionState = "CREATING_SPENT"
	StateEditSpent       SessionState = "EDIT_SPENT"
	StateCommittingSpent SessionState = "COMMITTING_SPENT"
)

// Session is the in-progress, uncommitted act of entering or editing one
// spend's amount. Zero value is an idle session.
type Session struct {
	State   SessionState
	Amount  decimal.Decimal
	Comment string

	// Set while editing an existing record.
	EditID   SpendID
	EditDate Day
}

// NewSession returns an idle session.
func NewSession() Session {
	return Session{State: StateIdle}
}

func (s Session) idleish() bool {
	return s.State == StateIdle || s.State == ""
}

// Entering reports whether an amount is currently being entered.
func (s Session) Entering() bool {
	return s.State == StateCreatingSpent || s.State == StateEditSpent
}

// StartCreate begins entering a new spend. Legal only from IDLE.
func (s *Session) StartCreate() error {
	if !s.idleish() {
		return &TransitionError{From: s.State, Event: "startCreate"}
	}
	s.State = StateCreatingSpent
	s.Amount = decimal.Zero
	s.Comment = ""
	s.EditID = ""
	s.EditDate = Day{}
	return nil
}

// StartEdit reopens an existing record for editing, pre-loading its
// amount and date. Legal only from IDLE.
func (s *Session) StartEdit(record Spend) error {
	if !s.idleish() {
		return &TransitionError{From: s.State, Event: "startEdit"}
	}
	s.State = StateEditSpent
	s.Amount = record.Amount
	s.Comment = record.Comment
	s.EditID = record.ID
	s.EditDate = record.Date
	return nil
}

// UpdateAmount replaces the entered amount. Legal only while entering.
// Negative amounts are rejected; zero is fine mid-entry, only commit
// insists on a positive amount.
func (s *Session) UpdateAmount(amount decimal.Decimal) error {
	if !s.Entering() {
		return &TransitionError{From: s.State, Event: "updateAmount"}
	}
	if amount.IsNegative() {
		return &AmountError{Input: amount.String(), Reason: "negative"}
	}
	s.Amount = amount
	return nil
}

// UpdateComment replaces the entered comment. Legal only while entering.
// The comment is free text and carries no engine semantics.
func (s *Session) UpdateComment(comment string) error {
	if !s.Entering() {
		return &TransitionError{From: s.State, Event: "updateComment"}
	}
	s.Comment = comment
	return nil
}

// BeginCommit moves to COMMITTING_SPENT. Legal only while entering and
// with a positive amount; a zero amount is refused with ErrEmptyAmount.
func (s *Session) BeginCommit() error {
	if !s.Entering() {
		return &TransitionError{From: s.State, Event: "commit"}
	}
	if !s.Amount.IsPositive() {
		return ErrEmptyAmount
	}
	s.State = StateCommittingSpent
	return nil
}

// FinishCommit returns to IDLE after the commit side effects completed,
// resetting the entered amount.
func (s *Session) FinishCommit() {
	*s = NewSession()
}

// Cancel discards the entered amount and returns to IDLE. Always safe:
// a no-op from IDLE and COMMITTING_SPENT.
func (s *Session) Cancel() {
	if s.Entering() {
		*s = NewSession()
	}
}

// Editing reports whether the session replaces an existing record on commit.
func (s Session) Editing() bool {
	return s.State == StateEditSpent || (s.State == StateCommittingSpent && s.EditID != "")
}
