package budget_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
)

func TestSession_CreateFlow(t *testing.T) {
	s := budget.NewSession()
	assert.Equal(t, budget.StateIdle, s.State)

	require.NoError(t, s.StartCreate())
	assert.Equal(t, budget.StateCreatingSpent, s.State)

	require.NoError(t, s.UpdateAmount(dec("12.50")))
	require.NoError(t, s.BeginCommit())
	assert.Equal(t, budget.StateCommittingSpent, s.State)

	s.FinishCommit()
	assert.Equal(t, budget.StateIdle, s.State)
	assert.True(t, s.Amount.IsZero(), "entered amount resets after commit")
}

func TestSession_EditFlowPreloadsRecord(t *testing.T) {
	record := budget.Spend{
		ID:      "spend-1",
		Amount:  dec("30"),
		Date:    day(2025, time.March, 3),
		Comment: "coffee",
	}

	s := budget.NewSession()
	require.NoError(t, s.StartEdit(record))

	assert.Equal(t, budget.StateEditSpent, s.State)
	assert.True(t, s.Amount.Equal(dec("30")))
	assert.Equal(t, budget.SpendID("spend-1"), s.EditID)
	assert.Equal(t, "coffee", s.Comment)
	assert.True(t, s.Editing())
}

func TestSession_CommitRequiresPositiveAmount(t *testing.T) {
	// GIVEN: an entry session with nothing typed
	// WHEN: commit is requested
	// THEN: refused with EmptyAmount, state unchanged
	s := budget.NewSession()
	require.NoError(t, s.StartCreate())

	err := s.BeginCommit()

	assert.ErrorIs(t, err, budget.ErrEmptyAmount)
	assert.Equal(t, budget.StateCreatingSpent, s.State)
}

func TestSession_IllegalTransitions(t *testing.T) {
	s := budget.NewSession()

	// Commit from IDLE
	err := s.BeginCommit()
	assert.ErrorIs(t, err, budget.ErrInvalidSessionTransition)
	var te *budget.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "commit", te.Event)

	// Amount entry from IDLE
	assert.ErrorIs(t, s.UpdateAmount(dec("5")), budget.ErrInvalidSessionTransition)

	// Double start
	require.NoError(t, s.StartCreate())
	assert.ErrorIs(t, s.StartCreate(), budget.ErrInvalidSessionTransition)
	assert.ErrorIs(t, s.StartEdit(budget.Spend{ID: "x", Amount: dec("1")}), budget.ErrInvalidSessionTransition)
}

func TestSession_NegativeAmountRejected(t *testing.T) {
	s := budget.NewSession()
	require.NoError(t, s.StartCreate())

	err := s.UpdateAmount(dec("-3"))

	assert.ErrorIs(t, err, budget.ErrInvalidAmount)
	assert.True(t, s.Amount.IsZero())
}

func TestSession_CancelIsAlwaysSafe(t *testing.T) {
	s := budget.NewSession()

	// No-op from IDLE
	s.Cancel()
	assert.Equal(t, budget.StateIdle, s.State)

	// Discards an in-progress entry
	require.NoError(t, s.StartCreate())
	require.NoError(t, s.UpdateAmount(dec("99")))
	s.Cancel()
	assert.Equal(t, budget.StateIdle, s.State)
	assert.True(t, s.Amount.IsZero())

	// No-op mid-commit: commit is atomic once initiated
	require.NoError(t, s.StartCreate())
	require.NoError(t, s.UpdateAmount(dec("5")))
	require.NoError(t, s.BeginCommit())
	s.Cancel()
	assert.Equal(t, budget.StateCommittingSpent, s.State)
}
