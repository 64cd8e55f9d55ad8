/*
store.go - Spend store interface

PURPOSE:
  Defines the contract between the engine and spend persistence. The store
  is an ordered collection of committed spend records with one level of
  undo for removals.

ORDERING CONTRACT:
  List returns records in commit order, ascending, always. Undo restores a
  record to the exact position it was removed from, so an add/remove/undo
  round trip is observably identical to the state right after the add.

THE UNDO SLOT:
  Remove does not tombstone. The removed record moves into a single-slot
  holder; a second remove overwrites the slot and the earlier record is
  permanently gone. This is bounded memory on purpose, not an unbounded
  undo stack.

IMPLEMENTATIONS:
  - budget/store/memory.go: authoritative in-memory store
  - store/sqlite: persists full state images for restart round-trips,
    it is not a live SpendStore (see engine.go on the loss window)

SEE ALSO:
  - engine.go: the sole writer to any SpendStore
*/
package budget

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SPEND STORE - Ordered spend records with single-slot undo
// =============================================================================

// SpendStore holds committed spend records in commit order.
//
// The engine is the exclusive writer. Readers may hold the snapshots the
// engine publishes; they never query the store while a mutation is running.
type SpendStore interface {
	// Add appends a record. Fails with ErrInvalidAmount if the amount is
	// not strictly positive.
	Add(ctx context.Context, s Spend) error

	// Replace swaps the record with the same id in place, keeping its
	// position. Fails with ErrSpendNotFound for unknown ids.
	Replace(ctx context.Context, s Spend) error

	// Remove moves the record into the undo slot, displacing any previous
	// slot contents. The record is excluded from all queries immediately.
	Remove(ctx context.Context, id SpendID) (Spend, error)

	// UndoLastRemove restores the slot contents to their original position.
	// A no-op returning ok=false when the slot is empty or already consumed.
	UndoLastRemove(ctx context.Context) (Spend, bool, error)

	// Get returns the record with the given id.
	Get(ctx context.Context, id SpendID) (Spend, error)

	// List returns all records in commit order, ascending.
	List(ctx context.Context) ([]Spend, error)

	// SpentOn sums the amounts attributed to the given day.
	SpentOn(ctx context.Context, d Day) (decimal.Decimal, error)

	// CountOn counts the records attributed to the given day.
	CountOn(ctx context.Context, d Day) (int, error)

	// SpentBefore sums the amounts attributed to days strictly before d.
	// This is the allocation algorithm's remaining-budget input.
	SpentBefore(ctx context.Context, d Day) (decimal.Decimal, error)

	// TotalSpent sums all amounts.
	TotalSpent(ctx context.Context) (decimal.Decimal, error)

	// RemovedSlot exposes the undo slot contents and the position the
	// record was removed from, for state round-trips.
	RemovedSlot(ctx context.Context) (Spend, int, bool, error)
}
