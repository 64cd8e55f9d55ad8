package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SPEND RECORD - A single recorded expenditure
// =============================================================================

// SpendID is the stable, order-independent identity of a spend record.
type SpendID string

// NewSpendID returns a fresh random id.
func NewSpendID() SpendID {
	return SpendID(uuid.NewString())
}

// Spend is one recorded expenditure. Created on commit of a session,
// never mutated afterwards: an edit session replaces the record in place
// (same id, new amount/date) and a remove parks it in the undo slot.
type Spend struct {
	ID      SpendID
	Amount  decimal.Decimal
	Date    Day
	Comment string
}

// NewSpend builds a validated spend record with a fresh id.
// Returns ErrInvalidAmount if the amount is not strictly positive.
func NewSpend(amount decimal.Decimal, date Day, comment string) (Spend, error) {
	if !amount.IsPositive() {
		return Spend{}, &AmountError{Input: amount.String(), Reason: "not positive"}
	}
	return Spend{
		ID:      NewSpendID(),
		Amount:  amount,
		Date:    date,
		Comment: comment,
	}, nil
}
