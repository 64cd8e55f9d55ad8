/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the presentation layer. Amounts travel as decimal
  strings and dates in 2006-01-02 form; any formatting (currency symbols,
  separators, localization) is the client's concern.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
  - budget/engine.go: Snapshot, the source of every response
*/
package api

import (
	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SpendDTO represents one spend record.
type SpendDTO struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Date    string `json:"date"`
	Comment string `json:"comment,omitempty"`
}

// PeriodDTO represents the budget period.
type PeriodDTO struct {
	Total      string `json:"total"`
	StartDate  string `json:"start_date"`
	FinishDate string `json:"finish_date"`
}

// SnapshotDTO is the full read model the view layer renders from.
type SnapshotDTO struct {
	Day   string `json:"day"`
	State string `json:"state"`

	Period *PeriodDTO `json:"period,omitempty"`

	DailyBudget          string `json:"daily_budget"`
	SpentFromDailyBudget string `json:"spent_from_daily_budget"`
	CurrentSpent         string `json:"current_spent"`
	RestBudgetForToday   string `json:"rest_budget_for_today"`
	TodaySpendCount      int    `json:"today_spend_count"`

	RemainingTotal string `json:"remaining_total"`
	DaysLeft       int    `json:"days_left"`
	Deficit        string `json:"deficit"`

	Spends []SpendDTO `json:"spends"`
}

// TriggersDTO reports the recalculation trigger conditions from a tick.
type TriggersDTO struct {
	DayChanged bool   `json:"day_changed"`
	Overspent  bool   `json:"overspent"`
	Shortfall  string `json:"shortfall"`
}

// TickResponse is the on-resume response: new read model plus triggers.
type TickResponse struct {
	Snapshot SnapshotDTO `json:"snapshot"`
	Triggers TriggersDTO `json:"triggers"`
}

// ErrorDTO carries an error kind together with the unchanged read model,
// so a failed operation never leaves the client without render state.
type ErrorDTO struct {
	Error    string       `json:"error"`
	Kind     string       `json:"kind"`
	Snapshot *SnapshotDTO `json:"snapshot,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SetBudgetRequest replaces the budget period.
type SetBudgetRequest struct {
	Total      string `json:"total"`
	StartDate  string `json:"start_date"`
	FinishDate string `json:"finish_date"`
}

// AmountRequest carries an entered amount.
type AmountRequest struct {
	Amount string `json:"amount"`
}

// CommentRequest carries an entered comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// =============================================================================
// MAPPING
// =============================================================================

func toSnapshotDTO(s budget.Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		Day:                  s.Day.String(),
		State:                string(s.State),
		DailyBudget:          s.DailyBudget.String(),
		SpentFromDailyBudget: s.SpentFromDailyBudget.String(),
		CurrentSpent:         s.CurrentSpent.String(),
		RestBudgetForToday:   s.RestBudgetForToday.String(),
		TodaySpendCount:      s.TodaySpendCount,
		RemainingTotal:       s.RemainingTotal.String(),
		DaysLeft:             s.DaysLeft,
		Deficit:              s.Deficit.String(),
		Spends:               make([]SpendDTO, len(s.Spends)),
	}
	if s.HasPeriod {
		dto.Period = &PeriodDTO{
			Total:      s.Period.Total.String(),
			StartDate:  s.Period.Start.String(),
			FinishDate: s.Period.Finish.String(),
		}
	}
	for i, sp := range s.Spends {
		dto.Spends[i] = toSpendDTO(sp)
	}
	return dto
}

func toSpendDTO(s budget.Spend) SpendDTO {
	return SpendDTO{
		ID:      string(s.ID),
		Amount:  s.Amount.String(),
		Date:    s.Date.String(),
		Comment: s.Comment,
	}
}

func toTriggersDTO(tc budget.TriggerCheck) TriggersDTO {
	return TriggersDTO{
		DayChanged: tc.DayChanged,
		Overspent:  tc.Overspent,
		Shortfall:  tc.Shortfall.String(),
	}
}
