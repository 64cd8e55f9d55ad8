/*
handlers.go - HTTP handlers binding the presentation layer to the engine

PURPOSE:
  Translates HTTP requests into engine operations and read-model
  snapshots into JSON. Handlers parse and validate input, call exactly
  one engine operation, and serialize the result; no budget logic lives
  here.

ENDPOINTS:
  Budget:
    GET    /api/budget              Current read-model snapshot
    PUT    /api/budget              Set total budget and period
    POST   /api/budget/recalculate  Explicit recalculation request
    POST   /api/budget/tick         On-resume day-boundary check

  Session:
    POST   /api/session/create      Begin entering a new spend
    POST   /api/session/edit/{id}   Reopen a record for editing
    PUT    /api/session/amount      Update the entered amount
    PUT    /api/session/comment     Update the entered comment
    POST   /api/session/commit      Commit the session
    POST   /api/session/cancel      Discard the session

  Spends:
    GET    /api/spends              Full history in commit order
    DELETE /api/spends/{id}         Remove (restorable once)
    POST   /api/spends/undo         Restore the last removal

ERROR HANDLING:
  Engine errors carry the unchanged read model, so error responses embed
  the current snapshot alongside the kind:
  - 400: invalid input, illegal transitions, empty commits
  - 404: unknown spend id
  - 500: storage failures

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/budget"
)

// Handler holds the handlers' dependencies.
type Handler struct {
	Engine *budget.Engine
	Log    zerolog.Logger
}

// NewHandler creates a handler around the given engine.
func NewHandler(engine *budget.Engine, log zerolog.Logger) *Handler {
	return &Handler{Engine: engine, Log: log}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// GetBudget returns the current read-model snapshot.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSnapshotDTO(h.Engine.Snapshot()))
}

// SetBudget replaces the budget period.
func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var req SetBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	total, err := budget.ParsePositiveAmount(req.Total)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	start, err := budget.ParseDay(req.StartDate)
	if err != nil {
		h.writeBadRequest(w, "invalid start_date, want YYYY-MM-DD")
		return
	}
	finish, err := budget.ParseDay(req.FinishDate)
	if err != nil {
		h.writeBadRequest(w, "invalid finish_date, want YYYY-MM-DD")
		return
	}

	snap, err := h.Engine.SetBudget(r.Context(), total, start, finish)
	h.writeResult(w, snap, err)
}

// Recalculate handles an explicit recalculation request.
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.Recalculate(r.Context())
	h.writeResult(w, snap, err)
}

// Tick supplies "now" to the engine and reports trigger conditions.
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	snap, triggers, err := h.Engine.Tick(r.Context())
	if err != nil {
		h.writeEngineErrorWithSnapshot(w, snap, err)
		return
	}
	writeJSON(w, http.StatusOK, TickResponse{
		Snapshot: toSnapshotDTO(snap),
		Triggers: toTriggersDTO(triggers),
	})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// StartCreate begins entering a new spend.
func (h *Handler) StartCreate(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.StartCreate(r.Context())
	h.writeResult(w, snap, err)
}

// StartEdit reopens the identified record for editing.
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	id := budget.SpendID(chi.URLParam(r, "id"))
	snap, err := h.Engine.StartEdit(r.Context(), id)
	h.writeResult(w, snap, err)
}

// UpdateAmount updates the entered amount.
func (h *Handler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	amount, err := budget.ParseAmount(req.Amount)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	snap, err := h.Engine.UpdateAmount(r.Context(), amount)
	h.writeResult(w, snap, err)
}

// UpdateComment updates the entered comment.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	snap, err := h.Engine.UpdateComment(r.Context(), req.Comment)
	h.writeResult(w, snap, err)
}

// Commit commits the session.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.Commit(r.Context())
	h.writeResult(w, snap, err)
}

// CancelSession discards the session.
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.CancelSession(r.Context())
	h.writeResult(w, snap, err)
}

// =============================================================================
// SPEND HANDLERS
// =============================================================================

// ListSpends returns the full spend history in commit order.
func (h *Handler) ListSpends(w http.ResponseWriter, r *http.Request) {
	snap := h.Engine.Snapshot()
	dtos := make([]SpendDTO, len(snap.Spends))
	for i, sp := range snap.Spends {
		dtos[i] = toSpendDTO(sp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RemoveSpend removes a record into the undo slot.
func (h *Handler) RemoveSpend(w http.ResponseWriter, r *http.Request) {
	id := budget.SpendID(chi.URLParam(r, "id"))
	snap, err := h.Engine.RemoveSpend(r.Context(), id)
	h.writeResult(w, snap, err)
}

// UndoRemove restores the last removed record, if any.
func (h *Handler) UndoRemove(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.UndoRemove(r.Context())
	h.writeResult(w, snap, err)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeResult(w http.ResponseWriter, snap budget.Snapshot, err error) {
	if err != nil {
		h.writeEngineErrorWithSnapshot(w, snap, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	h.writeEngineErrorWithSnapshot(w, h.Engine.Snapshot(), err)
}

func (h *Handler) writeEngineErrorWithSnapshot(w http.ResponseWriter, snap budget.Snapshot, err error) {
	status := http.StatusInternalServerError
	switch {
	case budget.IsNotFound(err):
		status = http.StatusNotFound
	case budget.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.Log.Error().Err(err).Msg("engine operation failed")
	}

	dto := toSnapshotDTO(snap)
	writeJSON(w, status, ErrorDTO{
		Error:    err.Error(),
		Kind:     errorKind(err),
		Snapshot: &dto,
	})
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: msg, Kind: "BadRequest"})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, budget.ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, budget.ErrEmptyAmount):
		return "EmptyAmount"
	case errors.Is(err, budget.ErrInvalidSessionTransition):
		return "InvalidSessionTransition"
	case errors.Is(err, budget.ErrInvalidPeriod):
		return "InvalidPeriod"
	case errors.Is(err, budget.ErrRecalculationNotApplicable):
		return "RecalculationNotApplicable"
	case errors.Is(err, budget.ErrSpendNotFound):
		return "SpendNotFound"
	case errors.Is(err, budget.ErrNoPeriod):
		return "NoPeriod"
	default:
		return "Internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
