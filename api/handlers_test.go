/*
handlers_test.go - HTTP-level tests for the budget API

Exercises the router end to end: request parsing, engine delegation,
error-to-status mapping, and the snapshot-bearing error envelope.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*chiServer, *budget.Engine) {
	t.Helper()

	clock := func() time.Time {
		return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	p := budget.Period{
		Total:  budget.MustParseDecimal("700"),
		Start:  budget.NewDay(2025, time.March, 1),
		Finish: budget.NewDay(2025, time.March, 7),
	}
	engine := budget.NewEngine(store.NewMemory(), budget.Options{
		Clock:    clock,
		Location: time.UTC,
		Period:   &p,
	})

	h := NewHandler(engine, zerolog.Nop())
	return &chiServer{router: NewRouter(h)}, engine
}

type chiServer struct {
	router http.Handler
}

func (s *chiServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) SnapshotDTO {
	t.Helper()
	var dto SnapshotDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDTO {
	t.Helper()
	var dto ErrorDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

// =============================================================================
// BUDGET ENDPOINTS
// =============================================================================

func TestGetBudget(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/budget/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "100", snap.DailyBudget)
	assert.Equal(t, "IDLE", snap.State)
	require.NotNil(t, snap.Period)
	assert.Equal(t, "2025-03-07", snap.Period.FinishDate)
}

func TestSetBudget(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPut, "/api/budget/", SetBudgetRequest{
		Total:      "1400",
		StartDate:  "2025-03-01",
		FinishDate: "2025-03-07",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "200", snap.DailyBudget)
}

func TestSetBudget_InvalidPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPut, "/api/budget/", SetBudgetRequest{
		Total:      "100",
		StartDate:  "2025-03-07",
		FinishDate: "2025-03-01",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errDTO := decodeError(t, rec)
	assert.Equal(t, "InvalidPeriod", errDTO.Kind)
	require.NotNil(t, errDTO.Snapshot, "error carries the unchanged read model")
	assert.Equal(t, "100", errDTO.Snapshot.DailyBudget)
}

func TestSetBudget_UnparsableTotal(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPut, "/api/budget/", SetBudgetRequest{
		Total:      "seven hundred",
		StartDate:  "2025-03-01",
		FinishDate: "2025-03-07",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidAmount", decodeError(t, rec).Kind)
}

func TestTick(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/budget/tick", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Triggers.DayChanged)
	assert.False(t, resp.Triggers.Overspent)
	assert.Equal(t, "100", resp.Snapshot.DailyBudget)
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

func TestSessionFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/session/create", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CREATING_SPENT", decodeSnapshot(t, rec).State)

	rec = srv.do(t, http.MethodPut, "/api/session/amount", AmountRequest{Amount: "30"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "30", snap.CurrentSpent)
	assert.Equal(t, "70", snap.RestBudgetForToday)

	rec = srv.do(t, http.MethodPut, "/api/session/comment", CommentRequest{Comment: "lunch"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/session/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "IDLE", snap.State)
	assert.Equal(t, "30", snap.SpentFromDailyBudget)
	assert.Equal(t, 1, snap.TodaySpendCount)
	require.Len(t, snap.Spends, 1)
	assert.Equal(t, "lunch", snap.Spends[0].Comment)
}

func TestCommitFromIdle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/session/commit", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errDTO := decodeError(t, rec)
	assert.Equal(t, "InvalidSessionTransition", errDTO.Kind)
	require.NotNil(t, errDTO.Snapshot)
	assert.Empty(t, errDTO.Snapshot.Spends, "spend store untouched")
}

func TestStartEdit_UnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/session/edit/ghost", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SpendNotFound", decodeError(t, rec).Kind)
}

func TestCancelSession(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.do(t, http.MethodPost, "/api/session/create", nil)
	srv.do(t, http.MethodPut, "/api/session/amount", AmountRequest{Amount: "55"})

	rec := srv.do(t, http.MethodPost, "/api/session/cancel", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "IDLE", snap.State)
	assert.Equal(t, "0", snap.CurrentSpent)
	assert.Empty(t, snap.Spends)
}

// =============================================================================
// SPEND ENDPOINTS
// =============================================================================

func TestRemoveAndUndoSpend(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.do(t, http.MethodPost, "/api/session/create", nil)
	srv.do(t, http.MethodPut, "/api/session/amount", AmountRequest{Amount: "30"})
	rec := srv.do(t, http.MethodPost, "/api/session/commit", nil)
	id := decodeSnapshot(t, rec).Spends[0].ID

	rec = srv.do(t, http.MethodDelete, "/api/spends/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeSnapshot(t, rec).Spends)

	rec = srv.do(t, http.MethodPost, "/api/spends/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	require.Len(t, snap.Spends, 1)
	assert.Equal(t, id, snap.Spends[0].ID)
}

func TestListSpends(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.do(t, http.MethodPost, "/api/session/create", nil)
	srv.do(t, http.MethodPut, "/api/session/amount", AmountRequest{Amount: "12.50"})
	srv.do(t, http.MethodPost, "/api/session/commit", nil)

	rec := srv.do(t, http.MethodGet, "/api/spends/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var spends []SpendDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spends))
	require.Len(t, spends, 1)
	assert.Equal(t, "12.5", spends[0].Amount)
	assert.Equal(t, "2025-03-01", spends[0].Date)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
