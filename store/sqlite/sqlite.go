/*
Package sqlite persists budget engine state to SQLite.

PURPOSE:
  The engine's in-memory state is authoritative; this store keeps a full
  state image on disk so a restart can round-trip the budget period, the
  ordered spend list, and the single undo slot (or its absence). Saves are
  whole-image replacements inside one database transaction, driven from a
  snapshot subscriber outside the engine's critical section.

WHY WHOLE-IMAGE SAVES:
  State is one user's budget: one period row, tens to a few thousand
  spend rows. Replacing the image atomically is simpler than diffing and
  makes the loss window exactly "since the last save", which is the
  recovery contract the engine promises.

KEY TABLES:
  period:    single-row budget period (total, start, finish)
  spends:    ordered spend records, position column preserves commit order
  undo_slot: single-row undo holder, including its original position

WAL MODE:
  Opened with WAL so a reader (debugging, backups) never blocks the save
  path.

USAGE:
  st, err := sqlite.New("./data/budget.db")
  ...
  state, err := st.Load(ctx)          // on startup
  err = st.Save(ctx, engineState)     // after each mutation, async

SEE ALSO:
  - budget/engine.go: State type and the persistence contract
  - cmd/budgetd: the subscriber that drives Save
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// Store persists full engine state images.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Budget period (single row)
	CREATE TABLE IF NOT EXISTS period (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total TEXT NOT NULL,
		start_date TEXT NOT NULL,
		finish_date TEXT NOT NULL
	);

	-- Spend records; position preserves commit order across round-trips
	CREATE TABLE IF NOT EXISTS spends (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		amount TEXT NOT NULL,
		spend_date TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_spends_position ON spends(position);
	CREATE INDEX IF NOT EXISTS idx_spends_date ON spends(spend_date);

	-- Single-slot undo holder (single row, absent when slot is empty)
	CREATE TABLE IF NOT EXISTS undo_slot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		spend_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		amount TEXT NOT NULL,
		spend_date TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save replaces the persisted state image atomically.
func (s *Store) Save(ctx context.Context, state budget.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"period", "spends", "undo_slot"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if state.Period != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO period (id, total, start_date, finish_date) VALUES (1, ?, ?, ?)`,
			state.Period.Total.String(),
			state.Period.Start.String(),
			state.Period.Finish.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}
	}

	for i, sp := range state.Spends {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO spends (id, position, amount, spend_date, comment) VALUES (?, ?, ?, ?, ?)`,
			string(sp.ID), i, sp.Amount.String(), sp.Date.String(), sp.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to save spend %s: %w", sp.ID, err)
		}
	}

	if state.Removed != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO undo_slot (id, spend_id, position, amount, spend_date, comment) VALUES (1, ?, ?, ?, ?, ?)`,
			string(state.Removed.ID), state.RemovedAt,
			state.Removed.Amount.String(), state.Removed.Date.String(), state.Removed.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to save undo slot: %w", err)
		}
	}

	return tx.Commit()
}

// Load reads the persisted state image. A fresh database yields an empty
// state: nil period, no spends, empty undo slot.
func (s *Store) Load(ctx context.Context) (budget.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state budget.State

	row := s.db.QueryRowContext(ctx, `SELECT total, start_date, finish_date FROM period WHERE id = 1`)
	var totalStr, startStr, finishStr string
	switch err := row.Scan(&totalStr, &startStr, &finishStr); err {
	case nil:
		p, err := parsePeriod(totalStr, startStr, finishStr)
		if err != nil {
			return budget.State{}, err
		}
		state.Period = &p
	case sql.ErrNoRows:
		// No period saved yet.
	default:
		return budget.State{}, fmt.Errorf("failed to load period: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, spend_date, comment FROM spends ORDER BY position ASC`)
	if err != nil {
		return budget.State{}, fmt.Errorf("failed to load spends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, amountStr, dateStr, comment string
		if err := rows.Scan(&id, &amountStr, &dateStr, &comment); err != nil {
			return budget.State{}, fmt.Errorf("failed to scan spend: %w", err)
		}
		sp, err := parseSpend(id, amountStr, dateStr, comment)
		if err != nil {
			return budget.State{}, err
		}
		state.Spends = append(state.Spends, sp)
	}
	if err := rows.Err(); err != nil {
		return budget.State{}, fmt.Errorf("failed to load spends: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT spend_id, position, amount, spend_date, comment FROM undo_slot WHERE id = 1`)
	var slotID, slotAmount, slotDate, slotComment string
	var slotPos int
	switch err := row.Scan(&slotID, &slotPos, &slotAmount, &slotDate, &slotComment); err {
	case nil:
		sp, err := parseSpend(slotID, slotAmount, slotDate, slotComment)
		if err != nil {
			return budget.State{}, err
		}
		state.Removed = &sp
		state.RemovedAt = slotPos
	case sql.ErrNoRows:
		// Empty slot.
	default:
		return budget.State{}, fmt.Errorf("failed to load undo slot: %w", err)
	}

	return state, nil
}

// =============================================================================
// ROW PARSING
// =============================================================================

func parsePeriod(totalStr, startStr, finishStr string) (budget.Period, error) {
	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return budget.Period{}, fmt.Errorf("corrupt period total %q: %w", totalStr, err)
	}
	start, err := budget.ParseDay(startStr)
	if err != nil {
		return budget.Period{}, fmt.Errorf("corrupt period start %q: %w", startStr, err)
	}
	finish, err := budget.ParseDay(finishStr)
	if err != nil {
		return budget.Period{}, fmt.Errorf("corrupt period finish %q: %w", finishStr, err)
	}
	return budget.Period{Total: total, Start: start, Finish: finish}, nil
}

func parseSpend(id, amountStr, dateStr, comment string) (budget.Spend, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return budget.Spend{}, fmt.Errorf("corrupt spend amount %q: %w", amountStr, err)
	}
	date, err := budget.ParseDay(dateStr)
	if err != nil {
		return budget.Spend{}, fmt.Errorf("corrupt spend date %q: %w", dateStr, err)
	}
	return budget.Spend{
		ID:      budget.SpendID(id),
		Amount:  amount,
		Date:    date,
		Comment: comment,
	}, nil
}
