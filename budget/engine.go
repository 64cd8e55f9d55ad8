/*
engine.go - The budget engine orchestrator

PURPOSE:
  Composes the period, the spend store, the session state machine and the
  allocation calculator into the one object the view layer talks to. The
  engine is the exclusive owner of the period and the session and the sole
  writer to the spend store.

CONCURRENCY MODEL:
  One mutex serializes every mutating operation; a commit and a
  recalculation can never interleave. Read-model queries take no lock:
  after each mutation the engine swaps in an immutable snapshot that
  readers load atomically. Subscribers are notified after the mutex is
  released, on the mutating goroutine.

ERROR CONTRACT:
  Every mutating operation returns the read model. On failure the engine's
  state is untouched and the returned snapshot is the current, unchanged
  one. All errors are recoverable; see errors.go.

PERSISTENCE:
  The in-memory state is authoritative. External storage subscribes to
  snapshots and persists state images asynchronously; a crash between a
  mutation and its persisted write loses at most that window. No I/O runs
  inside the critical section.

SEE ALSO:
  - session.go: the transition rules the engine enforces
  - allocation.go: the allowance math and trigger checks
  - api/: the HTTP binding for the presentation layer
*/
package budget

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// READ MODEL
// =============================================================================

// Snapshot is the immutable read model published after every mutation.
// The view layer renders from this and nothing else.
type Snapshot struct {
	Day   Day
	State SessionState

	HasPeriod bool
	Period    Period

	// Allowance values for the current day.
	DailyBudget          decimal.Decimal
	SpentFromDailyBudget decimal.Decimal
	CurrentSpent         decimal.Decimal
	RestBudgetForToday   decimal.Decimal
	TodaySpendCount      int

	// Whole-period values.
	RemainingTotal decimal.Decimal
	DaysLeft       int
	Deficit        decimal.Decimal

	// Full spend history in commit order.
	Spends []Spend
}

// State is the full persistable engine state: everything external storage
// must round-trip. See store/sqlite.
type State struct {
	Period    *Period
	Spends    []Spend
	Removed   *Spend
	RemovedAt int
}

// =============================================================================
// ENGINE
// =============================================================================

// Options configures an Engine. The zero value is usable: wall clock,
// local timezone, one-cent overspend tolerance, no period.
type Options struct {
	Clock     Clock
	Location  *time.Location
	Tolerance decimal.Decimal
	Period    *Period
}

// Engine processes budget operations one at a time against in-memory
// state. One engine per user budget.
type Engine struct {
	mu      sync.Mutex
	store   SpendStore
	session Session
	period  Period
	hasP    bool

	clock     Clock
	loc       *time.Location
	tolerance decimal.Decimal

	// Day of the last recorded operation; day-boundary detection input.
	lastDay Day

	snapshot atomic.Pointer[Snapshot]

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewEngine creates an engine over the given store.
func NewEngine(st SpendStore, opts Options) *Engine {
	e := &Engine{
		store:     st,
		session:   NewSession(),
		clock:     opts.Clock,
		loc:       opts.Location,
		tolerance: opts.Tolerance,
		subs:      make(map[int]func(Snapshot)),
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.tolerance.IsZero() {
		e.tolerance = Cent
	}
	if opts.Period != nil {
		e.period = *opts.Period
		e.hasP = true
	}

	snap, _ := e.buildSnapshot(context.Background())
	e.lastDay = snap.Day
	e.snapshot.Store(&snap)
	return e
}

// today is evaluated at the moment of query, never cached, so a
// day-boundary crossing while the process sat idle is always seen.
func (e *Engine) today() Day {
	return DayOf(e.clock(), e.loc)
}

// Snapshot returns the latest read model. Lock-free; safe to call
// concurrently with mutations.
func (e *Engine) Snapshot() Snapshot {
	return *e.snapshot.Load()
}

// Subscribe registers a snapshot listener and returns its cancel func.
// Listeners run synchronously on the mutating goroutine after the
// mutation completed and the lock was released.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// do runs op inside the critical section, then rebuilds, publishes and
// returns the snapshot. On any error the previous snapshot is returned
// untouched and nothing is published.
func (e *Engine) do(ctx context.Context, op func(context.Context) error) (Snapshot, error) {
	e.mu.Lock()

	if err := op(ctx); err != nil {
		snap := e.unchanged()
		e.mu.Unlock()
		return snap, err
	}

	snap, err := e.buildSnapshot(ctx)
	if err != nil {
		prev := e.unchanged()
		e.mu.Unlock()
		return prev, err
	}
	e.lastDay = snap.Day
	e.snapshot.Store(&snap)
	e.mu.Unlock()

	e.notify(snap)
	return snap, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SetBudget replaces the budget period wholesale and redistributes.
func (e *Engine) SetBudget(ctx context.Context, total decimal.Decimal, start, finish Day) (Snapshot, error) {
	return e.do(ctx, func(context.Context) error {
		p, err := NewPeriod(total, start, finish)
		if err != nil {
			return err
		}
		e.period = p
		e.hasP = true
		return nil
	})
}

// StartCreate begins entering a new spend amount.
func (e *Engine) StartCreate(ctx context.Context) (Snapshot, error) {
	return e.do(ctx, func(context.Context) error {
		return e.session.StartCreate()
	})
}

// StartEdit reopens the identified record for editing.
func (e *Engine) StartEdit(ctx context.Context, id SpendID) (Snapshot, error) {
	return e.do(ctx, func(ctx context.Context) error {
		record, err := e.store.Get(ctx, id)
		if err != nil {
			return err
		}
		return e.session.StartEdit(record)
	})
}

// UpdateAmount replaces the amount being entered.
func (e *Engine) UpdateAmount(ctx context.Context, amount decimal.Decimal) (Snapshot, error) {
	return e.do(ctx, func(context.Context) error {
		return e.session.UpdateAmount(amount)
	})
}

// UpdateComment replaces the comment being entered.
func (e *Engine) UpdateComment(ctx context.Context, comment string) (Snapshot, error) {
	return e.do(ctx, func(context.Context) error {
		return e.session.UpdateComment(comment)
	})
}

// Commit confirms the entered amount: the session's amount moves
// atomically into the spend store and the allowance is recomputed. A
// create commit appends a record dated today; an edit commit replaces the
// original record in place, same id, original date.
func (e *Engine) Commit(ctx context.Context) (Snapshot, error) {
	return e.do(ctx, func(ctx context.Context) error {
		editing := e.session.Editing()
		if err := e.session.BeginCommit(); err != nil {
			return err
		}

		// COMMITTING_SPENT is transient: the side effects run inside the
		// same critical section and the session is back to IDLE before
		// anyone can observe it. Commit is not cancellable once begun.
		if editing {
			replacement := Spend{
				ID:      e.session.EditID,
				Amount:  e.session.Amount,
				Date:    e.session.EditDate,
				Comment: e.session.Comment,
			}
			if err := e.store.Replace(ctx, replacement); err != nil {
				e.session.State = StateEditSpent
				return err
			}
		} else {
			record, err := NewSpend(e.session.Amount, e.today(), e.session.Comment)
			if err != nil {
				e.session.State = StateCreatingSpent
				return err
			}
			if err := e.store.Add(ctx, record); err != nil {
				e.session.State = StateCreatingSpent
				return err
			}
		}

		e.session.FinishCommit()
		return nil
	})
}

// CancelSession discards the entered amount without touching the store.
// Always safe; a no-op when nothing is being entered.
func (e *Engine) CancelSession(ctx context.Context) (Snapshot, error) {
	return e.do(ctx, func(context.Context) error {
		e.session.Cancel()
		return nil
	})
}

// RemoveSpend moves the record into the undo slot, displacing any
// previous slot contents.
func (e *Engine) RemoveSpend(ctx context.Context, id SpendID) (Snapshot, error) {
	return e.do(ctx, func(ctx context.Context) error {
		_, err := e.store.Remove(ctx, id)
		return err
	})
}

// UndoRemove restores the most recently removed record. Silently a no-op
// when the slot is empty or already consumed.
func (e *Engine) UndoRemove(ctx context.Context) (Snapshot, error) {
	return e.do(ctx, func(ctx context.Context) error {
		_, _, err := e.store.UndoLastRemove(ctx)
		return err
	})
}

// Recalculate redistributes the current remaining total evenly over the
// remaining days. Idempotent: with no new spends and no day change, a
// second call yields the identical allowance.
func (e *Engine) Recalculate(ctx context.Context) (Snapshot, error) {
	return e.do(ctx, func(ctx context.Context) error {
		if !e.hasP {
			return ErrNoPeriod
		}

		today := e.today()
		spentBefore, err := e.store.SpentBefore(ctx, today)
		if err != nil {
			return err
		}
		remaining := e.period.Total.Sub(spentBefore)
		if !today.Before(e.period.Finish) && remaining.IsZero() {
			return ErrRecalculationNotApplicable
		}
		return nil
	})
}

// Tick supplies "now" to the engine: the on-resume input. It reports
// which recalculation triggers currently hold, records the new day, and
// republishes the read model.
func (e *Engine) Tick(ctx context.Context) (Snapshot, TriggerCheck, error) {
	var tc TriggerCheck
	tc.Shortfall = decimal.Zero

	snap, err := e.do(ctx, func(ctx context.Context) error {
		if !e.hasP {
			return nil
		}
		totalSpent, err := e.store.TotalSpent(ctx)
		if err != nil {
			return err
		}
		tc = CheckTriggers(e.period, totalSpent, e.lastDay, e.today(), e.tolerance)
		return nil
	})
	return snap, tc, err
}

// State returns the persistable engine state for external storage.
func (e *Engine) State(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	spends, err := e.store.List(ctx)
	if err != nil {
		return State{}, err
	}
	st := State{Spends: spends}
	if e.hasP {
		p := e.period
		st.Period = &p
	}
	removed, at, ok, err := e.store.RemovedSlot(ctx)
	if err != nil {
		return State{}, err
	}
	if ok {
		r := removed
		st.Removed = &r
		st.RemovedAt = at
	}
	return st, nil
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

// unchanged returns the current snapshot for error paths. Caller holds mu.
func (e *Engine) unchanged() Snapshot {
	return *e.snapshot.Load()
}

func (e *Engine) buildSnapshot(ctx context.Context) (Snapshot, error) {
	today := e.today()

	snap := Snapshot{
		Day:                  today,
		State:                e.session.State,
		HasPeriod:            e.hasP,
		Period:               e.period,
		DailyBudget:          decimal.Zero,
		SpentFromDailyBudget: decimal.Zero,
		CurrentSpent:         decimal.Zero,
		RestBudgetForToday:   decimal.Zero,
		RemainingTotal:       decimal.Zero,
		Deficit:              decimal.Zero,
	}
	if snap.State == "" {
		snap.State = StateIdle
	}

	spends, err := e.store.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Spends = spends

	spentToday, err := e.store.SpentOn(ctx, today)
	if err != nil {
		return Snapshot{}, err
	}
	snap.SpentFromDailyBudget = spentToday

	count, err := e.store.CountOn(ctx, today)
	if err != nil {
		return Snapshot{}, err
	}
	snap.TodaySpendCount = count

	if e.session.Entering() {
		snap.CurrentSpent = e.session.Amount
	}

	if !e.hasP {
		return snap, nil
	}

	spentBefore, err := e.store.SpentBefore(ctx, today)
	if err != nil {
		return Snapshot{}, err
	}

	alloc := Allocate(e.period, spentBefore, today)
	snap.DailyBudget = alloc.DailyBudget
	snap.DaysLeft = alloc.DaysLeft
	snap.RemainingTotal = alloc.Remaining
	snap.Deficit = alloc.Deficit

	// May legally go negative: overspend is a trigger, not an error.
	snap.RestBudgetForToday = alloc.DailyBudget.Sub(spentToday).Sub(snap.CurrentSpent)

	return snap, nil
}
