// Package store provides SpendStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// MEMORY STORE - Authoritative in-memory implementation
// =============================================================================

// Memory keeps spend records in commit order with a single undo slot.
// The engine serializes writes, but reads may come from other goroutines
// (tests, persistence snapshots), so access is mutex-guarded anyway.
type Memory struct {
	mu      sync.RWMutex
	records []budget.Spend
	byID    map[budget.SpendID]int

	// Single-slot undo holder. A second remove overwrites it.
	removed    budget.Spend
	removedAt  int
	hasRemoved bool
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[budget.SpendID]int)}
}

// Restore seeds the store from a persisted state image. Positions are
// taken from slice order; the undo slot is restored when ok is true.
func Restore(records []budget.Spend, removed budget.Spend, removedAt int, ok bool) *Memory {
	m := NewMemory()
	m.records = make([]budget.Spend, len(records))
	copy(m.records, records)
	m.reindex()
	if ok {
		m.removed = removed
		m.removedAt = removedAt
		m.hasRemoved = true
	}
	return m
}

func (m *Memory) Add(_ context.Context, s budget.Spend) error {
	if !s.Amount.IsPositive() {
		return &budget.AmountError{Input: s.Amount.String(), Reason: "not positive"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = len(m.records)
	m.records = append(m.records, s)
	return nil
}

func (m *Memory) Replace(_ context.Context, s budget.Spend) error {
	if !s.Amount.IsPositive() {
		return &budget.AmountError{Input: s.Amount.String(), Reason: "not positive"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[s.ID]
	if !ok {
		return budget.ErrSpendNotFound
	}
	m.records[i] = s
	return nil
}

func (m *Memory) Remove(_ context.Context, id budget.SpendID) (budget.Spend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byID[id]
	if !ok {
		return budget.Spend{}, budget.ErrSpendNotFound
	}

	// Overwrites any previous slot contents; that record is gone for good.
	m.removed = m.records[i]
	m.removedAt = i
	m.hasRemoved = true

	m.records = append(m.records[:i], m.records[i+1:]...)
	m.reindex()
	return m.removed, nil
}

func (m *Memory) UndoLastRemove(_ context.Context) (budget.Spend, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasRemoved {
		return budget.Spend{}, false, nil
	}

	i := m.removedAt
	if i > len(m.records) {
		i = len(m.records)
	}
	m.records = append(m.records, budget.Spend{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = m.removed
	m.reindex()

	restored := m.removed
	m.removed = budget.Spend{}
	m.hasRemoved = false
	return restored, true, nil
}

func (m *Memory) Get(_ context.Context, id budget.SpendID) (budget.Spend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return budget.Spend{}, budget.ErrSpendNotFound
	}
	return m.records[i], nil
}

func (m *Memory) List(_ context.Context) ([]budget.Spend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]budget.Spend, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *Memory) SpentOn(_ context.Context, d budget.Day) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := decimal.Zero
	for _, s := range m.records {
		if s.Date.Equal(d) {
			sum = sum.Add(s.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) CountOn(_ context.Context, d budget.Day) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.records {
		if s.Date.Equal(d) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) SpentBefore(_ context.Context, d budget.Day) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := decimal.Zero
	for _, s := range m.records {
		if s.Date.Before(d) {
			sum = sum.Add(s.Amount)
		}
	}
	return sum, nil
}

func (m *Memory) TotalSpent(_ context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := decimal.Zero
	for _, s := range m.records {
		sum = sum.Add(s.Amount)
	}
	return sum, nil
}

func (m *Memory) RemovedSlot(_ context.Context) (budget.Spend, int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.removed, m.removedAt, m.hasRemoved, nil
}

func (m *Memory) reindex() {
	m.byID = make(map[budget.SpendID]int, len(m.records))
	for i, s := range m.records {
		m.byID[s.ID] = i
	}
}
