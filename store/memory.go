// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateMonth = errors.New("entry already exists for month")
	ErrEntryNotFound  = errors.New("entry not found")
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries map[string][]ledger.Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]ledger.Entry)}
}

// Entries returns the property's history in chronological order.
func (m *Memory) Entries(_ context.Context, property string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Entry, len(m.entries[property]))
	copy(result, m.entries[property])
	return result, nil
}

// Append adds entries atomically. A (property, month) collision fails
// the whole batch before anything is written.
func (m *Memory) Append(_ context.Context, entries []ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if _, ok := m.findLocked(e.Property, e.Month); ok {
			return fmt.Errorf("%w: %s %s", ErrDuplicateMonth, e.Property, e.Month)
		}
	}
	for _, e := range entries {
		m.insertLocked(e)
	}
	return nil
}

// AmendBasePrice rewrites one entry's base price only. Every other
// column keeps the values computed at append time.
func (m *Memory) AmendBasePrice(_ context.Context, property string, month contract.Month, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.findLocked(property, month)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrEntryNotFound, property, month)
	}
	m.entries[property][i].BasePrice = price
	return nil
}

func (m *Memory) findLocked(property string, month contract.Month) (int, bool) {
	for i, e := range m.entries[property] {
		if e.Month.Equal(month) {
			return i, true
		}
	}
	return 0, false
}

func (m *Memory) insertLocked(e ledger.Entry) {
	es := m.entries[e.Property]

	// Binary search for insertion point keeps the slice chronological.
	i := sort.Search(len(es), func(i int) bool {
		return es[i].Month.After(e.Month)
	})
	es = append(es, ledger.Entry{})
	copy(es[i+1:], es[i:])
	es[i] = e
	m.entries[e.Property] = es
}
