// Package session holds the operator's selector state: the unit/date/market
// tuple every data fetch is keyed by, plus display preferences. Loading and
// saving happen only at the HTTP boundary; the pipeline receives the state
// as a value, never reaches into storage itself.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State is the durable per-operator selection. It is the only data that
// survives across submissions.
type State struct {
	UnitID           string `json:"unit_id"`
	Date             string `json:"date"`
	Market           string `json:"market"`
	ShowAvailability bool   `json:"show_availability"`
	ShowPrices       bool   `json:"show_prices"`
}

// Default is the state of a fresh session before the operator picks anything.
func Default() State {
	return State{Market: "MDA", ShowAvailability: true}
}

// Store persists session state keyed by token.
type Store interface {
	LoadSession(ctx context.Context, token uuid.UUID) (State, bool, error)
	SaveSession(ctx context.Context, token uuid.UUID, state State) error
}

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]State
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]State)}
}

// LoadSession returns the stored state and whether the token was known.
func (m *MemoryStore) LoadSession(_ context.Context, token uuid.UUID) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[token]
	if !ok {
		return Default(), false, nil
	}
	return state, true, nil
}

// SaveSession stores the state under the token.
func (m *MemoryStore) SaveSession(_ context.Context, token uuid.UUID, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = state
	return nil
}
