package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and embedded use.
type MemoryStore struct {
	mu      sync.Mutex
	current *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.Load.
func (m *MemoryStore) Load(_ context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotFound
	}
	return m.current.Clone(), nil
}

// Save implements Store.Save.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = s.Clone()
	return nil
}

// Clear implements Store.Clear.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
