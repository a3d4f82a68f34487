package mocks

import (
	"sync"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// MockSessionStore keeps the session in memory
type MockSessionStore struct {
	mu      sync.RWMutex
	session *domain.Session
}

// NewMockSessionStore creates a store, optionally pre-populated
func NewMockSessionStore(session *domain.Session) *MockSessionStore {
	return &MockSessionStore{session: session}
}

// Load returns the stored session
func (m *MockSessionStore) Load() (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

// Save replaces the stored session
func (m *MockSessionStore) Save(session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.session = &copied
	return nil
}

// Clear removes the stored session
func (m *MockSessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
