package storage

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryStore keeps sessions in process memory. Used for local runs without Redis and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.PersistedSession
	tokens   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.PersistedSession),
		tokens:   make(map[string]string),
	}
}

func (m *MemoryStore) LoadSession(_ context.Context, key string) (*domain.PersistedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return &session, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, key string, session *domain.PersistedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *session
	if session.User != nil {
		user := *session.User
		stored.User = &user
	}
	m.sessions[key] = stored
	return nil
}

func (m *MemoryStore) ClearSession(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) LoadToken(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[key]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

func (m *MemoryStore) SaveToken(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *MemoryStore) ClearToken(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}
