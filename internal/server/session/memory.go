package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

// MemoryStore is the in-process Store and NonceStore used when no Redis URL
// is configured. State is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.AuthSession
	nonces   map[string]time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.AuthSession),
		nonces:   make(map[string]time.Time),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s *models.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Put(_ context.Context, nonce string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for n, exp := range m.nonces {
		if !now.Before(exp) {
			delete(m.nonces, n)
		}
	}
	m.nonces[nonce] = now.Add(ttl)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.nonces[nonce]
	if !ok {
		return false, nil
	}
	delete(m.nonces, nonce)
	return m.now().Before(exp), nil
}
