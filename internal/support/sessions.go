package support

import (
	"context"
	"sync"
)

type memorySessions struct {
	mu    sync.RWMutex
	items map[string]*Session
}

// NewMemorySessions keeps widget sessions in process memory.
func NewMemorySessions() SessionStore {
	return &memorySessions{items: make(map[string]*Session)}
}

func (m *memorySessions) Get(_ context.Context, userID string) (*Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.items[userID]
	if !ok {
		return nil, false, nil
	}
	return s.clone(), true, nil
}

func (m *memorySessions) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[s.UserID] = s.clone()
	return nil
}
