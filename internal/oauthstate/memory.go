package oauthstate

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps states in process memory. Suitable for a single instance.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Save records the state until ttl elapses
func (s *MemoryStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.states {
		if !now.Before(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

// Consume removes the state, reporting whether it was still valid
func (s *MemoryStore) Consume(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return s.now().Before(exp), nil
}
