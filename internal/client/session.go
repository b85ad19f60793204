package client

import "sync"

// TokenStore holds the session token between requests. Implementations must
// be safe for concurrent use: form pages fire requests in parallel.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryStore is the default in-process token store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
