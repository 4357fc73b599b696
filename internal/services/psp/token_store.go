package psp

import "sync"

// TokenStore is the explicitly-owned token table backing a mock client.
// Each client gets its own store injected at construction so tests never
// share hidden global state.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]CardToken
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]CardToken)}
}

func (s *TokenStore) Put(token CardToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
}

func (s *TokenStore) Get(token string) (CardToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	return t, ok
}
