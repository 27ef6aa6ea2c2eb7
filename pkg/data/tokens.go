package data

import "sync"

// TokenStore persists the access and refresh tokens between runs.
// HasAccessToken is a presence check only; expiry is not validated.
type TokenStore interface {
	Save(tokens AuthTokens) error
	Tokens() (AuthTokens, error)
	Clear() error
	HasAccessToken() bool
}

// MemoryTokens keeps tokens for the lifetime of the process.
type MemoryTokens struct {
	mu     sync.RWMutex
	tokens AuthTokens
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{}
}

func (m *MemoryTokens) Save(tokens AuthTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *MemoryTokens) Tokens() (AuthTokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens, nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = AuthTokens{}
	return nil
}

func (m *MemoryTokens) HasAccessToken() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.AccessToken != ""
}

var _ TokenStore = (*MemoryTokens)(nil)
