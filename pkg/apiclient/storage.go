package apiclient

import "sync"

// TokenStorage holds the bearer token pair between requests.
type TokenStorage interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string)
	SetTokens(access, refresh string)
	Clear()
}

// MemoryStorage is a TokenStorage that lives as long as the process,
// matching the lifetime of browser session storage.
type MemoryStorage struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStorage) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStorage) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
}

func (s *MemoryStorage) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
