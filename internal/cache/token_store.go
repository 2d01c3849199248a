package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRefreshNotFound is returned when a refresh token is unknown or revoked.
var ErrRefreshNotFound = errors.New("refresh token not found")

// RefreshRecord is what the server remembers about an issued refresh token.
type RefreshRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Subject   string    `json:"subject"`
	Kind      string    `json:"kind"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenStore tracks live refresh tokens so logout can revoke them.
type TokenStore struct {
	redis *RedisClient
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(redis *RedisClient) *TokenStore {
	return &TokenStore{redis: redis}
}

// keyByID returns the primary Redis key for a refresh token.
func (s *TokenStore) keyByID(id string) string {
	return fmt.Sprintf("refresh:id:%s", id)
}

// keyBySession returns the secondary key pointing a session at its token.
func (s *TokenStore) keyBySession(sessionID string) string {
	return fmt.Sprintf("refresh:sid:%s", sessionID)
}

// Save stores rec until its expiry.
// Primary key: refresh:id:{id}
// Secondary key: refresh:sid:{sessionId} -> id
func (s *TokenStore) Save(ctx context.Context, rec *RefreshRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token %s already expired", rec.ID)
	}

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh record: %w", err)
	}

	if err := s.redis.Set(ctx, s.keyByID(rec.ID), string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set refresh key: %w", err)
	}
	if err := s.redis.Set(ctx, s.keyBySession(rec.SessionID), rec.ID, ttl); err != nil {
		return fmt.Errorf("failed to set session key: %w", err)
	}
	return nil
}

// Get returns the record for id.
func (s *TokenStore) Get(ctx context.Context, id string) (*RefreshRecord, error) {
	jsonData, err := s.redis.Get(ctx, s.keyByID(id))
	if errors.Is(err, ErrCacheMiss) {
		return nil, ErrRefreshNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec RefreshRecord
	if err := json.Unmarshal([]byte(jsonData), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh record: %w", err)
	}
	return &rec, nil
}

// RevokeSession deletes the refresh token issued to sessionID, if any.
func (s *TokenStore) RevokeSession(ctx context.Context, sessionID string) error {
	id, err := s.redis.Get(ctx, s.keyBySession(sessionID))
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.redis.Delete(ctx, s.keyByID(id), s.keyBySession(sessionID))
}
