package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return NewTokenStore(rc), mr
}

func TestTokenStore_SaveGetRevoke(t *testing.T) {
	s, _ := newTestTokenStore(t)
	ctx := context.Background()

	rec := &RefreshRecord{
		ID:        "rt_1",
		SessionID: "sid-1",
		Subject:   "08123456789",
		Kind:      "user",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "rt_1")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", got.SessionID)
	assert.Equal(t, "user", got.Kind)

	require.NoError(t, s.RevokeSession(ctx, "sid-1"))
	_, err = s.Get(ctx, "rt_1")
	assert.ErrorIs(t, err, ErrRefreshNotFound)

	assert.NoError(t, s.RevokeSession(ctx, "sid-unknown"))
}

func TestTokenStore_Expires(t *testing.T) {
	s, mr := newTestTokenStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &RefreshRecord{ID: "rt_2", SessionID: "sid-2", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "rt_2")
	assert.ErrorIs(t, err, ErrRefreshNotFound)
}

func TestTokenStore_RejectsExpiredRecord(t *testing.T) {
	s, _ := newTestTokenStore(t)
	err := s.Save(context.Background(), &RefreshRecord{ID: "rt_3", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}
