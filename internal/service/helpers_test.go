package service

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/cache"
	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// pinned is inside every seeded voucher's validity window.
var pinned = time.Date(2025, 10, 1, 12, 0, 0, 0, utils.WIB)

func pinnedClock() time.Time { return pinned }

func newTestTokenService(t *testing.T) (*TokenService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return NewTokenService("test-secret", 15*time.Minute, 24*time.Hour, cache.NewTokenStore(rc)), mr
}

func newTestStores() (*store.CatalogStore, *store.AdminStore) {
	copts := store.SeedCatalogOptions()
	copts.Clock = pinnedClock
	aopts := store.SeedAdminOptions()
	aopts.Clock = pinnedClock
	return store.NewCatalogStore(copts), store.NewAdminStore(aopts)
}

func gameAccount(game string) models.GameAccount {
	return models.GameAccount{Game: game, GameID: "12345678", Server: "2001"}
}
