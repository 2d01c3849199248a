package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/checkout"
	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/store"
)

func TestDashboardWorker_RefreshesUntilCancelled(t *testing.T) {
	catalog := store.NewCatalogStore(store.SeedCatalogOptions())
	admin := store.NewAdminStore(store.SeedAdminOptions())
	w := NewDashboardWorker(service.NewDashboardService(catalog, admin), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return !admin.Analytics().GeneratedAt.IsZero() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, admin.Analytics().TotalTransactions)

	catalog.AddTransaction(models.Transaction{ID: "TRX9", Owner: "081234567890", Status: models.TrxSuccess, Amount: 10000})
	require.Eventually(t, func() bool { return admin.Analytics().TotalTransactions == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestCheckoutSweepWorker(t *testing.T) {
	m := checkout.NewManager(5*time.Millisecond, nil)
	m.Open(1, "")
	w := NewCheckoutSweepWorker(m, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}
