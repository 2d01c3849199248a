package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

func TestDashboardService_AnalyticsComputedOnDemand(t *testing.T) {
	catalog, admin := newTestStores()
	svc := NewDashboardService(catalog, admin)

	a := svc.Analytics()
	require.False(t, a.GeneratedAt.IsZero())
	assert.Equal(t, 2, a.TotalTransactions)
	assert.Equal(t, pinned, a.GeneratedAt)
}

func TestDashboardService_TransactionsFilterAndPage(t *testing.T) {
	catalog, admin := newTestStores()
	svc := NewDashboardService(catalog, admin)

	all := svc.Transactions(TransactionFilter{})
	assert.Equal(t, 2, all.TotalItems)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 50, all.Limit)
	assert.Equal(t, "TRX002", all.Transactions[0].ID)

	pending := svc.Transactions(TransactionFilter{Status: models.TrxPending})
	require.Len(t, pending.Transactions, 1)
	assert.Equal(t, "TRX002", pending.Transactions[0].ID)

	search := svc.Transactions(TransactionFilter{Search: "mobile legends"})
	require.Len(t, search.Transactions, 1)
	assert.Equal(t, "TRX001", search.Transactions[0].ID)

	second := svc.Transactions(TransactionFilter{Page: 2, Limit: 1})
	assert.Equal(t, 2, second.TotalItems)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, "TRX001", second.Transactions[0].ID)

	beyond := svc.Transactions(TransactionFilter{Page: 5, Limit: 1})
	assert.Empty(t, beyond.Transactions)
}

func TestDashboardService_UpdateTransactionStatus(t *testing.T) {
	catalog, admin := newTestStores()
	svc := NewDashboardService(catalog, admin)
	before := svc.Analytics()

	tx, err := svc.UpdateTransactionStatus("TRX002", models.TrxSuccess)
	require.NoError(t, err)
	assert.Equal(t, models.TrxSuccess, tx.Status)

	pending := svc.Transactions(TransactionFilter{Status: models.TrxPending})
	assert.Empty(t, pending.Transactions)
	assert.Equal(t, before.TotalSales+15000, svc.Analytics().TotalSales)

	_, err = svc.UpdateTransactionStatus("TRX999", models.TrxFailed)
	assert.ErrorIs(t, err, utils.ErrTransactionNotFound)
}
