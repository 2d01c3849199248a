package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

func TestCatalogService_Products(t *testing.T) {
	catalog, _ := newTestStores()
	svc := NewCatalogService(catalog)

	assert.Len(t, svc.Products(""), 4)
	found := svc.Products("free")
	require.Len(t, found, 2)
	for _, p := range found {
		assert.Equal(t, "Free Fire", p.Category)
	}

	_, err := svc.Product(404)
	assert.ErrorIs(t, err, utils.ErrProductNotFound)

	page, err := svc.LoadMore(context.Background())
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Len(t, svc.Products(""), 5)
}

func TestCatalogService_GameAccounts(t *testing.T) {
	catalog, _ := newTestStores()
	svc := NewCatalogService(catalog)

	_, err := svc.AddGameAccount("sid", GameAccountInput{Game: "Free Fire"})
	ve, ok := utils.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "gameId")
	assert.Contains(t, ve.Fields, "server")

	acc, err := svc.AddGameAccount("sid", GameAccountInput{Game: "Free Fire", GameID: "123", Server: "SEA"})
	require.NoError(t, err)
	assert.Empty(t, svc.GameAccounts("other"), "accounts are scoped to their session")

	server := "NA"
	got, err := svc.UpdateGameAccount("sid", acc.ID, store.GameAccountPatch{Server: &server})
	require.NoError(t, err)
	assert.Equal(t, "NA", got.Server)
	assert.Equal(t, "123", got.GameID)

	_, err = svc.UpdateGameAccount("sid", "nope", store.GameAccountPatch{Server: &server})
	assert.ErrorIs(t, err, utils.ErrGameAccountNotFound)

	require.NoError(t, svc.DeleteGameAccount("sid", acc.ID))
	assert.ErrorIs(t, svc.DeleteGameAccount("sid", acc.ID), utils.ErrGameAccountNotFound)
}

func TestCatalogService_Transactions(t *testing.T) {
	catalog, _ := newTestStores()
	svc := NewCatalogService(catalog)

	txs := svc.Transactions(store.DemoCustomerPhone)
	require.Len(t, txs, 2)
	assert.Equal(t, "TRX002", txs[0].ID)

	_, err := svc.Transaction(store.DemoCustomerPhone, "TRX001")
	require.NoError(t, err)
	_, err = svc.Transaction("081111111111", "TRX001")
	assert.ErrorIs(t, err, utils.ErrTransactionNotFound, "other customers' transactions are hidden")

	more, err := svc.LoadMoreTransactions(context.Background(), store.DemoCustomerPhone)
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Len(t, svc.Transactions(store.DemoCustomerPhone), 3)
	assert.Equal(t, more[0].ID, svc.Transactions(store.DemoCustomerPhone)[2].ID)
}
