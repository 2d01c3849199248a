package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilders(t *testing.T) {
	assert.Equal(t, "/checkout/7", Checkout(7))
	assert.Equal(t, "/transactions/TRX1700000000000", TransactionDetail("TRX1700000000000"))
}

func TestProtected(t *testing.T) {
	assert.True(t, Protected("/transactions"))
	assert.True(t, Protected("/transactions/TRX001"))
	assert.True(t, Protected("/profile"))
	assert.False(t, Protected("/"))
	assert.False(t, Protected("/checkout/1"))
	assert.False(t, Protected("/transactionsx"))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin("/admin"))
	assert.True(t, IsAdmin("/admin/vouchers"))
	assert.False(t, IsAdmin("/administrator"))
	assert.False(t, IsAdmin("/login"))
}
