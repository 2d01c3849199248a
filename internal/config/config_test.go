package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIURL_Priority(t *testing.T) {
	assert.Equal(t, "https://runtime", ResolveAPIURL("https://runtime", "https://build", "https://env"))
	assert.Equal(t, "https://build", ResolveAPIURL("", "https://build", "https://env"))
	assert.Equal(t, "https://env", ResolveAPIURL("", "", "https://env"))
	assert.Equal(t, DefaultAPIURL, ResolveAPIURL("", "", ""))
	assert.Equal(t, DefaultAPIURL, ResolveAPIURL())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "")
	t.Setenv("APP_CONFIG_API_URL", "")
	t.Setenv("VITE_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, int64(2500), cfg.Checkout.BankFee)
	assert.Equal(t, 1500*time.Millisecond, cfg.Checkout.VoucherDelay)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.False(t, cfg.DB.Enabled())
}

func TestLoad_RuntimeAPIURLWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_CONFIG_API_URL", "https://api.example.com")
	t.Setenv("VITE_API_URL", "https://build.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("CHECKOUT_VOUCHER_DELAY", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "CHECKOUT_VOUCHER_DELAY")
	})
	t.Run("incomplete database", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_USER", "")
		_, err := Load()
		assert.ErrorContains(t, err, "database configuration incomplete")
	})
}

func TestLoad_CORSHosts(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("CORS_ALLOWED_HOSTS", " shop.example.com, ,admin.example.com ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"shop.example.com", "admin.example.com"}, cfg.CORSHosts)
	assert.Equal(t, 5*time.Minute, cfg.Worker.SweepInterval)
}
