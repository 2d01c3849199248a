package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/cache"
	"github.com/GTDGit/gtd_storefront/internal/checkout"
	"github.com/GTDGit/gtd_storefront/internal/config"
	"github.com/GTDGit/gtd_storefront/internal/handler"
	"github.com/GTDGit/gtd_storefront/internal/metrics"
	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/sse"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

var pinned = time.Date(2025, 10, 1, 12, 0, 0, 0, utils.WIB)

type envelope struct {
	Success bool             `json:"success"`
	Code    int              `json:"code"`
	Data    json.RawMessage  `json:"data"`
	Error   *utils.ErrorInfo `json:"error"`
	Meta    map[string]any   `json:"meta"`
}

type testServer struct {
	router *gin.Engine
	admin  *store.AdminStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	clock := func() time.Time { return pinned }
	copts := store.SeedCatalogOptions()
	copts.Clock = clock
	aopts := store.SeedAdminOptions()
	aopts.Clock = clock
	catalog := store.NewCatalogStore(copts)
	admin := store.NewAdminStore(aopts)

	tokens := service.NewTokenService("test-secret", 15*time.Minute, 24*time.Hour, cache.NewTokenStore(rc))
	authSvc, err := service.NewAuthService(store.NewSessionRegistry(), catalog, tokens, service.DemoCustomers())
	require.NoError(t, err)
	adminAuthSvc, err := service.NewAdminAuthService(store.NewAdminSessionRegistry(), admin, tokens, service.DemoAdminPasswords())
	require.NoError(t, err)

	m := metrics.New(config.MetricsConfig{Namespace: "test"}, nil)
	catalogSvc := service.NewCatalogService(catalog)
	checkoutSvc := service.NewCheckoutService(catalog, admin, checkout.NewManager(time.Hour, clock), service.CheckoutOptions{
		BankFee:  2500,
		Observer: m,
		Clock:    clock,
	})
	limiter := middleware.NewInvalidAuthRateLimiter(100, time.Minute)
	hub := sse.NewHub()

	h := &Handlers{
		Health:           handler.NewHealthHandler(map[string]handler.Pinger{"redis": rc, "ledger": nil}),
		Config:           handler.NewConfigHandler("https://api.example.com"),
		Auth:             handler.NewAuthHandler(authSvc, limiter),
		Product:          handler.NewProductHandler(catalogSvc),
		GameAccount:      handler.NewGameAccountHandler(catalogSvc),
		Checkout:         handler.NewCheckoutHandler(checkoutSvc),
		Transaction:      handler.NewTransactionHandler(catalogSvc),
		AdminAuth:        handler.NewAdminAuthHandler(adminAuthSvc, limiter),
		AdminTransaction: handler.NewAdminTransactionHandler(service.NewDashboardService(catalog, admin)),
		AdminCatalog:     handler.NewAdminCatalogHandler(service.NewAdminCatalogService(admin, adminAuthSvc, nil)),
		SSE:              handler.NewSSEHandler(hub, adminAuthSvc),
	}
	mw := &Middlewares{
		Auth:      middleware.NewAuthMiddleware(authSvc, limiter),
		AdminAuth: middleware.NewAdminAuthMiddleware(adminAuthSvc, limiter),
	}
	return &testServer{router: New(h, mw, Options{Metrics: m}), admin: admin}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) login(t *testing.T, path string, body any) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Tokens.AccessToken)
	return data.Tokens.AccessToken
}

func TestRouter_NotFoundScopes(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/v1/admin/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ADMIN_NOT_FOUND", env.Error.Code)

	w, env = s.do(t, http.MethodGet, "/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/v1/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"apiUrl":"https://api.example.com"}`, string(env.Data))

	w, env = s.do(t, http.MethodGet, "/v1/products?search=free", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Free Fire 70 Diamond", products[0].Name)

	w, env = s.do(t, http.MethodGet, "/v1/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Error.Code)

	w, env = s.do(t, http.MethodGet, "/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"redis":"connected"`)
	assert.Contains(t, string(env.Data), `"ledger":"disabled"`)
}

func TestRouter_ProtectedRoutesNeedLogin(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/profile", "/v1/transactions", "/v1/game-accounts"} {
		w, env := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "LOGIN_REQUIRED", env.Error.Code, path)
		assert.Equal(t, "/login", env.Error.Details["redirect"], path)
	}
}

func TestRouter_CustomerCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "/v1/auth/login", map[string]string{"phone": "08123456789", "password": "password"})

	w, env := s.do(t, http.MethodGet, "/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"isLoggedIn":true`)

	w, env = s.do(t, http.MethodPost, "/v1/checkout/1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID      string            `json:"id"`
		Prefill map[string]string `json:"prefill"`
		Quote   struct {
			Total int64 `json:"total"`
		} `json:"quote"`
		Voucher struct {
			State  string `json:"state"`
			Reason string `json:"reason"`
		} `json:"voucher"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "08123456789", view.Prefill["whatsapp"])
	base := "/v1/checkout/sessions/" + view.ID

	w, _ = s.do(t, http.MethodPut, base+"/payment-method", "", map[string]string{"paymentMethod": "bca"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, base+"/voucher", "", map[string]string{"code": "save5k"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "applied", view.Voucher.State)
	assert.Equal(t, int64(17500), view.Quote.Total)

	w, env = s.do(t, http.MethodPost, base+"/submit", "", map[string]any{"whatsapp": "0812"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "gameAccount")
	assert.Contains(t, env.Error.Details, "whatsapp")

	w, env = s.do(t, http.MethodPost, base+"/submit", "", map[string]any{
		"fields":   map[string]string{"gameAccount": "12345678", "gameZone": "2001"},
		"whatsapp": "081234567890",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Transaction struct {
			ID     string `json:"id"`
			Amount int64  `json:"amount"`
		} `json:"transaction"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(17500), result.Transaction.Amount)
	assert.Equal(t, "/transactions/"+result.Transaction.ID, result.Redirect)

	v, ok := s.admin.GetVoucher(2)
	require.True(t, ok)
	assert.Equal(t, 13, v.UsedCount)

	w, env = s.do(t, http.MethodGet, "/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), result.Transaction.ID)

	w, _ = s.do(t, http.MethodGet, "/v1"+result.Redirect, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CHECKOUT_NOT_FOUND", env.Error.Code)
}

func TestRouter_GuestCheckoutAndRejectedVoucher(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/v1/checkout/2", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view struct {
		ID      string `json:"id"`
		Voucher struct {
			State  string `json:"state"`
			Reason string `json:"reason"`
		} `json:"voucher"`
		Quote struct {
			Total int64 `json:"total"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	base := "/v1/checkout/sessions/" + view.ID

	w, env = s.do(t, http.MethodPost, base+"/voucher", "", map[string]string{"code": "SAVE5K"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "rejected", view.Voucher.State)
	assert.Equal(t, int64(15000), view.Quote.Total)

	w, env = s.do(t, http.MethodPost, base+"/submit", "", map[string]any{
		"fields":        map[string]string{"gameAccount": "555666777"},
		"whatsapp":      "081298765432",
		"paymentMethod": "gopay",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))

	w, _ = s.do(t, http.MethodGet, "/v1"+result.Redirect+"?whatsapp=081298765432", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/v1"+result.Redirect+"?whatsapp=081200000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, env = s.do(t, http.MethodGet, "/v1"+result.Redirect, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "LOGIN_REQUIRED", env.Error.Code)
}

func TestRouter_GuestLookupWithCountryCode(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/v1/checkout/2", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))

	w, env = s.do(t, http.MethodPost, "/v1/checkout/sessions/"+view.ID+"/submit", "", map[string]any{
		"fields":        map[string]string{"gameAccount": "555666777"},
		"whatsapp":      "6281234567890",
		"paymentMethod": "gopay",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Transaction struct {
			WhatsApp string `json:"whatsapp"`
		} `json:"transaction"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "081234567890", result.Transaction.WhatsApp)

	for _, number := range []string{"6281234567890", "081234567890"} {
		w, _ = s.do(t, http.MethodGet, "/v1"+result.Redirect+"?whatsapp="+number, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, number)
	}
}

func TestRouter_AdminRoleGate(t *testing.T) {
	s := newTestServer(t)
	operator := s.login(t, "/v1/admin/auth/login", map[string]string{"username": "operator", "password": "operator123"})
	super := s.login(t, "/v1/admin/auth/login", map[string]string{"username": "admin", "password": "admin123"})

	w, env := s.do(t, http.MethodGet, "/v1/admin/users", operator, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/v1/admin/users", super, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/v1/admin/dashboard", operator, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodDelete, "/v1/admin/users/1", super, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CANNOT_DELETE_SELF", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/v1/admin/vouchers", operator, map[string]any{
		"code": "save5k", "type": "fixed", "value": 1000, "description": "dup",
		"applicationType": "all", "quota": 10, "startDate": "2025-10-01", "endDate": "2025-10-31", "status": "active",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CODE", env.Error.Code)

	w, env = s.do(t, http.MethodGet, "/v1/admin/transactions?limit=1", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Meta["pagination"].(map[string]any)["totalItems"])

	w, env = s.do(t, http.MethodPost, "/v1/admin/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestRouter_AdminTransactionStatus(t *testing.T) {
	s := newTestServer(t)
	operator := s.login(t, "/v1/admin/auth/login", map[string]string{"username": "operator", "password": "operator123"})

	w, env := s.do(t, http.MethodPut, "/v1/admin/transactions/TRX002/status", operator, map[string]string{"status": "success"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tx struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, "TRX002", tx.ID)
	assert.Equal(t, "success", tx.Status)

	w, env = s.do(t, http.MethodGet, "/v1/admin/transactions?status=pending", operator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, env.Meta["pagination"].(map[string]any)["totalItems"])

	w, env = s.do(t, http.MethodPut, "/v1/admin/transactions/TRX002/status", operator, map[string]string{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = s.do(t, http.MethodPut, "/v1/admin/transactions/TRX999/status", operator, map[string]string{"status": "failed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TRANSACTION_NOT_FOUND", env.Error.Code)

	w, _ = s.do(t, http.MethodPut, "/v1/admin/transactions/TRX002/status", "", map[string]string{"status": "failed"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/v1/categories", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",route="/v1/categories",status="200"} 1`)
}
