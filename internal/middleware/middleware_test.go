package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCustomerAuth struct{}

func (fakeCustomerAuth) Authenticate(token string) (*service.Claims, *store.Session, error) {
	if token != "good" {
		return nil, nil, utils.ErrInvalidToken
	}
	sess := store.NewSession()
	sess.Login(models.User{Name: "Demo User", Phone: "08123456789"})
	return &service.Claims{SessionID: "sid-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "08123456789"}}, sess, nil
}

type fakeAdminAuth struct{}

func (fakeAdminAuth) Authenticate(token string) (*service.Claims, models.AdminIdentity, error) {
	switch token {
	case "super":
		return &service.Claims{SessionID: "a1"}, models.AdminIdentity{ID: 1, Username: "admin", Role: models.RoleSuperAdmin}, nil
	case "operator":
		return &service.Claims{SessionID: "a2"}, models.AdminIdentity{ID: 2, Username: "operator", Role: models.RoleOperator}, nil
	}
	return nil, models.AdminIdentity{}, utils.ErrInvalidToken
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware_Handle(t *testing.T) {
	m := NewAuthMiddleware(fakeCustomerAuth{}, NewInvalidAuthRateLimiter(5, time.Minute))
	r := gin.New()
	r.GET("/profile", m.Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c)+"|"+GetPhone(c))
	})

	w := perform(r, http.MethodGet, "/profile", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sid-1|08123456789", w.Body.String())

	w = perform(r, http.MethodGet, "/profile", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "LOGIN_REQUIRED", resp.Error.Code)
	assert.Equal(t, "/login", resp.Error.Details["redirect"])
}

func TestAuthMiddleware_RateLimitsBadTokens(t *testing.T) {
	m := NewAuthMiddleware(fakeCustomerAuth{}, NewInvalidAuthRateLimiter(2, time.Minute))
	r := gin.New()
	r.GET("/profile", m.Handle(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/profile", "bad").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/profile", "bad").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/profile", "bad").Code)
}

func TestAuthMiddleware_Optional(t *testing.T) {
	m := NewAuthMiddleware(fakeCustomerAuth{}, NewInvalidAuthRateLimiter(5, time.Minute))
	r := gin.New()
	r.GET("/checkout", m.Optional(), func(c *gin.Context) { c.String(http.StatusOK, GetPhone(c)) })

	assert.Equal(t, "08123456789", perform(r, http.MethodGet, "/checkout", "good").Body.String())
	w := perform(r, http.MethodGet, "/checkout", "bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAdminAuth_RequireRole(t *testing.T) {
	m := NewAdminAuthMiddleware(fakeAdminAuth{}, NewInvalidAuthRateLimiter(5, time.Minute))
	r := gin.New()
	admin := r.Group("/admin", m.Handle())
	admin.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
	admin.GET("/users", RequireRole(models.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin/dashboard", "operator").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin/users", "super").Code)

	w := perform(r, http.MethodGet, "/admin/users", "operator")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)

	w = perform(r, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/admin/login", decode(t, w).Error.Details["redirect"])
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"shop.example.com"}))
	r.GET("/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/health", nil)
	req.Header.Set("Origin", "https://shop.example.com:443")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInvalidAuthRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	rl := NewInvalidAuthRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(61 * time.Second)
	assert.False(t, rl.Blocked("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/", func(c *gin.Context) { utils.Success(c, http.StatusOK, "ok", nil) })

	w := perform(r, http.MethodGet, "/", "")
	id := w.Header().Get("X-Request-Id")
	require.Len(t, id, 8)
	assert.Equal(t, id, decode(t, w).Meta.RequestID)
}
