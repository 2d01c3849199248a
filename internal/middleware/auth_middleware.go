package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/routes"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// Context keys set by the auth middlewares.
const (
	ctxSessionID = "session_id"
	ctxPhone     = "phone"
	ctxSubject   = "subject"
	ctxAdmin     = "admin"
)

// CustomerAuthenticator resolves a customer access token to its session.
type CustomerAuthenticator interface {
	Authenticate(token string) (*service.Claims, *store.Session, error)
}

// AdminAuthenticator resolves an admin access token to its identity.
type AdminAuthenticator interface {
	Authenticate(token string) (*service.Claims, models.AdminIdentity, error)
}

// AuthMiddleware gates storefront routes on a customer access token.
type AuthMiddleware struct {
	auth        CustomerAuthenticator
	rateLimiter *InvalidAuthRateLimiter
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(auth CustomerAuthenticator, rateLimiter *InvalidAuthRateLimiter) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, rateLimiter: rateLimiter}
}

// Handle rejects requests without a valid customer token with 401
// LOGIN_REQUIRED and a redirect to the login page.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			loginRequired(c, "Login required")
			return
		}

		claims, sess, err := m.auth.Authenticate(token)
		if err != nil {
			if !m.rateLimiter.Allow(c.ClientIP()) {
				tooManyAttempts(c)
				return
			}
			loginRequired(c, "Session expired or invalid")
			return
		}

		setCustomer(c, claims, sess)
		c.Next()
	}
}

// Optional attaches the customer when a valid token is present and lets
// guests through otherwise.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, sess, err := m.auth.Authenticate(token); err == nil {
				setCustomer(c, claims, sess)
			}
		}
		c.Next()
	}
}

func setCustomer(c *gin.Context, claims *service.Claims, sess *store.Session) {
	c.Set(ctxSessionID, claims.SessionID)
	c.Set(ctxSubject, claims.Subject)
	if u := sess.State().User; u != nil {
		c.Set(ctxPhone, u.Phone)
	}
}

// AdminAuthMiddleware gates back-office routes on an admin access token.
type AdminAuthMiddleware struct {
	auth        AdminAuthenticator
	rateLimiter *InvalidAuthRateLimiter
}

// NewAdminAuthMiddleware constructs a new AdminAuthMiddleware.
func NewAdminAuthMiddleware(auth AdminAuthenticator, rateLimiter *InvalidAuthRateLimiter) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{auth: auth, rateLimiter: rateLimiter}
}

// Handle rejects requests without a valid admin token.
func (m *AdminAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			adminLoginRequired(c, "Missing or invalid authorization header")
			return
		}

		claims, admin, err := m.auth.Authenticate(token)
		if err != nil {
			if !m.rateLimiter.Allow(c.ClientIP()) {
				tooManyAttempts(c)
				return
			}
			adminLoginRequired(c, "Invalid or expired token")
			return
		}

		c.Set(ctxSessionID, claims.SessionID)
		c.Set(ctxSubject, admin.Username)
		c.Set(ctxAdmin, admin)
		c.Next()
	}
}

// RequireRole lets only admins holding one of roles through. It must run
// after AdminAuthMiddleware.Handle.
func RequireRole(roles ...models.AdminRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := GetAdmin(c)
		if !ok {
			adminLoginRequired(c, "Admin login required")
			return
		}
		for _, r := range roles {
			if admin.Role == r {
				c.Next()
				return
			}
		}
		utils.Error(c, 403, "FORBIDDEN", "Insufficient role")
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func loginRequired(c *gin.Context, message string) {
	utils.ErrorWithDetails(c, 401, "LOGIN_REQUIRED", message, map[string]string{"redirect": routes.Login})
	c.Abort()
}

func adminLoginRequired(c *gin.Context, message string) {
	utils.ErrorWithDetails(c, 401, "INVALID_TOKEN", message, map[string]string{"redirect": routes.AdminLogin})
	c.Abort()
}

func tooManyAttempts(c *gin.Context) {
	utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
	c.Abort()
}

// GetSessionID returns the authenticated session id, or "" for guests.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// GetPhone returns the signed-in customer's phone, or "" for guests.
func GetPhone(c *gin.Context) string {
	return c.GetString(ctxPhone)
}

// GetAdmin returns the authenticated back-office identity.
func GetAdmin(c *gin.Context) (models.AdminIdentity, bool) {
	v, ok := c.Get(ctxAdmin)
	if !ok {
		return models.AdminIdentity{}, false
	}
	admin, ok := v.(models.AdminIdentity)
	return admin, ok
}
