package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler handles customer login, token refresh, logout and profile.
type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if h.rateLimiter.Blocked(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if err == utils.ErrInvalidCredentials {
			h.rateLimiter.Allow(c.ClientIP())
		}
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// RefreshToken handles POST /v1/auth/refresh_token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Token refreshed", gin.H{"access_token": access, "token_type": "Bearer"})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Logged out", nil)
}

// GetProfile handles GET /v1/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	state, err := h.authService.Profile(middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Profile retrieved", state)
}

// UpdateProfile handles PUT /v1/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Phone    string `json:"phone" binding:"required,phone"`
		Password string `json:"password" binding:"omitempty,min=6"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(middleware.GetSessionID(c), service.ProfileInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Profile updated", user)
}

// AdminAuthHandler handles back-office login, refresh, logout and identity.
type AdminAuthHandler struct {
	authService *service.AdminAuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

// NewAdminAuthHandler constructs an AdminAuthHandler.
func NewAdminAuthHandler(authService *service.AdminAuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AdminAuthHandler {
	return &AdminAuthHandler{authService: authService, rateLimiter: rateLimiter}
}

// Login handles POST /v1/admin/auth/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if h.rateLimiter.Blocked(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if err == utils.ErrInvalidCredentials {
			h.rateLimiter.Allow(c.ClientIP())
		}
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// RefreshToken handles POST /v1/admin/auth/refresh_token
func (h *AdminAuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Token refreshed", gin.H{"access_token": access, "token_type": "Bearer"})
}

// Logout handles POST /v1/admin/auth/logout
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Logged out", nil)
}

// Me handles GET /v1/admin/me
func (h *AdminAuthHandler) Me(c *gin.Context) {
	admin, ok := middleware.GetAdmin(c)
	if !ok {
		utils.Error(c, 401, "INVALID_TOKEN", "Admin login required")
		return
	}
	utils.Success(c, 200, "Admin retrieved", admin)
}
