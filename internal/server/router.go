// Package server assembles the gin engine for the storefront and
// back-office API.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/handler"
	"github.com/GTDGit/gtd_storefront/internal/metrics"
	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/routes"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// APIPrefix is the version prefix of every API route.
const APIPrefix = "/v1"

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health           *handler.HealthHandler
	Config           *handler.ConfigHandler
	Auth             *handler.AuthHandler
	Product          *handler.ProductHandler
	GameAccount      *handler.GameAccountHandler
	Checkout         *handler.CheckoutHandler
	Transaction      *handler.TransactionHandler
	AdminAuth        *handler.AdminAuthHandler
	AdminTransaction *handler.AdminTransactionHandler
	AdminCatalog     *handler.AdminCatalogHandler
	SSE              *handler.SSEHandler
}

// Middlewares groups the auth gates.
type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	AdminAuth *middleware.AdminAuthMiddleware
}

// Options configures the engine.
type Options struct {
	CORSHosts []string
	Metrics   *metrics.Metrics
}

// New builds the gin engine with global middleware and every route.
func New(h *Handlers, mw *Middlewares, opts Options) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			log.Error().Err(err).Msg("Failed to register request validators")
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(opts.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	setupRoutes(router, h, mw)
	router.NoRoute(notFound)
	return router
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, h *Handlers, mw *Middlewares) {
	v1 := router.Group(APIPrefix)
	v1.GET("/health", h.Health.GetHealth)
	v1.GET("/config", h.Config.GetConfig)
	v1.GET("/payment-methods", h.Checkout.GetPaymentMethods)
	v1.GET("/categories", h.Product.GetCategories)

	// Storefront catalog
	v1.GET("/products", h.Product.GetProducts)
	v1.GET("/products/:id", h.Product.GetProduct)
	v1.POST("/products/load-more", h.Product.LoadMore)

	// Customer auth
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/refresh_token", h.Auth.RefreshToken)
	v1.POST("/auth/logout", mw.Auth.Handle(), h.Auth.Logout)

	// Checkout (guests allowed)
	v1.POST(routes.CheckoutPattern, mw.Auth.Optional(), h.Checkout.Open)
	sessions := v1.Group("/checkout/sessions/:sessionId")
	{
		sessions.GET("", h.Checkout.Get)
		sessions.POST("/voucher", h.Checkout.ApplyVoucher)
		sessions.DELETE("/voucher", h.Checkout.RemoveVoucher)
		sessions.PUT("/payment-method", h.Checkout.SelectPaymentMethod)
		sessions.POST("/submit", h.Checkout.Submit)
	}
	v1.GET(routes.TransactionPattern, mw.Auth.Optional(), h.Transaction.GetTransaction)

	// Signed-in customer
	customer := v1.Group("")
	customer.Use(mw.Auth.Handle())
	{
		customer.GET(routes.Profile, h.Auth.GetProfile)
		customer.PUT(routes.Profile, h.Auth.UpdateProfile)

		customer.GET("/game-accounts", h.GameAccount.List)
		customer.POST("/game-accounts", h.GameAccount.Create)
		customer.PUT("/game-accounts/:id", h.GameAccount.Update)
		customer.DELETE("/game-accounts/:id", h.GameAccount.Delete)

		customer.GET(routes.Transactions, h.Transaction.GetTransactions)
		customer.POST(routes.Transactions+"/load-more", h.Transaction.LoadMore)
	}

	// Admin routes
	admin := v1.Group(routes.AdminRoot)
	admin.POST("/auth/login", h.AdminAuth.Login)
	admin.POST("/auth/refresh_token", h.AdminAuth.RefreshToken)
	admin.GET("/events", h.SSE.Stream)
	admin.Use(mw.AdminAuth.Handle())
	{
		admin.POST("/auth/logout", h.AdminAuth.Logout)
		admin.GET("/me", h.AdminAuth.Me)

		admin.GET("/dashboard", h.AdminTransaction.GetDashboard)
		admin.GET("/transactions", h.AdminTransaction.ListTransactions)
		admin.PUT("/transactions/:id/status", h.AdminTransaction.UpdateTransactionStatus)

		// Category Management
		admin.GET("/categories", h.AdminCatalog.ListCategories)
		admin.POST("/categories", h.AdminCatalog.CreateCategory)
		admin.GET("/categories/:id", h.AdminCatalog.GetCategory)
		admin.PUT("/categories/:id", h.AdminCatalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.AdminCatalog.DeleteCategory)

		// Product Management
		admin.GET("/products", h.AdminCatalog.ListProducts)
		admin.POST("/products", h.AdminCatalog.CreateProduct)
		admin.GET("/products/:id", h.AdminCatalog.GetProduct)
		admin.PUT("/products/:id", h.AdminCatalog.UpdateProduct)
		admin.DELETE("/products/:id", h.AdminCatalog.DeleteProduct)
		admin.POST("/products/:id/image", h.AdminCatalog.UploadProductImage)

		// Voucher Management
		admin.GET("/vouchers", h.AdminCatalog.ListVouchers)
		admin.POST("/vouchers", h.AdminCatalog.CreateVoucher)
		admin.GET("/vouchers/:id", h.AdminCatalog.GetVoucher)
		admin.PUT("/vouchers/:id", h.AdminCatalog.UpdateVoucher)
		admin.DELETE("/vouchers/:id", h.AdminCatalog.DeleteVoucher)

		// Admin account management
		users := admin.Group("/users", middleware.RequireRole(models.RoleSuperAdmin))
		users.GET("", h.AdminCatalog.ListAdminUsers)
		users.POST("", h.AdminCatalog.CreateAdminUser)
		users.GET("/:id", h.AdminCatalog.GetAdminUser)
		users.PUT("/:id", h.AdminCatalog.UpdateAdminUser)
		users.DELETE("/:id", h.AdminCatalog.DeleteAdminUser)
	}
}

// notFound scopes unmatched paths to the storefront or the back-office tree.
func notFound(c *gin.Context) {
	path := strings.TrimPrefix(c.Request.URL.Path, APIPrefix)
	if routes.IsAdmin(path) {
		utils.Error(c, http.StatusNotFound, "ADMIN_NOT_FOUND", "Admin page not found")
		return
	}
	utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Page not found")
}
