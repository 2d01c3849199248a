package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// ProductHandler serves the storefront catalog.
type ProductHandler struct {
	catalogService *service.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// GetProducts handles GET /v1/products?search=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products := h.catalogService.Products(c.Query("search"))
	utils.Success(c, 200, "Products retrieved", products)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.Product(id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// LoadMore handles POST /v1/products/load-more
func (h *ProductHandler) LoadMore(c *gin.Context) {
	page, err := h.catalogService.LoadMore(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Products loaded", page)
}

// GetCategories handles GET /v1/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	utils.Success(c, 200, "Categories retrieved", h.catalogService.Categories())
}

// ConfigHandler exposes the client runtime configuration.
type ConfigHandler struct {
	apiURL string
}

// NewConfigHandler creates a ConfigHandler reporting apiURL.
func NewConfigHandler(apiURL string) *ConfigHandler {
	return &ConfigHandler{apiURL: apiURL}
}

// GetConfig handles GET /v1/config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	utils.Success(c, 200, "Config retrieved", gin.H{"apiUrl": h.apiURL})
}
