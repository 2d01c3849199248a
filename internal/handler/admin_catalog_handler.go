package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

const maxImageSize = 5 << 20

// AdminCatalogHandler handles back-office CRUD for categories, products,
// vouchers and admin accounts.
type AdminCatalogHandler struct {
	catalogSvc *service.AdminCatalogService
}

// NewAdminCatalogHandler constructs an AdminCatalogHandler.
func NewAdminCatalogHandler(catalogSvc *service.AdminCatalogService) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogSvc: catalogSvc}
}

// ListCategories handles GET /v1/admin/categories
func (h *AdminCatalogHandler) ListCategories(c *gin.Context) {
	utils.Success(c, 200, "Categories retrieved", h.catalogSvc.Categories())
}

// GetCategory handles GET /v1/admin/categories/:id
func (h *AdminCatalogHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.catalogSvc.Category(id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Category retrieved", category)
}

// CreateCategory handles POST /v1/admin/categories
func (h *AdminCatalogHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogSvc.CreateCategory(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Category created successfully", category)
}

// UpdateCategory handles PUT /v1/admin/categories/:id
func (h *AdminCatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogSvc.UpdateCategory(id, store.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *AdminCatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteCategory(id); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Category deleted successfully", nil)
}

// ListProducts handles GET /v1/admin/products
func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	utils.Success(c, 200, "Products retrieved", h.catalogSvc.Products())
}

// GetProduct handles GET /v1/admin/products/:id
func (h *AdminCatalogHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogSvc.Product(id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// CreateProduct handles POST /v1/admin/products
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req struct {
		Name        string             `json:"name"`
		Description string             `json:"description"`
		Price       string             `json:"price"`
		Image       string             `json:"image"`
		CategoryID  int                `json:"categoryId"`
		Status      string             `json:"status"`
		FormConfig  []models.FormField `json:"formConfig"`
	}
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogSvc.CreateProduct(service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		Status:      req.Status,
		FormConfig:  req.FormConfig,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Product created successfully", product)
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string            `json:"name"`
		Description *string            `json:"description"`
		Price       *string            `json:"price"`
		Image       *string            `json:"image"`
		CategoryID  *int               `json:"categoryId"`
		Status      *string            `json:"status"`
		FormConfig  []models.FormField `json:"formConfig"`
	}
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogSvc.UpdateProduct(id, store.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		Status:      req.Status,
		FormConfig:  req.FormConfig,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteProduct(id); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product deleted successfully", nil)
}

// UploadProductImage handles POST /v1/admin/products/:id/image (multipart
// field "image").
func (h *AdminCatalogHandler) UploadProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		utils.ErrorWithDetails(c, 400, "VALIDATION_ERROR", "Validation failed", map[string]string{"image": "image file is required"})
		return
	}
	if fh.Size > maxImageSize {
		utils.ErrorWithDetails(c, 400, "VALIDATION_ERROR", "Validation failed", map[string]string{"image": "image must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Unreadable image upload")
		return
	}
	defer f.Close()

	product, err := h.catalogSvc.UploadProductImage(c.Request.Context(), id, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Product image uploaded", product)
}

type voucherRequest struct {
	Code                 *string                 `json:"code"`
	Type                 *models.VoucherType     `json:"type"`
	Value                *int64                  `json:"value"`
	Description          *string                 `json:"description"`
	ApplicationType      *models.ApplicationType `json:"applicationType"`
	ApplicableIDs        []int                   `json:"applicableIds"`
	MinTransactionAmount *int64                  `json:"minTransactionAmount"`
	MaxDiscountAmount    *int64                  `json:"maxDiscountAmount"`
	Quota                *int                    `json:"quota"`
	StartDate            *string                 `json:"startDate"`
	EndDate              *string                 `json:"endDate"`
	Status               *string                 `json:"status"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListVouchers handles GET /v1/admin/vouchers
func (h *AdminCatalogHandler) ListVouchers(c *gin.Context) {
	utils.Success(c, 200, "Vouchers retrieved", h.catalogSvc.Vouchers())
}

// GetVoucher handles GET /v1/admin/vouchers/:id
func (h *AdminCatalogHandler) GetVoucher(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.catalogSvc.Voucher(id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Voucher retrieved", v)
}

// CreateVoucher handles POST /v1/admin/vouchers
func (h *AdminCatalogHandler) CreateVoucher(c *gin.Context) {
	var req voucherRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.catalogSvc.CreateVoucher(service.VoucherInput{
		Code:                 deref(req.Code),
		Type:                 deref(req.Type),
		Value:                deref(req.Value),
		Description:          deref(req.Description),
		ApplicationType:      deref(req.ApplicationType),
		ApplicableIDs:        req.ApplicableIDs,
		MinTransactionAmount: deref(req.MinTransactionAmount),
		MaxDiscountAmount:    deref(req.MaxDiscountAmount),
		Quota:                deref(req.Quota),
		StartDate:            deref(req.StartDate),
		EndDate:              deref(req.EndDate),
		Status:               deref(req.Status),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Voucher created successfully", v)
}

// UpdateVoucher handles PUT /v1/admin/vouchers/:id
func (h *AdminCatalogHandler) UpdateVoucher(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req voucherRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.catalogSvc.UpdateVoucher(id, store.VoucherPatch{
		Code:                 req.Code,
		Type:                 req.Type,
		Value:                req.Value,
		Description:          req.Description,
		ApplicationType:      req.ApplicationType,
		ApplicableIDs:        req.ApplicableIDs,
		MinTransactionAmount: req.MinTransactionAmount,
		MaxDiscountAmount:    req.MaxDiscountAmount,
		Quota:                req.Quota,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Status:               req.Status,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Voucher updated successfully", v)
}

// DeleteVoucher handles DELETE /v1/admin/vouchers/:id
func (h *AdminCatalogHandler) DeleteVoucher(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteVoucher(id); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Voucher deleted successfully", nil)
}

// ListAdminUsers handles GET /v1/admin/users
func (h *AdminCatalogHandler) ListAdminUsers(c *gin.Context) {
	utils.Success(c, 200, "Admin users retrieved", h.catalogSvc.AdminUsers())
}

// GetAdminUser handles GET /v1/admin/users/:id
func (h *AdminCatalogHandler) GetAdminUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.catalogSvc.AdminUser(id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Admin user retrieved", u)
}

// CreateAdminUser handles POST /v1/admin/users
func (h *AdminCatalogHandler) CreateAdminUser(c *gin.Context) {
	var req struct {
		Username string           `json:"username"`
		Name     string           `json:"name"`
		Role     models.AdminRole `json:"role"`
		Status   string           `json:"status"`
		Password string           `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.catalogSvc.CreateAdminUser(service.AdminUserInput{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
		Status:   req.Status,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Admin user created successfully", u)
}

// UpdateAdminUser handles PUT /v1/admin/users/:id
func (h *AdminCatalogHandler) UpdateAdminUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Username *string           `json:"username"`
		Name     *string           `json:"name"`
		Role     *models.AdminRole `json:"role"`
		Status   *string           `json:"status"`
		Password string            `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.catalogSvc.UpdateAdminUser(id, store.AdminUserPatch{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
		Status:   req.Status,
	}, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Admin user updated successfully", u)
}

// DeleteAdminUser handles DELETE /v1/admin/users/:id
// Admins cannot delete their own account.
func (h *AdminCatalogHandler) DeleteAdminUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if admin, ok := middleware.GetAdmin(c); ok && admin.ID == id {
		utils.Error(c, 400, "CANNOT_DELETE_SELF", "You cannot delete your own account")
		return
	}
	if err := h.catalogSvc.DeleteAdminUser(id); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Admin user deleted successfully", nil)
}
