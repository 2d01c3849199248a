package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// AdminTransactionHandler serves the back-office dashboard and ledger.
type AdminTransactionHandler struct {
	dashboardSvc *service.DashboardService
}

// NewAdminTransactionHandler constructs an AdminTransactionHandler.
func NewAdminTransactionHandler(dashboardSvc *service.DashboardService) *AdminTransactionHandler {
	return &AdminTransactionHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard handles GET /v1/admin/dashboard
// ?refresh=true recomputes the snapshot instead of serving the cached one.
func (h *AdminTransactionHandler) GetDashboard(c *gin.Context) {
	var a models.Analytics
	if c.Query("refresh") == "true" {
		a = h.dashboardSvc.Refresh()
	} else {
		a = h.dashboardSvc.Analytics()
	}
	utils.Success(c, 200, "Dashboard retrieved", a)
}

// ListTransactions handles GET /v1/admin/transactions
func (h *AdminTransactionHandler) ListTransactions(c *gin.Context) {
	f := service.TransactionFilter{
		Status: models.TransactionStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	// Parse pagination
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			f.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			f.Limit = l
		}
	}

	result := h.dashboardSvc.Transactions(f)
	utils.SuccessWithPagination(c, 200, "Transactions retrieved", result.Transactions, result.Page, result.Limit, result.TotalItems)
}

type transactionStatusRequest struct {
	Status models.TransactionStatus `json:"status" binding:"required,oneof=pending success failed"`
}

// UpdateTransactionStatus handles PUT /v1/admin/transactions/:id/status
func (h *AdminTransactionHandler) UpdateTransactionStatus(c *gin.Context) {
	var req transactionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.dashboardSvc.UpdateTransactionStatus(c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Transaction status updated", tx)
}
