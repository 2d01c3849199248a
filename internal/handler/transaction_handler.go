package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/routes"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// TransactionHandler serves a customer's transaction history.
type TransactionHandler struct {
	catalogService *service.CatalogService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(catalogService *service.CatalogService) *TransactionHandler {
	return &TransactionHandler{catalogService: catalogService}
}

// GetTransactions handles GET /v1/transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	trxs := h.catalogService.Transactions(middleware.GetPhone(c))
	utils.Success(c, 200, "Transactions retrieved", trxs)
}

// GetTransaction handles GET /v1/transactions/:id
// Guests identify their order with the WhatsApp number used at checkout.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	owner := middleware.GetPhone(c)
	if owner == "" {
		owner = utils.NormalizePhone(c.Query("whatsapp"))
	}
	if owner == "" {
		utils.ErrorWithDetails(c, 401, "LOGIN_REQUIRED", "Login required", map[string]string{"redirect": routes.Login})
		return
	}

	trx, err := h.catalogService.Transaction(owner, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Transaction retrieved", trx)
}

// LoadMore handles POST /v1/transactions/load-more
func (h *TransactionHandler) LoadMore(c *gin.Context) {
	page, err := h.catalogService.LoadMoreTransactions(c.Request.Context(), middleware.GetPhone(c))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Transactions loaded", page)
}
