package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// handleError maps service errors onto the response envelope.
func handleError(c *gin.Context, err error) {
	if ve, ok := utils.AsValidationError(err); ok {
		utils.ErrorWithDetails(c, 400, "VALIDATION_ERROR", "Validation failed", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, utils.ErrInvalidToken):
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.ErrorWithDetails(c, 401, "LOGIN_REQUIRED", "Session not found", map[string]string{"redirect": "/login"})
	case errors.Is(err, utils.ErrForbidden):
		utils.Error(c, 403, "FORBIDDEN", "Insufficient role")
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, utils.ErrCategoryNotFound):
		utils.Error(c, 404, "CATEGORY_NOT_FOUND", "Category not found")
	case errors.Is(err, utils.ErrVoucherNotFound):
		utils.Error(c, 404, "VOUCHER_NOT_FOUND", "Voucher not found")
	case errors.Is(err, utils.ErrAdminUserNotFound):
		utils.Error(c, 404, "ADMIN_USER_NOT_FOUND", "Admin user not found")
	case errors.Is(err, utils.ErrGameAccountNotFound):
		utils.Error(c, 404, "GAME_ACCOUNT_NOT_FOUND", "Game account not found")
	case errors.Is(err, utils.ErrTransactionNotFound):
		utils.Error(c, 404, "TRANSACTION_NOT_FOUND", "Transaction not found")
	case errors.Is(err, utils.ErrCheckoutNotFound):
		utils.Error(c, 404, "CHECKOUT_NOT_FOUND", "Checkout session not found or expired")
	case errors.Is(err, utils.ErrPaymentMethodNotFound):
		utils.Error(c, 400, "PAYMENT_METHOD_NOT_FOUND", "Unknown payment method")
	case errors.Is(err, utils.ErrDuplicateCode):
		utils.Error(c, 409, "DUPLICATE_CODE", "Voucher code already exists")
	case errors.Is(err, utils.ErrDuplicateUsername):
		utils.Error(c, 409, "DUPLICATE_USERNAME", "Username already exists")
	case errors.Is(err, utils.ErrDuplicatePhone):
		utils.Error(c, 409, "DUPLICATE_PHONE", "Phone number is already registered")
	case errors.Is(err, utils.ErrVoucherCheckRunning):
		utils.Error(c, 409, "VOUCHER_CHECK_IN_PROGRESS", "A voucher check is already running")
	case errors.Is(err, utils.ErrVoucherQuotaExhausted):
		utils.Error(c, 409, "VOUCHER_QUOTA_EXHAUSTED", "Voucher quota has been used up")
	case errors.Is(err, utils.ErrVoucherChanged):
		utils.Error(c, 409, "VOUCHER_CHANGED", "Voucher changed since it was applied, review the checkout total")
	case errors.Is(err, utils.ErrAlreadySubmitted):
		utils.Error(c, 409, "CHECKOUT_ALREADY_SUBMITTED", "Checkout is already being submitted")
	case errors.Is(err, utils.ErrStorageUnavailable):
		utils.Error(c, 503, "STORAGE_UNAVAILABLE", "Image storage is not configured")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		utils.Error(c, 499, "REQUEST_CANCELLED", "Request cancelled")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled service error")
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}

// bindJSON decodes the request body into req and writes a 400 when it
// fails. Field validation failures carry per-field details.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if details := utils.BindingDetails(err); details != nil {
			utils.ErrorWithDetails(c, 400, "VALIDATION_ERROR", "Validation failed", details)
			return false
		}
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}

// paramID parses the numeric path parameter name.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}
