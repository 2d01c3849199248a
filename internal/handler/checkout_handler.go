package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

// CheckoutHandler drives a checkout from product selection to a committed
// transaction.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// GetPaymentMethods handles GET /v1/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	utils.Success(c, 200, "Payment methods retrieved", h.checkoutService.PaymentMethods())
}

// Open handles POST /v1/checkout/:productId
func (h *CheckoutHandler) Open(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	view, err := h.checkoutService.Open(productID, middleware.GetPhone(c))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Checkout started", view)
}

// Get handles GET /v1/checkout/sessions/:sessionId
func (h *CheckoutHandler) Get(c *gin.Context) {
	view, err := h.checkoutService.View(c.Param("sessionId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Checkout retrieved", view)
}

// ApplyVoucher handles POST /v1/checkout/sessions/:sessionId/voucher
// The request blocks for the voucher lookup delay. A rejected code is a
// successful response with the voucher state set to rejected.
func (h *CheckoutHandler) ApplyVoucher(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.checkoutService.ApplyVoucher(c.Request.Context(), c.Param("sessionId"), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Voucher checked", view)
}

// RemoveVoucher handles DELETE /v1/checkout/sessions/:sessionId/voucher
func (h *CheckoutHandler) RemoveVoucher(c *gin.Context) {
	view, err := h.checkoutService.RemoveVoucher(c.Param("sessionId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Voucher removed", view)
}

// SelectPaymentMethod handles PUT /v1/checkout/sessions/:sessionId/payment-method
func (h *CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	var req struct {
		PaymentMethod string `json:"paymentMethod" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.checkoutService.SelectPaymentMethod(c.Param("sessionId"), req.PaymentMethod)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Payment method selected", view)
}

// Submit handles POST /v1/checkout/sessions/:sessionId/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req struct {
		Fields        map[string]string `json:"fields"`
		WhatsApp      string            `json:"whatsapp"`
		PaymentMethod string            `json:"paymentMethod"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), c.Param("sessionId"), service.SubmitInput{
		Fields:        req.Fields,
		WhatsApp:      req.WhatsApp,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 201, "Transaction created", result)
}
