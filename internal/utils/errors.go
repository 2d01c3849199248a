package utils

import (
	"errors"
	"sort"
	"strings"
)

// Common application errors used across services.
var (
	ErrInvalidCredentials    = errors.New("INVALID_CREDENTIALS")
	ErrInvalidToken          = errors.New("INVALID_TOKEN")
	ErrLoginRequired         = errors.New("LOGIN_REQUIRED")
	ErrForbidden             = errors.New("FORBIDDEN")
	ErrSessionNotFound       = errors.New("SESSION_NOT_FOUND")
	ErrProductNotFound       = errors.New("PRODUCT_NOT_FOUND")
	ErrCategoryNotFound      = errors.New("CATEGORY_NOT_FOUND")
	ErrVoucherNotFound       = errors.New("VOUCHER_NOT_FOUND")
	ErrAdminUserNotFound     = errors.New("ADMIN_USER_NOT_FOUND")
	ErrGameAccountNotFound   = errors.New("GAME_ACCOUNT_NOT_FOUND")
	ErrTransactionNotFound   = errors.New("TRANSACTION_NOT_FOUND")
	ErrCheckoutNotFound      = errors.New("CHECKOUT_NOT_FOUND")
	ErrPaymentMethodNotFound = errors.New("PAYMENT_METHOD_NOT_FOUND")
	ErrDuplicateCode         = errors.New("DUPLICATE_CODE")
	ErrDuplicateUsername     = errors.New("DUPLICATE_USERNAME")
	ErrDuplicatePhone        = errors.New("DUPLICATE_PHONE")
	ErrVoucherCheckRunning   = errors.New("VOUCHER_CHECK_IN_PROGRESS")
	ErrVoucherQuotaExhausted = errors.New("VOUCHER_QUOTA_EXHAUSTED")
	ErrVoucherChanged        = errors.New("VOUCHER_CHANGED")
	ErrAlreadySubmitted      = errors.New("CHECKOUT_ALREADY_SUBMITTED")
	ErrStorageUnavailable    = errors.New("STORAGE_UNAVAILABLE")
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns e when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "VALIDATION_ERROR: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
