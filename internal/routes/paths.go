// Package routes names the storefront and back-office paths.
package routes

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Home               = "/"
	Login              = "/login"
	CheckoutPattern    = "/checkout/:productId"
	Transactions       = "/transactions"
	TransactionPattern = "/transactions/:id"
	Profile            = "/profile"

	AdminRoot       = "/admin"
	AdminLogin      = "/admin/login"
	AdminDashboard  = "/admin/dashboard"
	AdminUsers      = "/admin/users"
	AdminCategories = "/admin/categories"
	AdminProducts   = "/admin/products"
	AdminVouchers   = "/admin/vouchers"
)

// Checkout is the checkout page of a product.
func Checkout(productID int) string {
	return "/checkout/" + strconv.Itoa(productID)
}

// TransactionDetail is the detail page of a transaction.
func TransactionDetail(id string) string {
	return "/transactions/" + url.PathEscape(id)
}

// Protected reports whether path needs a signed-in customer.
func Protected(path string) bool {
	return path == Transactions || strings.HasPrefix(path, Transactions+"/") || path == Profile
}

// IsAdmin reports whether path belongs to the back-office tree.
func IsAdmin(path string) bool {
	return path == AdminRoot || strings.HasPrefix(path, AdminRoot+"/")
}
