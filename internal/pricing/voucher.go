package pricing

import (
	"time"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// Rejection explains why a voucher code produced no discount.
type Rejection string

const (
	RejectNone         Rejection = ""
	RejectUnknown      Rejection = "unknown_code"
	RejectInactive     Rejection = "inactive"
	RejectNotEligible  Rejection = "not_eligible"
	RejectBelowMinimum Rejection = "below_minimum"
)

// Resolution is the outcome of checking a code against a product.
type Resolution struct {
	Voucher  models.Voucher
	Discount int64
	Reason   Rejection
}

// Applied reports whether the code yields a discount.
func (r Resolution) Applied() bool {
	return r.Reason == RejectNone
}

// FindVoucher looks up code case-insensitively.
func FindVoucher(vouchers []models.Voucher, code string) (models.Voucher, bool) {
	want := NormalizeCode(code)
	if want == "" {
		return models.Voucher{}, false
	}
	for _, v := range vouchers {
		if NormalizeCode(v.Code) == want {
			return v, true
		}
	}
	return models.Voucher{}, false
}

// Resolve checks code against product at now and computes the raw discount
// on the product price.
func Resolve(vouchers []models.Voucher, code string, product models.Product, price int64, now time.Time) Resolution {
	v, ok := FindVoucher(vouchers, code)
	if !ok {
		return Resolution{Reason: RejectUnknown}
	}
	if !EffectiveActive(v, now) {
		return Resolution{Voucher: v, Reason: RejectInactive}
	}
	if !Eligible(v, product) {
		return Resolution{Voucher: v, Reason: RejectNotEligible}
	}
	if price < v.MinTransactionAmount {
		return Resolution{Voucher: v, Reason: RejectBelowMinimum}
	}
	return Resolution{Voucher: v, Discount: Discount(v, price)}
}

// DisplayStatus is the back-office label for a voucher at now.
func DisplayStatus(v models.Voucher, now time.Time) string {
	switch {
	case v.Status != models.StatusActive:
		return "inactive"
	case v.UsedCount >= v.Quota:
		return "exhausted"
	}
	start, errStart := time.ParseInLocation(models.DateLayout, v.StartDate, now.Location())
	if errStart == nil && now.Before(start) {
		return "scheduled"
	}
	if !EffectiveActive(v, now) {
		return "expired"
	}
	return "active"
}
