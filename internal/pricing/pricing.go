// Package pricing computes checkout totals and voucher eligibility. Every
// function here is pure: callers pass the clock and the voucher collection.
package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// ErrInvalidPrice is returned when a price text is not a non-negative number.
var ErrInvalidPrice = errors.New("INVALID_PRICE")

var hundred = decimal.NewFromInt(100)

// Quote is a priced checkout line.
type Quote struct {
	Price    int64 `json:"price"`
	Fee      int64 `json:"fee"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// ParsePrice converts decimal price text into whole Rupiah, flooring any
// fractional part.
func ParsePrice(text string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if d.IsNegative() {
		return 0, ErrInvalidPrice
	}
	return d.Floor().IntPart(), nil
}

// Discount returns the raw discount v grants on price. Percentage vouchers
// floor price*value/100 and never exceed price. A positive MaxDiscountAmount
// caps either type.
func Discount(v models.Voucher, price int64) int64 {
	if price <= 0 || v.Value <= 0 {
		return 0
	}
	var d int64
	switch v.Type {
	case models.VoucherPercentage:
		d = decimal.NewFromInt(price).Mul(decimal.NewFromInt(v.Value)).Div(hundred).Floor().IntPart()
		d = min(d, price)
	case models.VoucherFixed:
		d = v.Value
	default:
		return 0
	}
	if v.MaxDiscountAmount > 0 {
		d = min(d, v.MaxDiscountAmount)
	}
	return d
}

// Compute prices a line. The discount is clamped to price+fee so the total
// never goes negative.
func Compute(price, fee, discount int64) Quote {
	subtotal := price + fee
	discount = max(0, min(discount, subtotal))
	return Quote{
		Price:    price,
		Fee:      fee,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

// NormalizeCode canonicalises a voucher code for comparison and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveActive reports whether v is usable at now: status active, now
// inside the inclusive date window, and quota not used up. Dates are read in
// now's location.
func EffectiveActive(v models.Voucher, now time.Time) bool {
	if v.Status != models.StatusActive {
		return false
	}
	if v.UsedCount >= v.Quota {
		return false
	}
	start, err := time.ParseInLocation(models.DateLayout, v.StartDate, now.Location())
	if err != nil {
		return false
	}
	end, err := time.ParseInLocation(models.DateLayout, v.EndDate, now.Location())
	if err != nil {
		return false
	}
	return !now.Before(start) && now.Before(end.AddDate(0, 0, 1))
}

// Eligible reports whether v may be applied to p.
func Eligible(v models.Voucher, p models.Product) bool {
	switch v.ApplicationType {
	case models.ApplyAll:
		return true
	case models.ApplyCategory:
		return containsID(v.ApplicableIDs, p.CategoryID)
	case models.ApplyProduct:
		return containsID(v.ApplicableIDs, p.ID)
	default:
		return false
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
