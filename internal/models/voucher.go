package models

// VoucherType selects how a voucher's value is interpreted.
type VoucherType string

const (
	VoucherPercentage VoucherType = "percentage"
	VoucherFixed      VoucherType = "fixed"
)

// ApplicationType scopes which products a voucher applies to.
type ApplicationType string

const (
	ApplyAll      ApplicationType = "all"
	ApplyCategory ApplicationType = "category"
	ApplyProduct  ApplicationType = "product"
)

// Voucher is a discount code. Code is stored upper-case; StartDate and
// EndDate use DateLayout and are inclusive. A zero MinTransactionAmount or
// MaxDiscountAmount means no limit.
type Voucher struct {
	ID                   int             `json:"id"`
	Code                 string          `json:"code"`
	Type                 VoucherType     `json:"type"`
	Value                int64           `json:"value"`
	Description          string          `json:"description"`
	ApplicationType      ApplicationType `json:"applicationType"`
	ApplicableIDs        []int           `json:"applicableIds"`
	MinTransactionAmount int64           `json:"minTransactionAmount"`
	MaxDiscountAmount    int64           `json:"maxDiscountAmount"`
	Quota                int             `json:"quota"`
	UsedCount            int             `json:"usedCount"`
	StartDate            string          `json:"startDate"`
	EndDate              string          `json:"endDate"`
	Status               string          `json:"status"`
	CreatedAt            string          `json:"createdAt"`
}

// Clone returns a copy that shares no slices with v.
func (v Voucher) Clone() Voucher {
	out := v
	out.ApplicableIDs = append([]int{}, v.ApplicableIDs...)
	return out
}
