package models

// PaymentMethodType groups payment channels.
type PaymentMethodType string

const (
	PaymentEWallet      PaymentMethodType = "ewallet"
	PaymentBankTransfer PaymentMethodType = "bank_transfer"
)

// PaymentMethod is a selectable payment channel and its flat fee.
type PaymentMethod struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Type PaymentMethodType `json:"type"`
	Fee  int64             `json:"fee"`
}
