package models

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TrxPending TransactionStatus = "pending"
	TrxSuccess TransactionStatus = "success"
	TrxFailed  TransactionStatus = "failed"
)

// Transaction is one purchase in the ledger. Amount always equals
// OriginalAmount + Fee - Discount with the discount clamped to the subtotal.
type Transaction struct {
	ID                string            `json:"id" db:"id"`
	Owner             string            `json:"owner" db:"owner"`
	Game              string            `json:"game" db:"game"`
	ProductID         int               `json:"productId" db:"product_id"`
	ProductName       string            `json:"productName" db:"product_name"`
	Amount            int64             `json:"amount" db:"amount"`
	OriginalAmount    int64             `json:"originalAmount" db:"original_amount"`
	Fee               int64             `json:"fee" db:"fee"`
	Discount          int64             `json:"discount" db:"discount"`
	VoucherCode       string            `json:"voucherCode,omitempty" db:"voucher_code"`
	Status            TransactionStatus `json:"status" db:"status"`
	Date              string            `json:"date" db:"date"`
	GameAccount       string            `json:"gameAccount" db:"game_account"`
	GameZone          string            `json:"gameZone,omitempty" db:"game_zone"`
	GameServer        string            `json:"gameServer,omitempty" db:"game_server"`
	WhatsApp          string            `json:"whatsapp" db:"whatsapp"`
	PaymentMethod     string            `json:"paymentMethod" db:"payment_method"`
	PaymentMethodName string            `json:"paymentMethodName" db:"payment_method_name"`
	Fields            map[string]string `json:"fields,omitempty" db:"-"`
}

// Well-known checkout form fields that map onto Transaction columns.
const (
	FieldGameAccount = "gameAccount"
	FieldGameZone    = "gameZone"
	FieldGameServer  = "gameServer"
)

// Clone returns a copy that shares no map with t.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Fields != nil {
		out.Fields = make(map[string]string, len(t.Fields))
		for k, v := range t.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
