package models

// DateLayout is the calendar-date layout used for createdAt and voucher windows.
const DateLayout = "2006-01-02"

// Status values shared by catalog entities.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// FieldType enumerates the input kinds a product form field may declare.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldSelect FieldType = "select"
)

// FormField describes one input the customer fills in at checkout.
type FormField struct {
	Field       string    `json:"field"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
}

// Product is a purchasable top-up item. Price is kept as decimal text.
type Product struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       string      `json:"price"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	CategoryID  int         `json:"categoryId"`
	Status      string      `json:"status"`
	FormConfig  []FormField `json:"formConfig"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// Clone returns a deep copy so callers never share slices with a store.
func (p Product) Clone() Product {
	out := p
	if p.FormConfig != nil {
		out.FormConfig = make([]FormField, len(p.FormConfig))
		for i, f := range p.FormConfig {
			f.Options = append([]string(nil), f.Options...)
			out.FormConfig[i] = f
		}
	}
	return out
}

// Category groups products by game.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}
