package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMobileMoney PaymentMethod = "mobile-money"
	PaymentCredit      PaymentMethod = "credit"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentCredit:
		return true
	}
	return false
}

// Sale is one finalised checkout.
type Sale struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	CreatedAt     time.Time     `json:"date" db:"created_at"`
	Total         float64       `json:"total" db:"total"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	CustomerName  *string       `json:"customer_name" db:"customer_name"`
	Items         []CartItem    `json:"items"`
}

// CartItem is one persisted line of a sale. ProductID is nil once the
// product has been deleted; the name and unit price captured at checkout
// remain.
type CartItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	SaleID      uuid.UUID `json:"-" db:"sale_id"`
	ProductID   *int64    `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
}

// LineTotal returns unit price times quantity.
func (c CartItem) LineTotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}

// CartLine is one entry of a checkout request.
type CartLine struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// CheckoutRequest represents the request payload for a checkout.
type CheckoutRequest struct {
	Cart          []CartLine    `json:"cart"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerName  *string       `json:"customer_name,omitempty"`
}

// CheckoutResult describes a committed sale.
type CheckoutResult struct {
	SaleID uuid.UUID  `json:"sale_id"`
	Total  float64    `json:"total"`
	Items  []CartItem `json:"items"`
}

// CheckoutResponse is the JSON body returned by the checkout endpoint.
type CheckoutResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	SaleID  *uuid.UUID `json:"sale_id,omitempty"`
	Total   *float64   `json:"total,omitempty"`
}

// CartPreviewRequest asks whether quantity units of a product can be added to a cart.
type CartPreviewRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartPreview is a priced cart line that has not been persisted.
type CartPreview struct {
	Success     bool    `json:"success"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"total_price"`
}
