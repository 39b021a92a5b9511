package model

import (
	"math"
	"time"
)

// MaxQuantity bounds any stock level or quantity; stock is stored as a
// 32-bit integer.
const MaxQuantity = math.MaxInt32

// LowStockAlertThreshold is the stock level below which a sale or stock
// update raises a low_stock_alert event.
const LowStockAlertThreshold = 5

// DashboardLowStockThreshold is the stock level at or below which the admin
// dashboard lists a product.
const DashboardLowStockThreshold = 10

// Product represents an item on sale in the store.
type Product struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	Stock      int       `json:"stock" db:"stock"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the product should trigger a low_stock_alert.
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockAlertThreshold
}

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID int64   `json:"category_id"`
}

// StockUpdateRequest decrements a product's stock by Quantity.
type StockUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// StockUpdateResponse is returned after a stock decrement.
type StockUpdateResponse struct {
	Success bool `json:"success"`
	Stock   int  `json:"stock"`
}
