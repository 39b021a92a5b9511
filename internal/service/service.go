package service

import (
	"context"

	"mini-pos/internal/model"
)

// CatalogService defines operations for category and product management.
type CatalogService interface {
	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// GetCategory returns a category or model.ErrCategoryNotFound.
	GetCategory(ctx context.Context, id int64) (*model.Category, error)

	// CreateCategory creates a category with a unique, non-empty name.
	CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)

	// UpdateCategory renames a category.
	UpdateCategory(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error)

	// DeleteCategory deletes a category and all of its products.
	DeleteCategory(ctx context.Context, id int64) error

	// ListProducts returns products, optionally restricted to one category.
	ListProducts(ctx context.Context, categoryID *int64) ([]model.Product, error)

	// GetProduct returns a product or an error matching model.ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*model.Product, error)

	// CreateProduct creates a product in an existing category.
	CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// UpdateProduct overwrites a product's name, price, stock and category.
	UpdateProduct(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error)

	// DeleteProduct deletes a product; its sale history is kept.
	DeleteProduct(ctx context.Context, id int64) error

	// DecrementStock lowers a product's stock, failing rather than going negative.
	DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error)
}

// CheckoutService turns carts into sales.
type CheckoutService interface {
	// Checkout validates the cart, decrements stock and records the sale atomically.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResult, error)

	// PreviewLine prices a prospective cart line without changing any state.
	PreviewLine(ctx context.Context, productID int64, quantity int) (*model.CartPreview, error)
}

// ReportService aggregates the sale ledger.
type ReportService interface {
	// Daily returns today's sales, newest first.
	Daily(ctx context.Context) (*model.SalesReport, error)

	// Weekly returns the sales since the start of the day seven days ago.
	Weekly(ctx context.Context) (*model.SalesReport, error)

	// Range returns the per-product breakdown for an inclusive YYYY-MM-DD range.
	Range(ctx context.Context, start, end string) (*model.RangeReport, error)

	// Dashboard returns the admin overview.
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

// UserService manages staff accounts and sessions.
type UserService interface {
	// Login checks credentials and opens a session.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// Logout ends the session identified by token.
	Logout(ctx context.Context, token string) error

	// Register creates a staff account.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// EnsureAdmin creates username as an admin, or resets an existing account
	// to admin with the given password.
	EnsureAdmin(ctx context.Context, username, password string) (*model.User, error)
}
