package repository

import (
	"context"
	"time"

	"mini-pos/internal/model"

	"github.com/jackc/pgx/v5"
)

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]model.Category, error)

	// GetByID returns the category or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// GetByName returns the category or (nil, nil) when it does not exist.
	GetByName(ctx context.Context, name string) (*model.Category, error)

	// Create inserts a category and fills in its ID and CreatedAt.
	// Returns model.ErrDuplicateName when the name is taken.
	Create(ctx context.Context, category *model.Category) error

	// Update renames a category.
	Update(ctx context.Context, category *model.Category) error

	// Delete removes a category together with its products and returns the
	// products that were removed.
	Delete(ctx context.Context, id int64) ([]model.Product, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns products ordered by name, optionally restricted to one category.
	List(ctx context.Context, categoryID *int64) ([]model.Product, error)

	// GetByID returns the product or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByName returns the product or (nil, nil) when it does not exist.
	GetByName(ctx context.Context, name string) (*model.Product, error)

	// Create inserts a product and fills in its ID and timestamps.
	Create(ctx context.Context, product *model.Product) error

	// Update overwrites name, price, stock and category of a product.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product and returns it as it was before deletion.
	Delete(ctx context.Context, id int64) (*model.Product, error)

	// DecrementStock atomically lowers stock by quantity, refusing to go negative.
	DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error)

	// ListLowStock returns products whose stock is at or below threshold.
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// SaleRepository defines the interface for the sale ledger.
type SaleRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// LockProducts loads and row-locks the given products within tx.
	// Missing ids are simply absent from the result.
	LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error)

	// CreateSale inserts a sale header within tx.
	CreateSale(ctx context.Context, tx pgx.Tx, sale *model.Sale) error

	// DecrementStock lowers a product's stock within tx when enough is on hand.
	// It reports the new stock and whether the update applied.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) (int, bool, error)

	// CreateCartItems inserts the sale's lines within tx.
	CreateCartItems(ctx context.Context, tx pgx.Tx, items []model.CartItem) error

	// ListBetween returns sales with from <= created_at < to, newest first, with their items.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)

	// Recent returns the latest limit sales with their items.
	Recent(ctx context.Context, limit int) ([]model.Sale, error)

	// Totals returns the sum of all sale totals and the number of sales.
	Totals(ctx context.Context) (float64, int, error)

	// MonthlyTotals returns sale totals grouped by YYYY-MM, oldest first.
	MonthlyTotals(ctx context.Context) ([]model.MonthlySales, error)
}

// UserRepository defines the interface for staff accounts.
type UserRepository interface {
	// GetByUsername returns the user or (nil, nil) when it does not exist.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Create inserts a user. Returns model.ErrUsernameTaken when the username exists.
	Create(ctx context.Context, user *model.User) error

	// Upsert inserts a user or overwrites the hash and role of the existing
	// account with the same username, in one statement.
	Upsert(ctx context.Context, user *model.User) error
}
