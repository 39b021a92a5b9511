package repository

import (
	"context"
	"errors"
	"fmt"

	"mini-pos/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, stock, category_id, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// collectProducts drains rows into a slice and closes them.
func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List returns products ordered by name, optionally restricted to one category.
func (r *productRepository) List(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::BIGINT IS NULL OR category_id = $1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	return products, nil
}

// GetByID returns the product or (nil, nil) when it does not exist.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByName returns the product or (nil, nil) when it does not exist.
func (r *productRepository) GetByName(ctx context.Context, name string) (*model.Product, error) {
	return r.getOne(ctx, "name = $1", name)
}

func (r *productRepository) getOne(ctx context.Context, where string, arg any) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where

	var p model.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Create inserts a product and fills in its ID and timestamps.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (name, price, stock, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Stock,
		product.CategoryID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return r.mapWriteError(err, product)
	}

	r.logger.Debug().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Msg("product created")

	return nil
}

// Update overwrites name, price, stock and category of a product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, stock = $4, category_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.CategoryID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.ProductNotFoundError{ProductID: product.ID}
		}
		return r.mapWriteError(err, product)
	}

	return nil
}

func (r *productRepository) mapWriteError(err error, product *model.Product) error {
	switch {
	case isUniqueViolation(err):
		return model.ErrDuplicateName
	case isForeignKeyViolation(err):
		return model.ErrCategoryNotFound
	}
	r.logger.Error().
		Err(err).
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Msg("failed to write product")
	return fmt.Errorf("failed to write product: %w", err)
}

// Delete removes a product and returns it as it was before deletion.
func (r *productRepository) Delete(ctx context.Context, id int64) (*model.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	var p model.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &model.ProductNotFoundError{ProductID: id}
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return &p, nil
}

// DecrementStock atomically lowers stock by quantity, refusing to go negative.
// When the guarded update matches no row the product is re-read to tell a
// missing product from a short one.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING ` + productColumns

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id, quantity), &p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to decrement stock")
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &model.ProductNotFoundError{ProductID: id}
	}

	return nil, &model.InsufficientStockError{
		ProductID:   id,
		ProductName: current.Name,
		Requested:   quantity,
		Available:   current.Stock,
	}
}

// ListLowStock returns products whose stock is at or below threshold.
func (r *productRepository) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock <= $1
		ORDER BY stock, name
	`

	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low stock products")
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read low stock rows")
		return nil, err
	}

	return products, nil
}
