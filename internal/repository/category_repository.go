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

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// List returns all categories ordered by name.
func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByID returns the category or (nil, nil) when it does not exist.
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByName returns the category or (nil, nil) when it does not exist.
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.getOne(ctx, "name = $1", name)
}

func (r *categoryRepository) getOne(ctx context.Context, where string, arg any) (*model.Category, error) {
	query := `SELECT id, name, created_at FROM categories WHERE ` + where

	var c model.Category
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

// Create inserts a category and fills in its ID and CreatedAt.
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, category.Name).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		r.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Int64("category_id", category.ID).Msg("category created")

	return nil
}

// Update renames a category.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, category.ID, category.Name).Scan(&category.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		r.logger.Error().Err(err).Int64("category_id", category.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// Delete removes a category together with its products and returns the
// products that were removed.
func (r *categoryRepository) Delete(ctx context.Context, id int64) (removed []model.Product, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	rows, err := tx.Query(ctx, `
		DELETE FROM products
		WHERE category_id = $1
		RETURNING `+productColumns, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category products")
		return nil, fmt.Errorf("failed to delete category products: %w", err)
	}
	removed, err = collectProducts(rows)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = model.ErrCategoryNotFound
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}

	r.logger.Debug().
		Int64("category_id", id).
		Int("products_removed", len(removed)).
		Msg("category deleted")

	return removed, nil
}
