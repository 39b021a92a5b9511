package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mini-pos/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// saleRepository implements the SaleRepository interface using PostgreSQL.
type saleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSaleRepository creates a new PostgreSQL-backed sale repository.
func NewSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *saleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// LockProducts loads and row-locks the given products within tx. Rows are
// locked in id order so concurrent checkouts cannot deadlock each other.
func (r *saleRepository) LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Ints64("product_ids", ids).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read locked product rows")
		return nil, err
	}

	return products, nil
}

// CreateSale inserts a sale header within tx.
func (r *saleRepository) CreateSale(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	query := `
		INSERT INTO sales (id, created_at, total, payment_method, customer_name)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query,
		sale.ID,
		sale.CreatedAt,
		sale.Total,
		string(sale.PaymentMethod),
		sale.CustomerName,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("sale_id", sale.ID.String()).
			Msg("failed to create sale")
		return fmt.Errorf("failed to create sale: %w", err)
	}

	r.logger.Debug().
		Str("sale_id", sale.ID.String()).
		Float64("total", sale.Total).
		Msg("sale created")

	return nil
}

// DecrementStock lowers a product's stock within tx when enough is on hand.
func (r *saleRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) (int, bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING stock
	`

	var stock int
	err := tx.QueryRow(ctx, query, productID, quantity).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		r.logger.Error().
			Err(err).
			Int64("product_id", productID).
			Msg("failed to decrement stock")
		return 0, false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return stock, true, nil
}

// CreateCartItems inserts the sale's lines within tx.
func (r *saleRepository) CreateCartItems(ctx context.Context, tx pgx.Tx, items []model.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO cart_items (id, sale_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.SaleID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("sale_id", items[i].SaleID.String()).
				Str("product_name", items[i].ProductName).
				Msg("failed to create cart item")
			return fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("cart items created")

	return nil
}

// ListBetween returns sales with from <= created_at < to, newest first, with their items.
func (r *saleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	query := `
		SELECT id, created_at, total, payment_method, customer_name
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`

	return r.listSales(ctx, query, from, to)
}

// Recent returns the latest limit sales with their items.
func (r *saleRepository) Recent(ctx context.Context, limit int) ([]model.Sale, error) {
	query := `
		SELECT id, created_at, total, payment_method, customer_name
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.listSales(ctx, query, limit)
}

func (r *saleRepository) listSales(ctx context.Context, query string, args ...any) ([]model.Sale, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sales")
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []model.Sale{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			s      model.Sale
			method string
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Total, &method, &s.CustomerName); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan sale row")
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		s.PaymentMethod = model.PaymentMethod(method)
		s.Items = []model.CartItem{}
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating sale rows")
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}
	rows.Close()

	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}

	if err := r.attachItems(ctx, ids, sales, index); err != nil {
		return nil, err
	}

	return sales, nil
}

// attachItems loads the cart items of the given sales, ordered by product name.
func (r *saleRepository) attachItems(ctx context.Context, ids []uuid.UUID, sales []model.Sale, index map[uuid.UUID]int) error {
	query := `
		SELECT id, sale_id, product_id, product_name, unit_price, quantity
		FROM cart_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, product_name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query cart items")
		return fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return fmt.Errorf("failed to scan cart item: %w", err)
		}
		i := index[item.SaleID]
		sales[i].Items = append(sales[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return fmt.Errorf("error iterating cart items: %w", err)
	}

	return nil
}

// Totals returns the sum of all sale totals and the number of sales.
func (r *saleRepository) Totals(ctx context.Context) (float64, int, error) {
	query := `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales`

	var (
		revenue float64
		count   int
	)
	if err := r.pool.QueryRow(ctx, query).Scan(&revenue, &count); err != nil {
		r.logger.Error().Err(err).Msg("failed to query sale totals")
		return 0, 0, fmt.Errorf("failed to query sale totals: %w", err)
	}

	return revenue, count, nil
}

// MonthlyTotals returns sale totals grouped by YYYY-MM, oldest first.
func (r *saleRepository) MonthlyTotals(ctx context.Context) ([]model.MonthlySales, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, SUM(total)
		FROM sales
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query monthly totals")
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	trend := []model.MonthlySales{}
	for rows.Next() {
		var m model.MonthlySales
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan monthly total")
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		trend = append(trend, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly totals: %w", err)
	}

	return trend, nil
}
