package repository

import (
	"context"
	"testing"
	"time"

	"mini-pos/internal/database"
	"mini-pos/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema
// and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping repository test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedCategory inserts a category and returns it.
func seedCategory(t *testing.T, pool *pgxpool.Pool, name string) model.Category {
	t.Helper()

	c := model.Category{Name: name}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, name,
	).Scan(&c.ID, &c.CreatedAt)
	require.NoError(t, err)

	return c
}

// seedProduct inserts a product and returns it.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, price float64, stock int, categoryID int64) model.Product {
	t.Helper()

	p := model.Product{Name: name, Price: price, Stock: stock, CategoryID: categoryID}
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (name, price, stock, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, name, price, stock, categoryID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	require.NoError(t, err)

	return p
}
