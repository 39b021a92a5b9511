package repository

import (
	"context"
	"testing"
	"time"

	"mini-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSale writes a sale with one line per product through the repository.
func recordSale(t *testing.T, repo SaleRepository, at time.Time, lines map[model.Product]int) model.Sale {
	t.Helper()
	ctx := context.Background()

	sale := model.Sale{
		ID:            uuid.New(),
		CreatedAt:     at,
		PaymentMethod: model.PaymentCash,
	}
	var items []model.CartItem
	for p, qty := range lines {
		id := p.ID
		sale.Total += p.Price * float64(qty)
		items = append(items, model.CartItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   &id,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    qty,
		})
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateSale(ctx, tx, &sale))
	require.NoError(t, repo.CreateCartItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	sale.Items = items
	return sale
}

func TestSaleRepository_CheckoutFlow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSaleRepository(pool, zerolog.Nop())
	products := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	c := seedCategory(t, pool, "Drinks")
	cola := seedProduct(t, pool, "Cola", 10, 5, c.ID)
	juice := seedProduct(t, pool, "Juice", 2, 1, c.ID)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := repo.LockProducts(ctx, tx, []int64{juice.ID, cola.ID, 9999})
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, cola.ID, locked[0].ID)
	assert.Equal(t, juice.ID, locked[1].ID)

	stock, ok, err := repo.DecrementStock(ctx, tx, cola.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, stock)

	_, ok, err = repo.DecrementStock(ctx, tx, juice.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tx.Rollback(ctx))

	got, err := products.GetByID(ctx, cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestSaleRepository_ListBetween(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSaleRepository(pool, zerolog.Nop())
	ctx := context.Background()

	c := seedCategory(t, pool, "Drinks")
	cola := seedProduct(t, pool, "Cola", 10, 50, c.ID)
	juice := seedProduct(t, pool, "Juice", 2, 50, c.ID)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	morning := recordSale(t, repo, day.Add(9*time.Hour), map[model.Product]int{cola: 1, juice: 3})
	evening := recordSale(t, repo, day.Add(20*time.Hour), map[model.Product]int{cola: 2})
	recordSale(t, repo, day.AddDate(0, 0, 1).Add(time.Hour), map[model.Product]int{juice: 1})

	sales, err := repo.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.Equal(t, evening.ID, sales[0].ID)
	assert.Equal(t, morning.ID, sales[1].ID)
	assert.Equal(t, 16.0, sales[1].Total)
	require.Len(t, sales[1].Items, 2)
	assert.Equal(t, "Cola", sales[1].Items[0].ProductName)
	assert.Equal(t, "Juice", sales[1].Items[1].ProductName)
	assert.Equal(t, 3, sales[1].Items[1].Quantity)

	empty, err := repo.ListBetween(ctx, day.AddDate(1, 0, 0), day.AddDate(1, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSaleRepository_HistorySurvivesProductDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSaleRepository(pool, zerolog.Nop())
	products := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	c := seedCategory(t, pool, "Drinks")
	cola := seedProduct(t, pool, "Cola", 10, 50, c.ID)
	sale := recordSale(t, repo, time.Now().UTC(), map[model.Product]int{cola: 2})

	_, err := products.Delete(ctx, cola.ID)
	require.NoError(t, err)

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, sale.ID, recent[0].ID)
	require.Len(t, recent[0].Items, 1)
	assert.Nil(t, recent[0].Items[0].ProductID)
	assert.Equal(t, "Cola", recent[0].Items[0].ProductName)
	assert.Equal(t, 10.0, recent[0].Items[0].UnitPrice)
}

func TestSaleRepository_Aggregates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSaleRepository(pool, zerolog.Nop())
	ctx := context.Background()

	revenue, count, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, revenue)
	assert.Zero(t, count)

	c := seedCategory(t, pool, "Drinks")
	cola := seedProduct(t, pool, "Cola", 10, 50, c.ID)

	recordSale(t, repo, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), map[model.Product]int{cola: 1})
	recordSale(t, repo, time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), map[model.Product]int{cola: 2})
	recordSale(t, repo, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), map[model.Product]int{cola: 3})

	revenue, count, err = repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60.0, revenue)
	assert.Equal(t, 3, count)

	trend, err := repo.MonthlyTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.MonthlySales{
		{Month: "2024-01", Total: 30},
		{Month: "2024-02", Total: 30},
	}, trend)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 30.0, recent[0].Total)
	assert.Equal(t, 20.0, recent[1].Total)
}
