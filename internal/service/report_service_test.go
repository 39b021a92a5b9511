package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mini-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var reportNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestReportService(saleRepo *MockSaleRepository, productRepo *MockProductRepository) *reportService {
	svc := NewReportService(saleRepo, productRepo, zerolog.Nop()).(*reportService)
	svc.now = func() time.Time { return reportNow }
	return svc
}

func line(name string, unitPrice float64, qty int) model.CartItem {
	return model.CartItem{ID: uuid.New(), ProductName: name, UnitPrice: unitPrice, Quantity: qty}
}

func TestReportService_Daily(t *testing.T) {
	ctx := context.Background()
	saleRepo := new(MockSaleRepository)
	svc := newTestReportService(saleRepo, new(MockProductRepository))

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	sales := []model.Sale{{ID: uuid.New(), Total: 12}}
	saleRepo.On("ListBetween", ctx, from, to).Return(sales, nil)

	report, err := svc.Daily(ctx)

	require.NoError(t, err)
	assert.Equal(t, from, report.From)
	assert.Equal(t, to, report.To)
	assert.Equal(t, sales, report.Sales)
	saleRepo.AssertExpectations(t)
}

func TestReportService_Weekly(t *testing.T) {
	ctx := context.Background()
	saleRepo := new(MockSaleRepository)
	svc := newTestReportService(saleRepo, new(MockProductRepository))

	from := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	saleRepo.On("ListBetween", ctx, from, to).Return([]model.Sale{}, nil)

	report, err := svc.Weekly(ctx)

	require.NoError(t, err)
	assert.Empty(t, report.Sales)
	saleRepo.AssertExpectations(t)
}

func TestReportService_Range(t *testing.T) {
	ctx := context.Background()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	t.Run("Whole sale total is credited to every line", func(t *testing.T) {
		saleRepo := new(MockSaleRepository)
		svc := newTestReportService(saleRepo, new(MockProductRepository))

		// Newest first, as the repository returns them.
		saleRepo.On("ListBetween", ctx, from, to).Return([]model.Sale{
			{ID: uuid.New(), Total: 3, Items: []model.CartItem{line("Bread", 1.5, 2)}},
			{ID: uuid.New(), Total: 25, Items: []model.CartItem{line("Milk", 5, 3), line("Bread", 2.5, 4)}},
		}, nil)

		report, err := svc.Range(ctx, "2024-03-01", "2024-03-02")

		require.NoError(t, err)
		assert.Equal(t, []model.ProductSales{
			{ProductName: "Milk", TotalSold: 3, TotalRevenue: 25, CostPrice: 15, Profit: 10},
			{ProductName: "Bread", TotalSold: 6, TotalRevenue: 28, CostPrice: 13, Profit: 15},
		}, report.Sales)
		assert.Equal(t, 53.0, report.TotalRevenue)
		assert.Equal(t, 9, report.TotalItemsSold)
		assert.Equal(t, 25.0, report.TotalProfit)
	})

	t.Run("Single-line sales have zero profit at list price", func(t *testing.T) {
		saleRepo := new(MockSaleRepository)
		svc := newTestReportService(saleRepo, new(MockProductRepository))

		saleRepo.On("ListBetween", ctx, from, to).Return([]model.Sale{
			{ID: uuid.New(), Total: 0.3, Items: []model.CartItem{line("Gum", 0.1, 3)}},
		}, nil)

		report, err := svc.Range(ctx, "2024-03-01", "2024-03-02")

		require.NoError(t, err)
		require.Len(t, report.Sales, 1)
		assert.Equal(t, 0.3, report.Sales[0].CostPrice)
		assert.Equal(t, 0.0, report.Sales[0].Profit)
	})

	t.Run("No sales", func(t *testing.T) {
		saleRepo := new(MockSaleRepository)
		svc := newTestReportService(saleRepo, new(MockProductRepository))
		saleRepo.On("ListBetween", ctx, from, to).Return([]model.Sale{}, nil)

		report, err := svc.Range(ctx, "2024-03-01", "2024-03-02")

		require.NoError(t, err)
		assert.NotNil(t, report.Sales)
		assert.Empty(t, report.Sales)
		assert.Zero(t, report.TotalRevenue)
		assert.Zero(t, report.TotalItemsSold)
		assert.Zero(t, report.TotalProfit)
	})

	t.Run("Same start and end covers one day", func(t *testing.T) {
		saleRepo := new(MockSaleRepository)
		svc := newTestReportService(saleRepo, new(MockProductRepository))
		saleRepo.On("ListBetween", ctx, from, from.AddDate(0, 0, 1)).Return([]model.Sale{}, nil)

		_, err := svc.Range(ctx, "2024-03-01", "2024-03-01")

		require.NoError(t, err)
		saleRepo.AssertExpectations(t)
	})
}

func TestReportService_Range_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{name: "Start after end", start: "2024-03-05", end: "2024-03-01"},
		{name: "Malformed start", start: "03/01/2024", end: "2024-03-05"},
		{name: "Malformed end", start: "2024-03-01", end: "2024-13-40"},
		{name: "Empty dates", start: "", end: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saleRepo := new(MockSaleRepository)
			svc := newTestReportService(saleRepo, new(MockProductRepository))

			report, err := svc.Range(context.Background(), tt.start, tt.end)

			assert.ErrorIs(t, err, model.ErrInvalidDateRange)
			assert.Nil(t, report)
			saleRepo.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReportService_Dashboard(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	productRepo := new(MockProductRepository)
	svc := newTestReportService(saleRepo, productRepo)

	recent := []model.Sale{{ID: uuid.New(), Total: 9}}
	low := []model.Product{{ID: 3, Name: "Milk", Stock: 2}}
	trend := []model.MonthlySales{{Month: "2024-02", Total: 40}, {Month: "2024-03", Total: 9}}

	saleRepo.On("Totals", mock.Anything).Return(49.0, 6, nil)
	saleRepo.On("Recent", mock.Anything, 5).Return(recent, nil)
	saleRepo.On("MonthlyTotals", mock.Anything).Return(trend, nil)
	productRepo.On("ListLowStock", mock.Anything, model.DashboardLowStockThreshold).Return(low, nil)

	dashboard, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &model.Dashboard{
		TotalRevenue:      49,
		TotalTransactions: 6,
		RecentSales:       recent,
		LowStockProducts:  low,
		SalesTrend:        trend,
	}, dashboard)
}

func TestReportService_Dashboard_Error(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	productRepo := new(MockProductRepository)
	svc := newTestReportService(saleRepo, productRepo)

	saleRepo.On("Totals", mock.Anything).Return(0.0, 0, errors.New("db down"))
	saleRepo.On("Recent", mock.Anything, 5).Return([]model.Sale{}, nil).Maybe()
	saleRepo.On("MonthlyTotals", mock.Anything).Return([]model.MonthlySales{}, nil).Maybe()
	productRepo.On("ListLowStock", mock.Anything, model.DashboardLowStockThreshold).Return([]model.Product{}, nil).Maybe()

	dashboard, err := svc.Dashboard(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build dashboard")
	assert.Nil(t, dashboard)
}
