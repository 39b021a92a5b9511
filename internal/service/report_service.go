package service

import (
	"context"
	"fmt"
	"time"

	"mini-pos/internal/model"
	"mini-pos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout       = "2006-01-02"
	recentSalesLimit = 5
	weeklyReportDays = 7
)

// reportService implements ReportService. All calendar arithmetic is in UTC.
type reportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "report").Logger(),
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Daily returns today's sales, newest first.
func (s *reportService) Daily(ctx context.Context) (*model.SalesReport, error) {
	from := startOfDay(s.now())
	return s.window(ctx, from, from.AddDate(0, 0, 1))
}

// Weekly returns the sales since the start of the day seven days ago.
func (s *reportService) Weekly(ctx context.Context) (*model.SalesReport, error) {
	today := startOfDay(s.now())
	return s.window(ctx, today.AddDate(0, 0, -weeklyReportDays), today.AddDate(0, 0, 1))
}

func (s *reportService) window(ctx context.Context, from, to time.Time) (*model.SalesReport, error) {
	sales, err := s.saleRepo.ListBetween(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Time("from", from).Time("to", to).Msg("failed to list sales")
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	return &model.SalesReport{From: from, To: to, Sales: sales}, nil
}

// parseRange parses an inclusive YYYY-MM-DD range into [from, to).
func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, model.ErrInvalidDateRange
	}
	last, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, model.ErrInvalidDateRange
	}
	if from.After(last) {
		return time.Time{}, time.Time{}, model.ErrInvalidDateRange
	}
	return from, last.AddDate(0, 0, 1), nil
}

type productTally struct {
	name    string
	sold    int
	revenue decimal.Decimal
	cost    decimal.Decimal
	profit  decimal.Decimal
}

// Range returns the per-product breakdown for an inclusive YYYY-MM-DD range.
//
// Every line of a sale is credited with that sale's whole total as revenue;
// cost is the line's captured unit price times quantity. Sales are walked
// oldest first and rows keep the order in which products first appear.
func (s *reportService) Range(ctx context.Context, start, end string) (*model.RangeReport, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListBetween(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("start", start).Str("end", end).Msg("failed to list sales")
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	var order []string
	tallies := make(map[string]*productTally)
	for i := len(sales) - 1; i >= 0; i-- {
		saleTotal := decimal.NewFromFloat(sales[i].Total)
		for _, item := range sales[i].Items {
			t, ok := tallies[item.ProductName]
			if !ok {
				t = &productTally{name: item.ProductName}
				tallies[item.ProductName] = t
				order = append(order, item.ProductName)
			}
			lineCost := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
			t.sold += item.Quantity
			t.revenue = t.revenue.Add(saleTotal)
			t.cost = t.cost.Add(lineCost)
			t.profit = t.profit.Add(saleTotal.Sub(lineCost))
		}
	}

	report := &model.RangeReport{Sales: make([]model.ProductSales, 0, len(order))}
	totalRevenue, totalProfit := decimal.Zero, decimal.Zero
	for _, name := range order {
		t := tallies[name]
		report.Sales = append(report.Sales, model.ProductSales{
			ProductName:  t.name,
			TotalSold:    t.sold,
			TotalRevenue: t.revenue.InexactFloat64(),
			CostPrice:    t.cost.InexactFloat64(),
			Profit:       t.profit.InexactFloat64(),
		})
		totalRevenue = totalRevenue.Add(t.revenue)
		totalProfit = totalProfit.Add(t.profit)
		report.TotalItemsSold += t.sold
	}
	report.TotalRevenue = totalRevenue.InexactFloat64()
	report.TotalProfit = totalProfit.InexactFloat64()

	s.logger.Debug().
		Str("start", start).
		Str("end", end).
		Int("sales", len(sales)).
		Int("products", len(order)).
		Msg("range report built")

	return report, nil
}

// Dashboard returns the admin overview. The four queries run concurrently.
func (s *reportService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revenue, count, err := s.saleRepo.Totals(gctx)
		d.TotalRevenue, d.TotalTransactions = revenue, count
		return err
	})
	g.Go(func() error {
		recent, err := s.saleRepo.Recent(gctx, recentSalesLimit)
		d.RecentSales = recent
		return err
	})
	g.Go(func() error {
		low, err := s.productRepo.ListLowStock(gctx, model.DashboardLowStockThreshold)
		d.LowStockProducts = low
		return err
	})
	g.Go(func() error {
		trend, err := s.saleRepo.MonthlyTotals(gctx)
		d.SalesTrend = trend
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard")
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	return &d, nil
}
