package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-pos/internal/model"
	"mini-pos/internal/notify"
	"mini-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	events      notify.Emitter
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	events notify.Emitter,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		events:      events,
		now:         time.Now,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout validates the cart, decrements stock and records the sale in one
// transaction. Stock events are emitted only after commit.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (result *model.CheckoutResult, err error) {
	customerName, err := s.validateCheckoutRequest(req)
	if err != nil {
		return nil, err
	}

	// Quantities per product, in first-seen order.
	var ids []int64
	requested := make(map[int64]int)
	for _, line := range req.Cart {
		if _, seen := requested[line.ID]; !seen {
			ids = append(ids, line.ID)
		}
		requested[line.ID] += line.Quantity
	}

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	locked, err := s.saleRepo.LockProducts(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	products := make(map[int64]model.Product, len(locked))
	for _, p := range locked {
		products[p.ID] = p
	}

	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			err = &model.ProductNotFoundError{ProductID: id}
			return nil, err
		}
		if requested[id] > p.Stock {
			err = &model.InsufficientStockError{
				ProductID:   id,
				ProductName: p.Name,
				Requested:   requested[id],
				Available:   p.Stock,
			}
			s.logger.Warn().
				Int64("product_id", id).
				Int("requested", requested[id]).
				Int("available", p.Stock).
				Msg("insufficient stock")
			return nil, err
		}
	}

	sale := &model.Sale{
		ID:            uuid.New(),
		CreatedAt:     s.now().UTC(),
		PaymentMethod: req.PaymentMethod,
		CustomerName:  customerName,
	}

	total := decimal.Zero
	items := make([]model.CartItem, len(req.Cart))
	for i, line := range req.Cart {
		p := products[line.ID]
		productID := p.ID
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		items[i] = model.CartItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   &productID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    line.Quantity,
		}
	}
	sale.Total = total.InexactFloat64()

	if err = s.saleRepo.CreateSale(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	updated := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p := products[id]
		stock, ok, decErr := s.saleRepo.DecrementStock(ctx, tx, id, requested[id])
		if decErr != nil {
			err = fmt.Errorf("failed to update stock: %w", decErr)
			return nil, err
		}
		if !ok {
			err = &model.InsufficientStockError{
				ProductID:   id,
				ProductName: p.Name,
				Requested:   requested[id],
				Available:   p.Stock,
			}
			return nil, err
		}
		p.Stock = stock
		updated = append(updated, p)
	}

	if err = s.saleRepo.CreateCartItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to record sale items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	for _, p := range updated {
		s.events.Emit(model.StockEvents(p, true)...)
	}

	s.logger.Info().
		Str("sale_id", sale.ID.String()).
		Float64("total", sale.Total).
		Str("payment_method", string(sale.PaymentMethod)).
		Int("item_count", len(items)).
		Msg("sale completed")

	return &model.CheckoutResult{
		SaleID: sale.ID,
		Total:  sale.Total,
		Items:  items,
	}, nil
}

// validateCheckoutRequest checks the cart and payment details and returns the
// customer name to store: the trimmed name for credit sales, nil otherwise.
func (s *checkoutService) validateCheckoutRequest(req *model.CheckoutRequest) (*string, error) {
	if req == nil || len(req.Cart) == 0 {
		return nil, model.ErrEmptyCart
	}

	perProduct := make(map[int64]int, len(req.Cart))
	for i, line := range req.Cart {
		if line.Quantity <= 0 || line.Quantity > model.MaxQuantity {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", line.ID).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		// Each line is capped, so the running sum cannot overflow before it
		// exceeds the cap.
		perProduct[line.ID] += line.Quantity
		if perProduct[line.ID] > model.MaxQuantity {
			s.logger.Warn().
				Int64("product_id", line.ID).
				Msg("cart quantity for product exceeds limit")
			return nil, model.ErrInvalidQuantity
		}
	}

	if !req.PaymentMethod.Valid() {
		return nil, model.ErrInvalidPaymentMethod
	}

	if req.PaymentMethod != model.PaymentCredit {
		return nil, nil
	}

	if req.CustomerName == nil || strings.TrimSpace(*req.CustomerName) == "" {
		return nil, model.ErrCustomerNameRequired
	}
	name := strings.TrimSpace(*req.CustomerName)
	return &name, nil
}

// PreviewLine prices a prospective cart line without changing any state.
func (s *checkoutService) PreviewLine(ctx context.Context, productID int64, quantity int) (*model.CartPreview, error) {
	if quantity <= 0 || quantity > model.MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, &model.ProductNotFoundError{ProductID: productID}
	}

	if quantity > product.Stock {
		return nil, &model.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	total := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(quantity)))

	return &model.CartPreview{
		Success:     true,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
		TotalPrice:  total.InexactFloat64(),
	}, nil
}
