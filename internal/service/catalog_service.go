package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-pos/internal/model"
	"mini-pos/internal/notify"
	"mini-pos/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	events       notify.Emitter
	logger       zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	events notify.Emitter,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		events:       events,
		logger:       logger.With().Str("service", "catalog").Logger(),
	}
}

// ListCategories returns all categories ordered by name.
func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category or model.ErrCategoryNotFound.
func (s *catalogService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

// CreateCategory creates a category with a unique, non-empty name.
func (s *catalogService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return nil, model.ErrDuplicateName
	}

	category := &model.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, model.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().
		Int64("category_id", category.ID).
		Str("name", category.Name).
		Msg("category created")

	return category, nil
}

// UpdateCategory renames a category.
func (s *catalogService) UpdateCategory(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, model.ErrDuplicateName
	}

	category := &model.Category{ID: id, Name: name}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, model.ErrDuplicateName) || errors.Is(err, model.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory deletes a category and all of its products. Each removed
// product is announced with stock 0.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	removed, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	for _, p := range removed {
		p.Stock = 0
		s.events.Emit(model.StockEvents(p, false)...)
	}

	s.logger.Info().
		Int64("category_id", id).
		Int("products_removed", len(removed)).
		Msg("category deleted")

	return nil
}

// ListProducts returns products, optionally restricted to one category.
func (s *catalogService) ListProducts(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	if categoryID != nil {
		if _, err := s.GetCategory(ctx, *categoryID); err != nil {
			return nil, err
		}
	}

	products, err := s.productRepo.List(ctx, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product or an error matching model.ErrProductNotFound.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, &model.ProductNotFoundError{ProductID: id}
	}
	return product, nil
}

// validateProduct normalises req and checks it against the catalog. selfID is
// the product being updated, or 0 on create.
func (s *catalogService) validateProduct(ctx context.Context, req *model.ProductRequest, selfID int64) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}
	if req.Price < 0 || req.Stock < 0 || req.Stock > model.MaxQuantity {
		return nil, model.ErrInvalidValue
	}

	if _, err := s.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return nil, model.ErrDuplicateName
	}

	return &model.Product{
		ID:         selfID,
		Name:       name,
		Price:      req.Price,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
	}, nil
}

// CreateProduct creates a product in an existing category.
func (s *catalogService) CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	product, err := s.validateProduct(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.events.Emit(model.StockEvents(*product, false)...)

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// UpdateProduct overwrites a product's name, price, stock and category.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.validateProduct(ctx, req, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if _, ok := model.AsDomainError(err); ok || errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.events.Emit(model.StockEvents(*product, false)...)

	return product, nil
}

// DeleteProduct deletes a product; its sale history is kept.
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	product.Stock = 0
	s.events.Emit(model.StockEvents(*product, false)...)

	s.logger.Info().
		Int64("product_id", id).
		Str("name", product.Name).
		Msg("product deleted")

	return nil
}

// DecrementStock lowers a product's stock, failing rather than going negative.
func (s *catalogService) DecrementStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity <= 0 || quantity > model.MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.DecrementStock(ctx, id, quantity)
	if err != nil {
		var stockErr *model.InsufficientStockError
		if errors.As(err, &stockErr) || errors.Is(err, model.ErrProductNotFound) {
			s.logger.Warn().
				Err(err).
				Int64("product_id", id).
				Int("quantity", quantity).
				Msg("stock decrement rejected")
			return nil, err
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	s.events.Emit(model.StockEvents(*product, true)...)

	return product, nil
}
