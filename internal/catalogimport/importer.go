package catalogimport

import (
	"context"
	"fmt"
	"strings"

	"mini-pos/internal/model"
	"mini-pos/internal/service"

	"github.com/rs/zerolog"
)

// Result summarises an import run.
type Result struct {
	CategoriesCreated int
	ProductsCreated   int
	ProductsUpdated   int
	Skipped           []RowError
}

// RowError records a row the catalog rejected.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Importer writes catalog rows through the catalog service, so every row
// gets the same validation and stock events as an API write.
type Importer struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

// NewImporter creates a new catalog importer.
func NewImporter(catalog service.CatalogService, logger zerolog.Logger) *Importer {
	return &Importer{
		catalog: catalog,
		logger:  logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import creates missing categories and creates or updates products by
// name. Rows the catalog rejects are skipped and reported in the result;
// any other failure aborts the run.
func (i *Importer) Import(ctx context.Context, rows []Row) (*Result, error) {
	categories, err := i.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	categoryIDs := make(map[string]int64, len(categories))
	for _, c := range categories {
		categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	products, err := i.catalog.ListProducts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	productIDs := make(map[string]int64, len(products))
	for _, p := range products {
		productIDs[strings.ToLower(p.Name)] = p.ID
	}

	result := &Result{}

	for _, row := range rows {
		categoryID, ok := categoryIDs[strings.ToLower(row.Category)]
		if !ok {
			category, err := i.catalog.CreateCategory(ctx, &model.CategoryRequest{Name: row.Category})
			if err != nil {
				if i.skip(result, row, err) {
					continue
				}
				return result, fmt.Errorf("line %d: failed to create category: %w", row.Line, err)
			}
			categoryID = category.ID
			categoryIDs[strings.ToLower(category.Name)] = category.ID
			result.CategoriesCreated++
		}

		req := &model.ProductRequest{
			Name:       row.Name,
			Price:      row.Price,
			Stock:      row.Stock,
			CategoryID: categoryID,
		}

		if id, exists := productIDs[strings.ToLower(row.Name)]; exists {
			if _, err := i.catalog.UpdateProduct(ctx, id, req); err != nil {
				if i.skip(result, row, err) {
					continue
				}
				return result, fmt.Errorf("line %d: failed to update product: %w", row.Line, err)
			}
			result.ProductsUpdated++
			continue
		}

		product, err := i.catalog.CreateProduct(ctx, req)
		if err != nil {
			if i.skip(result, row, err) {
				continue
			}
			return result, fmt.Errorf("line %d: failed to create product: %w", row.Line, err)
		}
		productIDs[strings.ToLower(product.Name)] = product.ID
		result.ProductsCreated++
	}

	i.logger.Info().
		Int("categories_created", result.CategoriesCreated).
		Int("products_created", result.ProductsCreated).
		Int("products_updated", result.ProductsUpdated).
		Int("rows_skipped", len(result.Skipped)).
		Msg("catalog import completed")

	return result, nil
}

// skip records row as rejected when err is a domain error.
func (i *Importer) skip(result *Result, row Row, err error) bool {
	if _, ok := model.AsDomainError(err); !ok {
		return false
	}
	i.logger.Warn().Err(err).Int("line", row.Line).Str("product", row.Name).Msg("catalog row skipped")
	result.Skipped = append(result.Skipped, RowError{Line: row.Line, Err: err})
	return true
}
