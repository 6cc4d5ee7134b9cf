package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

// GetProductByID retrieves a condensed view of one product
func (s *Service) GetProductByID(ctx context.Context, id string) (*ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "is required"}
	}

	cached, err := s.cache.GetProduct(ctx, id)
	if err == nil {
		return summarize(cached), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Cache read failed for product %s: %v", id, err)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get product", err)
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", id, err)
	}

	return summarize(product), nil
}

// GetProductBySKU retrieves the full state of one product by its SKU
func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*domain.ProductSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, &domain.ValidationError{Field: "sku", Message: "is required"}
	}

	cached, err := s.cache.GetProductBySKU(ctx, sku)
	if err == nil {
		return snapshotOf(cached), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Cache read failed for SKU %s: %v", sku, err)
	}

	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		s.logger.Error("Failed to get product by SKU", err)
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: sku}
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", product.ID(), err)
	}

	return snapshotOf(product), nil
}

// ListProducts retrieves a filtered, paginated product listing
func (s *Service) ListProducts(ctx context.Context, opts domain.FilterOptions) (*ProductPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listing(ctx, opts, func(ctx context.Context) (*domain.PaginatedProducts, error) {
		return s.repo.FindAll(ctx, opts)
	})
}

// SearchProducts retrieves a paginated listing matching term against name,
// description or SKU.
func (s *Service) SearchProducts(ctx context.Context, term string, opts domain.FilterOptions) (*ProductPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.TrimSpace(term)
	opts.Search = term

	return s.listing(ctx, opts, func(ctx context.Context) (*domain.PaginatedProducts, error) {
		return s.repo.Search(ctx, term, opts)
	})
}

// GetProductsByCategory retrieves a paginated listing of one category
func (s *Service) GetProductsByCategory(ctx context.Context, category string, opts domain.FilterOptions) (*ProductPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, &domain.ValidationError{Field: "category", Message: "is required"}
	}
	opts.Category = category

	return s.listing(ctx, opts, func(ctx context.Context) (*domain.PaginatedProducts, error) {
		return s.repo.FindByCategory(ctx, category, opts)
	})
}

// GetLowStock retrieves active products running low on stock, most depleted
// first. A non-positive minStock falls back to the store default.
func (s *Service) GetLowStock(ctx context.Context, minStock int) ([]ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.repo.FindLowStock(ctx, minStock)
	if err != nil {
		s.logger.Error("Failed to get low stock products", err)
		return nil, err
	}

	return summarizeAll(products), nil
}

// CheckAvailability reports whether a product can cover the requested
// quantity. Unknown products report unavailable rather than an error.
func (s *Service) CheckAvailability(ctx context.Context, id string, quantity int) (*AvailabilityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "is required"}
	}
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}

	available, err := s.repo.CheckStockAvailability(ctx, id, quantity)
	if err != nil {
		s.logger.Error("Failed to check stock availability", err)
		return nil, err
	}

	return &AvailabilityResult{ProductID: id, Requested: quantity, Available: available}, nil
}

// GetCategories retrieves the distinct categories in use
func (s *Service) GetCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, err := s.cache.GetCategories(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Cache read failed for categories: %v", err)
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error("Failed to get categories", err)
		return nil, err
	}

	if err := s.cache.SetCategories(ctx, categories); err != nil {
		s.logger.Warnf("Failed to cache categories: %v", err)
	}

	return categories, nil
}

// GetTopSelling retrieves the products moving fastest, approximated by stock
// depletion until real sales figures exist.
func (s *Service) GetTopSelling(ctx context.Context, limit int) ([]ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.repo.TopSelling(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get top selling products", err)
		return nil, err
	}

	return summarizeAll(products), nil
}

// GetRecentlyAdded retrieves the newest products in the catalog
func (s *Service) GetRecentlyAdded(ctx context.Context, limit int) ([]ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.repo.RecentlyAdded(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get recently added products", err)
		return nil, err
	}

	return summarizeAll(products), nil
}

// GetCatalogOverview assembles the catalog-wide statistics in one shot
func (s *Service) GetCatalogOverview(ctx context.Context) (*CatalogOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, err
	}

	byCategory, err := s.repo.CountByCategory(ctx)
	if err != nil {
		s.logger.Error("Failed to count products by category", err)
		return nil, err
	}

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count products by status", err)
		return nil, err
	}

	units, err := s.repo.TotalInventoryValue(ctx)
	if err != nil {
		s.logger.Error("Failed to total inventory", err)
		return nil, err
	}

	return &CatalogOverview{
		TotalProducts:       total,
		ByCategory:          byCategory,
		ByStatus:            byStatus,
		TotalInventoryUnits: units,
	}, nil
}

// listing runs a paginated read through the listing cache. Cache failures
// degrade to the repository, never to the caller.
func (s *Service) listing(ctx context.Context, opts domain.FilterOptions, fetch func(context.Context) (*domain.PaginatedProducts, error)) (*ProductPage, error) {
	cached, err := s.cache.GetListing(ctx, opts)
	if err == nil {
		return toPage(cached), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Cache read failed for listing: %v", err)
	}

	page, err := fetch(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	if err := s.cache.SetListing(ctx, opts, page); err != nil {
		s.logger.Warnf("Failed to cache listing: %v", err)
	}

	return toPage(page), nil
}
