package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
	pkgvalidator "github.com/RaulAJaimes/eccomerce/internal/pkg/validator"
)

// SubjectCatalogEvents is the NATS subject every catalog event goes to.
const SubjectCatalogEvents = "catalog.events"

// Event types carried in ProductEvent.EventType.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventPriceChanged   = "product.price_changed"
	EventStockChanged   = "product.stock_changed"
	EventProductDeleted = "product.deleted"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Cache defines the caching surface the service depends on
type Cache interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateProduct(ctx context.Context, id, sku string) error
	GetListing(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error)
	SetListing(ctx context.Context, opts domain.FilterOptions, page *domain.PaginatedProducts) error
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
	InvalidateCatalog(ctx context.Context) error
}

// ProductEvent represents an event related to a catalog product
type ProductEvent struct {
	EventType string                  `json:"event_type"`
	Timestamp time.Time               `json:"timestamp"`
	ProductID string                  `json:"product_id"`
	Product   *domain.ProductSnapshot `json:"product,omitempty"`
	LowStock  bool                    `json:"low_stock,omitempty"`
}

// Service handles catalog business logic with caching and event publishing
type Service struct {
	repo      domain.ProductRepository
	cache     Cache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
	mu        sync.RWMutex
}

// NewService creates a new catalog service
func NewService(
	repo domain.ProductRepository,
	cache Cache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
	}
}

// CreateProduct registers a new product in the catalog
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, validationError(err)
	}

	sku := strings.TrimSpace(input.SKU)
	exists, err := s.repo.SKUExists(ctx, sku, "")
	if err != nil {
		s.logger.Error("Failed to check SKU", err)
		return nil, err
	}
	if exists {
		return nil, &domain.DuplicateSKUError{SKU: sku}
	}

	price, err := domain.NewPrice(input.Price, input.Currency)
	if err != nil {
		return nil, err
	}

	product, err := domain.NewProduct(domain.NewProductParams{
		Name:        input.Name,
		Description: input.Description,
		Price:       price,
		Stock:       input.Stock,
		SKU:         input.SKU,
		Category:    input.Category,
		Images:      input.Images,
		Active:      input.Active,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductCreated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"sku":        product.SKU(),
		"category":   product.Category(),
	}).Info("Product created successfully")

	return snapshotOf(product), nil
}

// UpdateProductInfo updates the descriptive fields of a product
func (s *Service) UpdateProductInfo(ctx context.Context, id string, input UpdateProductInfoInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.UpdateInfo(input.Name, input.Description, input.Category); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"category":   product.Category(),
	}).Info("Product updated successfully")

	return snapshotOf(product), nil
}

// ChangeProductPrice sets a new price on a product
func (s *Service) ChangeProductPrice(ctx context.Context, id string, input ChangePriceInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Price validation failed", err)
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	price, err := domain.NewPrice(input.Price, input.Currency)
	if err != nil {
		return nil, err
	}

	if err := product.UpdatePrice(price); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to update product price", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventPriceChanged, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"price":      product.Price().Amount(),
		"currency":   product.Price().Currency(),
	}).Info("Product price changed")

	return snapshotOf(product), nil
}

// ReduceProductStock removes quantity units from a product's stock
func (s *Service) ReduceProductStock(ctx context.Context, id string, input StockAdjustmentInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.ReduceStock(input.Quantity); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product stock", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventStockChanged, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"stock":      product.Stock(),
		"removed":    input.Quantity,
	}).Info("Product stock reduced")

	return snapshotOf(product), nil
}

// RestockProduct adds quantity units to a product's stock
func (s *Service) RestockProduct(ctx context.Context, id string, input StockAdjustmentInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.IncreaseStock(input.Quantity); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product stock", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventStockChanged, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"stock":      product.Stock(),
		"added":      input.Quantity,
	}).Info("Product restocked")

	return snapshotOf(product), nil
}

// SetProductStock sets the absolute stock level of a product
func (s *Service) SetProductStock(ctx context.Context, id string, input SetStockInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStock(ctx, product.ID(), input.Stock); err != nil {
		s.logger.Error("Failed to set product stock", err)
		return nil, err
	}

	// Re-read so the cache, event and response carry the stored state.
	fresh, err := s.repo.FindByID(ctx, product.ID())
	if err != nil {
		s.logger.Error("Failed to reload product after stock update", err)
		return nil, err
	}
	if fresh == nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: product.ID()}
	}

	s.refreshProduct(ctx, fresh)
	s.publishEvent(ctx, EventStockChanged, fresh)

	s.logger.WithFields(map[string]interface{}{
		"product_id": fresh.ID(),
		"stock":      fresh.Stock(),
	}).Info("Product stock set")

	return snapshotOf(fresh), nil
}

// ActivateProduct makes a product visible and sellable again. Activating an
// active product is a no-op.
func (s *Service) ActivateProduct(ctx context.Context, id string) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.IsActive() {
		return snapshotOf(product), nil
	}

	product.Activate()

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to activate product", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
	}).Info("Product activated")

	return snapshotOf(product), nil
}

// DeactivateProduct hides a product from sale. Deactivating an inactive
// product is a no-op.
func (s *Service) DeactivateProduct(ctx context.Context, id string) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if !product.IsActive() {
		return snapshotOf(product), nil
	}

	product.Deactivate()

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to deactivate product", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
	}).Info("Product deactivated")

	return snapshotOf(product), nil
}

// AddProductImages attaches image URLs to a product. URLs without a
// recognized image extension are dropped silently.
func (s *Service) AddProductImages(ctx context.Context, id string, input ImagesInput) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	before := len(product.Images())
	product.AddImages(input.Images)
	if len(product.Images()) == before {
		return snapshotOf(product), nil
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product images", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"images":     len(product.Images()),
	}).Info("Product images added")

	return snapshotOf(product), nil
}

// RemoveProductImage detaches an image URL from a product. Removing an
// absent URL is a no-op.
func (s *Service) RemoveProductImage(ctx context.Context, id, url string) (*domain.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &domain.ValidationError{Field: "url", Message: "is required"}
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	before := len(product.Images())
	product.RemoveImage(url)
	if len(product.Images()) == before {
		return snapshotOf(product), nil
	}

	if err := s.repo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product images", err)
		return nil, err
	}

	s.refreshProduct(ctx, product)
	s.publishEvent(ctx, EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"images":     len(product.Images()),
	}).Info("Product image removed")

	return snapshotOf(product), nil
}

// DeleteProduct removes a product permanently
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, product.ID()); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}

	s.dropProduct(ctx, product)
	s.publishEvent(ctx, EventProductDeleted, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID(),
		"sku":        product.SKU(),
	}).Info("Product deleted")

	return nil
}

// ImportProducts registers a batch of products in a single atomic write
func (s *Service) ImportProducts(ctx context.Context, input ImportInput) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Import validation failed", err)
		return nil, validationError(err)
	}

	products := make([]*domain.Product, 0, len(input.Products))
	for i, item := range input.Products {
		price, err := domain.NewPrice(item.Price, item.Currency)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}

		product, err := domain.NewProduct(domain.NewProductParams{
			Name:        item.Name,
			Description: item.Description,
			Price:       price,
			Stock:       item.Stock,
			SKU:         item.SKU,
			Category:    item.Category,
			Images:      item.Images,
			Active:      item.Active,
		})
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}

		products = append(products, product)
	}

	if err := s.repo.SaveMany(ctx, products); err != nil {
		s.logger.Error("Failed to import products", err)
		return nil, err
	}

	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate catalog cache: %v", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"imported": len(products),
	}).Info("Products imported")

	return &ImportResult{Imported: len(products)}, nil
}

// ApplyCategoryDiscount reduces the price of every active product in a
// category by the given percentage, in one atomic batch.
func (s *Service) ApplyCategoryDiscount(ctx context.Context, category string, input CategoryDiscountInput) (*DiscountResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, &domain.ValidationError{Field: "category", Message: "is required"}
	}

	active := true
	opts := domain.FilterOptions{
		Active:    &active,
		Limit:     domain.MaxLimit,
		SortBy:    "created_at",
		SortOrder: domain.SortAsc,
	}

	var discounted []*domain.Product
	for page := 1; ; page++ {
		opts.Page = page
		listing, err := s.repo.FindByCategory(ctx, category, opts)
		if err != nil {
			s.logger.Error("Failed to list category for discount", err)
			return nil, err
		}

		for _, product := range listing.Data {
			price, err := product.Price().ApplyDiscount(input.Percentage)
			if err != nil {
				return nil, err
			}
			if err := product.UpdatePrice(price); err != nil {
				return nil, err
			}
			discounted = append(discounted, product)
		}

		if !listing.HasNextPage {
			break
		}
	}

	if len(discounted) == 0 {
		return &DiscountResult{Category: category, Percentage: input.Percentage}, nil
	}

	if err := s.repo.UpdateMany(ctx, discounted); err != nil {
		s.logger.Error("Failed to apply category discount", err)
		return nil, err
	}

	for _, product := range discounted {
		if err := s.cache.InvalidateProduct(ctx, product.ID(), product.SKU()); err != nil {
			s.logger.Warnf("Failed to invalidate cache for product %s: %v", product.ID(), err)
		}
		s.publishEvent(ctx, EventPriceChanged, product)
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate catalog cache: %v", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"category":   category,
		"percentage": input.Percentage,
		"updated":    len(discounted),
	}).Info("Category discount applied")

	return &DiscountResult{Category: category, Percentage: input.Percentage, Updated: len(discounted)}, nil
}

// loadProduct fetches a product for a write path, bypassing the cache so
// read-modify-write always sees stored state.
func (s *Service) loadProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "is required"}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load product", err)
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}

	return product, nil
}

// refreshProduct re-warms the product entry and drops derived views after a
// write. Cache failures are logged, never surfaced: the store already holds
// the truth.
func (s *Service) refreshProduct(ctx context.Context, product *domain.Product) {
	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", product.ID(), err)
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate catalog cache: %v", err)
	}
}

// dropProduct removes the product entry and derived views after a delete.
func (s *Service) dropProduct(ctx context.Context, product *domain.Product) {
	if err := s.cache.InvalidateProduct(ctx, product.ID(), product.SKU()); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", product.ID(), err)
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate catalog cache: %v", err)
	}
}

// publishEvent publishes a product event (non-blocking)
func (s *Service) publishEvent(ctx context.Context, eventType string, product *domain.Product) {
	event := ProductEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: product.ID(),
		Product:   snapshotOf(product),
	}
	if eventType == EventStockChanged {
		event.LowStock = product.IsLowStock(0)
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", product.ID())
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), SubjectCatalogEvents, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for product %s", product.ID())
		}
	}()
}

// validationError converts a validator error into the domain taxonomy,
// keeping the first offending field.
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &domain.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		}
	}
	return &domain.ValidationError{Message: "invalid input"}
}
