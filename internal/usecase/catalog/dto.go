package catalog

import (
	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

// CreateProductInput carries the fields accepted when registering a product.
// Validator tags reject malformed input early; the domain constructors stay
// the authority on business invariants.
type CreateProductInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Price       float64  `json:"price" validate:"gte=0,lte=1000000"`
	Currency    string   `json:"currency" validate:"omitempty,currency"`
	Stock       int      `json:"stock" validate:"gte=0"`
	SKU         string   `json:"sku" validate:"required,min=3"`
	Category    string   `json:"category" validate:"required"`
	Images      []string `json:"images"`
	Active      *bool    `json:"active"`
}

// UpdateProductInfoInput carries the editable descriptive fields.
type UpdateProductInfoInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"required"`
}

// ChangePriceInput carries a new price for a product.
type ChangePriceInput struct {
	Price    float64 `json:"price" validate:"gte=0,lte=1000000"`
	Currency string  `json:"currency" validate:"omitempty,currency"`
}

// StockAdjustmentInput carries a relative stock movement.
type StockAdjustmentInput struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// SetStockInput carries an absolute stock level.
type SetStockInput struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// ImagesInput carries image URLs to attach to a product.
type ImagesInput struct {
	Images []string `json:"images" validate:"required,min=1"`
}

// ImportInput carries a batch of products to register in one shot.
type ImportInput struct {
	Products []CreateProductInput `json:"products" validate:"required,min=1,dive"`
}

// CategoryDiscountInput carries the discount applied to a whole category.
type CategoryDiscountInput struct {
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// ProductSummary is the compact projection listings and lookups return:
// what a storefront needs to render a purchase row.
type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Stock    int     `json:"stock"`
}

// ProductPage is a paginated listing of product summaries.
type ProductPage struct {
	Data        []ProductSummary `json:"data"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalPages  int              `json:"totalPages"`
	HasNextPage bool             `json:"hasNextPage"`
	HasPrevPage bool             `json:"hasPrevPage"`
}

// AvailabilityResult reports whether a product can cover a requested quantity.
type AvailabilityResult struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available bool   `json:"available"`
}

// CatalogOverview aggregates the catalog statistics in one projection.
// TotalInventoryUnits carries the repository's inventory figure, which sums
// stock quantities without weighting by price.
type CatalogOverview struct {
	TotalProducts       int                    `json:"total_products"`
	ByCategory          []domain.CategoryCount `json:"by_category"`
	ByStatus            domain.StatusCount     `json:"by_status"`
	TotalInventoryUnits float64                `json:"total_inventory_units"`
}

// ImportResult reports the outcome of a batch import.
type ImportResult struct {
	Imported int `json:"imported"`
}

// DiscountResult reports the outcome of a category-wide discount.
type DiscountResult struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Updated    int     `json:"updated"`
}

func summarize(product *domain.Product) ProductSummary {
	return ProductSummary{
		ID:       product.ID(),
		Name:     product.Name(),
		Price:    product.Price().Amount(),
		Currency: product.Price().Currency(),
		Stock:    product.Stock(),
	}
}

func summarizeAll(products []*domain.Product) []ProductSummary {
	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		summaries = append(summaries, summarize(product))
	}
	return summaries
}

func toPage(page *domain.PaginatedProducts) *ProductPage {
	return &ProductPage{
		Data:        summarizeAll(page.Data),
		Total:       page.Total,
		Page:        page.Page,
		Limit:       page.Limit,
		TotalPages:  page.TotalPages,
		HasNextPage: page.HasNextPage,
		HasPrevPage: page.HasPrevPage,
	}
}

func snapshotOf(product *domain.Product) *domain.ProductSnapshot {
	snap := product.Snapshot()
	return &snap
}
