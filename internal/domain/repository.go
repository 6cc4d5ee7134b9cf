package domain

import (
	"context"
)

// Pagination defaults shared by every repository implementation.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortOrder is the direction applied to a sorted listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterOptions narrows and paginates product listings. All filters combine
// with logical AND; nil pointer fields mean "no constraint".
type FilterOptions struct {
	Page      int
	Limit     int
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Active    *bool
	InStock   *bool
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// Normalize clamps page and limit to their allowed ranges and fills in
// defaults for anything unset.
func (o FilterOptions) Normalize() FilterOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.SortOrder != SortAsc && o.SortOrder != SortDesc {
		o.SortOrder = SortDesc
	}
	return o
}

// Offset converts the normalized page and limit into a row offset.
func (o FilterOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// PaginatedProducts is the uniform page shape returned by every listing
// operation.
type PaginatedProducts struct {
	Data        []*Product
	Total       int
	Page        int
	Limit       int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// NewPaginatedProducts assembles a page and derives the navigation fields
// from total, page and limit.
func NewPaginatedProducts(data []*Product, total, page, limit int) *PaginatedProducts {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &PaginatedProducts{
		Data:        data,
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && total > 0,
	}
}

// CategoryCount pairs a category with the number of products in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatusCount splits the catalog size by active flag.
type StatusCount struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ProductRepository defines the interface for product data access. Any
// implementation must honor the same contract:
//
//   - FindByID and FindBySKU return (nil, nil) when no product matches.
//   - Save is an upsert keyed by id and reports a duplicate-SKU condition
//     when a different product already holds the SKU.
//   - Delete reports not-found instead of succeeding silently.
//   - Listing operations return the uniform PaginatedProducts shape.
//   - Conflicting concurrent writes surface as a conflict condition rather
//     than silently overwriting.
type ProductRepository interface {
	// Save inserts the product or overwrites the stored version with the same id
	Save(ctx context.Context, product *Product) error

	// FindByID retrieves a product by id, nil when absent
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindBySKU retrieves a product by SKU, nil when absent
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// Delete removes a product permanently
	Delete(ctx context.Context, id string) error

	// FindAll retrieves a filtered, paginated listing
	FindAll(ctx context.Context, opts FilterOptions) (*PaginatedProducts, error)

	// FindByCategory retrieves a paginated listing restricted to one category
	FindByCategory(ctx context.Context, category string, opts FilterOptions) (*PaginatedProducts, error)

	// FindLowStock retrieves active products with 0 < stock < minStock
	FindLowStock(ctx context.Context, minStock int) ([]*Product, error)

	// Search retrieves a paginated listing matching term against name,
	// description or SKU, case-insensitively; an empty term matches everything
	Search(ctx context.Context, term string, opts FilterOptions) (*PaginatedProducts, error)

	// UpdateStock sets the absolute stock level of a product
	UpdateStock(ctx context.Context, id string, stock int) error

	// CheckStockAvailability reports whether the product holds at least
	// quantity units; an unknown id reports false without an error
	CheckStockAvailability(ctx context.Context, id string, quantity int) (bool, error)

	// TotalInventoryValue returns the summed stock quantities of the whole
	// catalog. Despite the name it does not weight units by price.
	TotalInventoryValue(ctx context.Context) (float64, error)

	// SaveMany upserts a batch of products
	SaveMany(ctx context.Context, products []*Product) error

	// UpdateMany overwrites a batch of existing products
	UpdateMany(ctx context.Context, products []*Product) error

	// Count returns the total number of products
	Count(ctx context.Context) (int, error)

	// CountByCategory returns per-category product counts
	CountByCategory(ctx context.Context) ([]CategoryCount, error)

	// CountByStatus returns product counts split by active flag
	CountByStatus(ctx context.Context) (StatusCount, error)

	// SKUExists reports whether a product other than excludeID holds the SKU;
	// an empty excludeID checks the whole catalog
	SKUExists(ctx context.Context, sku string, excludeID string) (bool, error)

	// Categories returns the distinct categories in use, sorted
	Categories(ctx context.Context) ([]string, error)

	// TopSelling returns up to limit active products ranked by stock
	// depletion, a stand-in until real sales figures exist
	TopSelling(ctx context.Context, limit int) ([]*Product, error)

	// RecentlyAdded returns up to limit products, newest first
	RecentlyAdded(ctx context.Context, limit int) ([]*Product, error)
}
