package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// It keeps plain records behind a mutex and rehydrates entities on the way out,
// so callers never share state with the store. Meant for tests and for running
// the API without PostgreSQL.
type ProductRepository struct {
	mu      sync.RWMutex
	records map[string]domain.ProductRecord
}

// NewProductRepository creates an empty in-memory product repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{records: make(map[string]domain.ProductRecord)}
}

// Save upserts the product keyed by id. A SKU held by a different product
// is rejected as a duplicate.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	rec := cloneRecord(product.Record())

	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, taken := skuHolder(r.records, rec.SKU); taken && holder != rec.ID {
		return &domain.DuplicateSKUError{SKU: rec.SKU}
	}

	r.records[rec.ID] = rec
	return nil
}

// FindByID retrieves a product by id, nil when absent
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return rehydrate(rec)
}

// FindBySKU retrieves a product by SKU, nil when absent
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.SKU == sku {
			return rehydrate(rec)
		}
	}
	return nil, nil
}

// Delete removes a product permanently
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}

	delete(r.records, id)
	return nil
}

// FindAll retrieves a filtered, paginated listing
func (r *ProductRepository) FindAll(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	opts = opts.Normalize()

	r.mu.RLock()
	matched := r.matching(opts)
	r.mu.RUnlock()

	sortRecords(matched, opts.SortBy, opts.SortOrder)

	total := len(matched)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	products, err := rehydrateAll(matched[start:end])
	if err != nil {
		return nil, err
	}

	return domain.NewPaginatedProducts(products, total, opts.Page, opts.Limit), nil
}

// FindByCategory retrieves a paginated listing restricted to one category
func (r *ProductRepository) FindByCategory(ctx context.Context, category string, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	opts.Category = category
	return r.FindAll(ctx, opts)
}

// Search retrieves a paginated listing matching term against name,
// description or SKU. An empty term matches everything.
func (r *ProductRepository) Search(ctx context.Context, term string, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	opts.Search = term
	return r.FindAll(ctx, opts)
}

// FindLowStock retrieves active products with 0 < stock < minStock
func (r *ProductRepository) FindLowStock(ctx context.Context, minStock int) ([]*domain.Product, error) {
	if minStock <= 0 {
		minStock = domain.DefaultMinStock
	}

	r.mu.RLock()
	var matched []domain.ProductRecord
	for _, rec := range r.records {
		if rec.Active && rec.Stock > 0 && rec.Stock < minStock {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Stock != matched[j].Stock {
			return matched[i].Stock < matched[j].Stock
		}
		return matched[i].ID < matched[j].ID
	})

	return rehydrateAll(matched)
}

// UpdateStock sets the absolute stock level of a product
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return &domain.ValidationError{Field: "stock", Message: "must not be negative"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}

	rec.Stock = stock
	rec.UpdatedAt = time.Now().UTC()
	r.records[id] = rec
	return nil
}

// CheckStockAvailability reports whether the product holds at least quantity
// units. An unknown id reports false without an error.
func (r *ProductRepository) CheckStockAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return rec.Stock >= quantity, nil
}

// TotalInventoryValue returns the summed stock quantities of the whole
// catalog. Despite the name it does not weight units by price.
func (r *ProductRepository) TotalInventoryValue(ctx context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, rec := range r.records {
		total += float64(rec.Stock)
	}
	return total, nil
}

// SaveMany upserts a batch of products atomically. A duplicate SKU anywhere
// in the batch leaves the store untouched.
func (r *ProductRepository) SaveMany(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := stageRecords(r.records, len(products))
	for _, product := range products {
		rec := cloneRecord(product.Record())
		if holder, taken := skuHolder(next, rec.SKU); taken && holder != rec.ID {
			return &domain.DuplicateSKUError{SKU: rec.SKU}
		}
		next[rec.ID] = rec
	}

	r.records = next
	return nil
}

// UpdateMany overwrites a batch of existing products atomically. Any missing
// product aborts the whole batch.
func (r *ProductRepository) UpdateMany(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := stageRecords(r.records, 0)
	for _, product := range products {
		rec := cloneRecord(product.Record())
		if _, ok := next[rec.ID]; !ok {
			return &domain.NotFoundError{Entity: "product", ID: rec.ID}
		}
		if holder, taken := skuHolder(next, rec.SKU); taken && holder != rec.ID {
			return &domain.DuplicateSKUError{SKU: rec.SKU}
		}
		next[rec.ID] = rec
	}

	r.records = next
	return nil
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// CountByCategory returns per-category product counts, biggest first
func (r *ProductRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	r.mu.RLock()
	byCategory := make(map[string]int)
	for _, rec := range r.records {
		byCategory[rec.Category]++
	}
	r.mu.RUnlock()

	counts := make([]domain.CategoryCount, 0, len(byCategory))
	for category, count := range byCategory {
		counts = append(counts, domain.CategoryCount{Category: category, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})

	return counts, nil
}

// CountByStatus returns product counts split by active flag
func (r *ProductRepository) CountByStatus(ctx context.Context) (domain.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts domain.StatusCount
	for _, rec := range r.records {
		if rec.Active {
			counts.Active++
		} else {
			counts.Inactive++
		}
	}
	return counts, nil
}

// SKUExists reports whether a product other than excludeID holds the SKU.
func (r *ProductRepository) SKUExists(ctx context.Context, sku string, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holder, taken := skuHolder(r.records, sku)
	return taken && holder != excludeID, nil
}

// Categories returns the distinct categories in use, sorted
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, rec := range r.records {
		seen[rec.Category] = struct{}{}
	}
	r.mu.RUnlock()

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return categories, nil
}

// TopSelling returns up to limit active products ranked by stock depletion.
func (r *ProductRepository) TopSelling(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit < 1 {
		limit = domain.DefaultLimit
	}

	r.mu.RLock()
	var matched []domain.ProductRecord
	for _, rec := range r.records {
		if rec.Active {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Stock != matched[j].Stock {
			return matched[i].Stock < matched[j].Stock
		}
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return rehydrateAll(matched)
}

// RecentlyAdded returns up to limit products, newest first.
func (r *ProductRepository) RecentlyAdded(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit < 1 {
		limit = domain.DefaultLimit
	}

	r.mu.RLock()
	matched := make([]domain.ProductRecord, 0, len(r.records))
	for _, rec := range r.records {
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return rehydrateAll(matched)
}

// matching collects records passing every filter. Callers hold the read lock.
func (r *ProductRepository) matching(opts domain.FilterOptions) []domain.ProductRecord {
	term := strings.ToLower(strings.TrimSpace(opts.Search))

	var matched []domain.ProductRecord
	for _, rec := range r.records {
		if opts.Category != "" && rec.Category != opts.Category {
			continue
		}
		if opts.MinPrice != nil && rec.PriceAmount < *opts.MinPrice {
			continue
		}
		if opts.MaxPrice != nil && rec.PriceAmount > *opts.MaxPrice {
			continue
		}
		if opts.Active != nil && rec.Active != *opts.Active {
			continue
		}
		if opts.InStock != nil && *opts.InStock != (rec.Stock > 0) {
			continue
		}
		if term != "" && !matchesTerm(rec, term) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}

func matchesTerm(rec domain.ProductRecord, term string) bool {
	return strings.Contains(strings.ToLower(rec.Name), term) ||
		strings.Contains(strings.ToLower(rec.Description), term) ||
		strings.Contains(strings.ToLower(rec.SKU), term)
}

// sortRecords orders records by the listing sort column, ties broken by id
// so pagination stays stable across calls.
func sortRecords(records []domain.ProductRecord, sortBy string, order domain.SortOrder) {
	asc := order == domain.SortAsc

	sort.Slice(records, func(i, j int) bool {
		less, equal := compareRecords(records[i], records[j], sortBy)
		if equal {
			return records[i].ID < records[j].ID
		}
		if asc {
			return less
		}
		return !less
	})
}

func compareRecords(a, b domain.ProductRecord, sortBy string) (less, equal bool) {
	switch sortBy {
	case "name":
		return a.Name < b.Name, a.Name == b.Name
	case "price":
		return a.PriceAmount < b.PriceAmount, a.PriceAmount == b.PriceAmount
	case "stock":
		return a.Stock < b.Stock, a.Stock == b.Stock
	case "sku":
		return a.SKU < b.SKU, a.SKU == b.SKU
	case "category":
		return a.Category < b.Category, a.Category == b.Category
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

// skuHolder returns the id of the record holding sku, if any. Callers hold
// the lock.
func skuHolder(records map[string]domain.ProductRecord, sku string) (string, bool) {
	for id, rec := range records {
		if rec.SKU == sku {
			return id, true
		}
	}
	return "", false
}

// stageRecords copies the current state so batch writes can abort without
// partial effects.
func stageRecords(records map[string]domain.ProductRecord, extra int) map[string]domain.ProductRecord {
	next := make(map[string]domain.ProductRecord, len(records)+extra)
	for id, rec := range records {
		next[id] = rec
	}
	return next
}

func cloneRecord(rec domain.ProductRecord) domain.ProductRecord {
	images := make([]string, len(rec.Images))
	copy(images, rec.Images)
	rec.Images = images
	return rec
}

func rehydrate(rec domain.ProductRecord) (*domain.Product, error) {
	product, err := domain.ProductFromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("rehydrating product %s: %w", rec.ID, err)
	}
	return product, nil
}

func rehydrateAll(records []domain.ProductRecord) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(records))
	for _, rec := range records {
		product, err := rehydrate(rec)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
