package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for Product.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MinSKULength         = 3

	// DefaultMinStock is the threshold used by stock queries when the caller
	// passes a non-positive minimum.
	DefaultMinStock = 5
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Product is the catalog aggregate. It owns its Price, keeps stock
// non-negative and rejects price and stock mutations while deactivated.
// Instances are built only through NewProduct and ProductFromRecord, so an
// invalid Product is never observable.
type Product struct {
	id          string
	name        string
	description string
	price       Price
	stock       int
	sku         string
	category    string
	images      []string
	active      bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProductParams carries the caller-supplied fields for NewProduct.
// Active defaults to true when nil.
type NewProductParams struct {
	Name        string
	Description string
	Price       Price
	Stock       int
	SKU         string
	Category    string
	Images      []string
	Active      *bool
}

// ProductRecord is the persisted shape of a Product. Adapters map their
// storage rows onto it and rebuild the aggregate through ProductFromRecord.
type ProductRecord struct {
	ID          string
	Name        string
	Description string
	PriceAmount float64
	Currency    string
	Stock       int
	SKU         string
	Category    string
	Images      []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductSnapshot is a plain projection for presentation layers. It carries
// no domain types, so handlers can serialize it directly.
type ProductSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"sku"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProduct creates a product from user-supplied values. It generates the
// id, stamps both timestamps with the current time and activates the product
// unless params.Active says otherwise.
func NewProduct(params NewProductParams) (*Product, error) {
	if params.Price.currency == "" {
		return nil, &ValidationError{Field: "price", Message: "is required"}
	}
	active := true
	if params.Active != nil {
		active = *params.Active
	}
	now := time.Now().UTC()
	return newProduct(ProductRecord{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Description: params.Description,
		PriceAmount: params.Price.Amount(),
		Currency:    params.Price.Currency(),
		Stock:       params.Stock,
		SKU:         params.SKU,
		Category:    params.Category,
		Images:      params.Images,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// ProductFromRecord rehydrates a product from storage, preserving id,
// timestamps and the active flag. Validation is the same as NewProduct.
func ProductFromRecord(rec ProductRecord) (*Product, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, &ValidationError{Field: "id", Message: "is required"}
	}
	if rec.CreatedAt.IsZero() {
		return nil, &ValidationError{Field: "createdAt", Message: "is required"}
	}
	if rec.UpdatedAt.IsZero() {
		return nil, &ValidationError{Field: "updatedAt", Message: "is required"}
	}
	return newProduct(rec)
}

// newProduct is the single validation funnel both factories go through.
func newProduct(rec ProductRecord) (*Product, error) {
	name, err := validateName(rec.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(rec.Description)
	if err != nil {
		return nil, err
	}
	sku, err := validateSKU(rec.SKU)
	if err != nil {
		return nil, err
	}
	category, err := validateCategory(rec.Category)
	if err != nil {
		return nil, err
	}
	if rec.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Message: "must not be negative"}
	}
	price, err := PriceFromRecord(rec.PriceAmount, rec.Currency)
	if err != nil {
		return nil, err
	}
	return &Product{
		id:          rec.ID,
		name:        name,
		description: description,
		price:       price,
		stock:       rec.Stock,
		sku:         sku,
		category:    category,
		images:      filterImageURLs(rec.Images),
		active:      rec.Active,
		createdAt:   rec.CreatedAt,
		updatedAt:   rec.UpdatedAt,
	}, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", &ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}
	return name, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", &ValidationError{Field: "description", Message: "must be at most 500 characters"}
	}
	return description, nil
}

func validateSKU(sku string) (string, error) {
	sku = strings.TrimSpace(sku)
	if utf8.RuneCountInString(sku) < MinSKULength {
		return "", &ValidationError{Field: "sku", Message: "must be at least 3 characters"}
	}
	return sku, nil
}

func validateCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", &ValidationError{Field: "category", Message: "is required"}
	}
	return category, nil
}

// filterImageURLs keeps only URLs with a recognized image extension,
// preserving order. Invalid entries are dropped silently.
func filterImageURLs(urls []string) []string {
	filtered := make([]string, 0, len(urls))
	for _, url := range urls {
		if isImageURL(url) {
			filtered = append(filtered, strings.TrimSpace(url))
		}
	}
	return filtered
}

func isImageURL(url string) bool {
	url = strings.ToLower(strings.TrimSpace(url))
	if url == "" {
		return false
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Name returns the product name.
func (p *Product) Name() string { return p.name }

// Description returns the product description.
func (p *Product) Description() string { return p.description }

// Price returns the current price. Price is an immutable value, so sharing
// it does not break encapsulation.
func (p *Product) Price() Price { return p.price }

// Stock returns the units on hand.
func (p *Product) Stock() int { return p.stock }

// SKU returns the stock keeping unit.
func (p *Product) SKU() string { return p.sku }

// Category returns the product category.
func (p *Product) Category() string { return p.category }

// Images returns a copy of the image URLs, preserving order.
func (p *Product) Images() []string {
	images := make([]string, len(p.images))
	copy(images, p.images)
	return images
}

// IsActive reports whether the product accepts price and stock mutations.
func (p *Product) IsActive() bool { return p.active }

// CreatedAt returns the creation timestamp.
func (p *Product) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// ReduceStock removes quantity units from stock. The product must be active,
// the quantity positive and covered by the units on hand.
func (p *Product) ReduceStock(quantity int) error {
	if !p.active {
		return &InactiveProductError{ID: p.id, Operation: "reduce stock"}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if p.stock < quantity {
		return &InsufficientStockError{ID: p.id, Available: p.stock, Requested: quantity}
	}
	p.stock -= quantity
	p.touch()
	return nil
}

// IncreaseStock adds quantity units to stock. Restocking is permitted even
// while the product is inactive.
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	p.stock += quantity
	p.touch()
	return nil
}

// UpdatePrice replaces the price. The product must be active.
func (p *Product) UpdatePrice(newPrice Price) error {
	if !p.active {
		return &InactiveProductError{ID: p.id, Operation: "update price"}
	}
	if newPrice.currency == "" {
		return &ValidationError{Field: "price", Message: "is required"}
	}
	p.price = newPrice
	p.touch()
	return nil
}

// UpdateInfo replaces name, description and category after re-validating them.
func (p *Product) UpdateInfo(name, description, category string) error {
	validName, err := validateName(name)
	if err != nil {
		return err
	}
	validDescription, err := validateDescription(description)
	if err != nil {
		return err
	}
	validCategory, err := validateCategory(category)
	if err != nil {
		return err
	}
	p.name = validName
	p.description = validDescription
	p.category = validCategory
	p.touch()
	return nil
}

// AddImages appends the URLs that carry a recognized image extension,
// preserving order. Invalid URLs are dropped silently and adding nothing is
// not an error.
func (p *Product) AddImages(urls []string) {
	valid := filterImageURLs(urls)
	if len(valid) == 0 {
		return
	}
	p.images = append(p.images, valid...)
	p.touch()
}

// RemoveImage removes every exact-match occurrence of url. Removing an
// absent URL is a no-op.
func (p *Product) RemoveImage(url string) {
	kept := make([]string, 0, len(p.images))
	removed := false
	for _, img := range p.images {
		if img == url {
			removed = true
			continue
		}
		kept = append(kept, img)
	}
	if !removed {
		return
	}
	p.images = kept
	p.touch()
}

// Activate enables price and stock mutations. Activating an active product
// is a no-op.
func (p *Product) Activate() {
	if p.active {
		return
	}
	p.active = true
	p.touch()
}

// Deactivate disables price and stock mutations. Deactivating an inactive
// product is a no-op.
func (p *Product) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.touch()
}

// HasStock reports whether any units are on hand.
func (p *Product) HasStock() bool { return p.stock > 0 }

// HasMinimumStock reports whether stock covers min. A non-positive min falls
// back to DefaultMinStock.
func (p *Product) HasMinimumStock(min int) bool {
	if min <= 0 {
		min = DefaultMinStock
	}
	return p.stock >= min
}

// IsLowStock reports whether stock is positive but below min. A non-positive
// min falls back to DefaultMinStock.
func (p *Product) IsLowStock(min int) bool {
	if min <= 0 {
		min = DefaultMinStock
	}
	return p.stock > 0 && p.stock < min
}

// IsOutOfStock reports whether stock is exhausted.
func (p *Product) IsOutOfStock() bool { return p.stock == 0 }

// InventoryValue returns price multiplied by the units on hand. A product
// with zero stock has no inventory value and yields a validation error.
func (p *Product) InventoryValue() (Price, error) {
	return p.price.Multiply(p.stock)
}

// Snapshot projects the product to plain data for presentation.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Price:       p.price.Amount(),
		Currency:    p.price.Currency(),
		Stock:       p.stock,
		SKU:         p.sku,
		Category:    p.category,
		Images:      p.Images(),
		IsActive:    p.active,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

// Record projects the product to its persisted shape.
func (p *Product) Record() ProductRecord {
	return ProductRecord{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		PriceAmount: p.price.Amount(),
		Currency:    p.price.Currency(),
		Stock:       p.stock,
		SKU:         p.sku,
		Category:    p.category,
		Images:      p.Images(),
		Active:      p.active,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

func (p *Product) touch() {
	p.updatedAt = time.Now().UTC()
}
