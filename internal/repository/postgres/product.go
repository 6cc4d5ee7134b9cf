package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

const productColumns = `id, name, description, price, currency, stock, sku, category, images, is_active, created_at, updated_at`

// Columns a listing may sort on. Anything else falls back to created_at so
// user input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"sku":        "sku",
	"category":   "category",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// productRow mirrors the products table.
type productRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Price       float64        `db:"price"`
	Currency    string         `db:"currency"`
	Stock       int            `db:"stock"`
	SKU         string         `db:"sku"`
	Category    string         `db:"category"`
	Images      pq.StringArray `db:"images"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func rowFromProduct(p *domain.Product) productRow {
	rec := p.Record()
	return productRow{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.PriceAmount,
		Currency:    rec.Currency,
		Stock:       rec.Stock,
		SKU:         rec.SKU,
		Category:    rec.Category,
		Images:      pq.StringArray(rec.Images),
		IsActive:    rec.Active,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func (row productRow) toDomain() (*domain.Product, error) {
	product, err := domain.ProductFromRecord(domain.ProductRecord{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		PriceAmount: row.Price,
		Currency:    row.Currency,
		Stock:       row.Stock,
		SKU:         row.SKU,
		Category:    row.Category,
		Images:      []string(row.Images),
		Active:      row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("rehydrating product %s: %w", row.ID, err)
	}
	return product, nil
}

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Save upserts the product keyed by id. A SKU held by a different product
// surfaces as a duplicate-SKU error via the unique index.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	row := rowFromProduct(product)
	if err := upsertProduct(ctx, r.db, row); err != nil {
		return translateError(err, row.ID, row.SKU)
	}
	return nil
}

func upsertProduct(ctx context.Context, ext sqlx.ExtContext, row productRow) error {
	query := `
		INSERT INTO products (id, name, description, price, currency, stock, sku, category, images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			stock = EXCLUDED.stock,
			sku = EXCLUDED.sku,
			category = EXCLUDED.category,
			images = EXCLUDED.images,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := ext.ExecContext(
		ctx,
		query,
		row.ID,
		row.Name,
		row.Description,
		row.Price,
		row.Currency,
		row.Stock,
		row.SKU,
		row.Category,
		row.Images,
		row.IsActive,
		row.CreatedAt,
		row.UpdatedAt,
	)
	return err
}

// FindByID retrieves a product by id, nil when absent
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toDomain()
}

// FindBySKU retrieves a product by SKU, nil when absent
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toDomain()
}

// Delete removes a product permanently
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}

	return nil
}

// FindAll retrieves a filtered, paginated listing
func (r *ProductRepository) FindAll(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	opts = opts.Normalize()
	where, args := buildFilters(opts)

	countQuery := `SELECT COUNT(*) FROM products` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, err
	}

	column := sortColumns[opts.SortBy]
	if column == "" {
		column = "created_at"
	}
	direction := "DESC"
	if opts.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, column, direction, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset())

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, err
	}

	products, err := rowsToDomain(rows)
	if err != nil {
		return nil, err
	}

	return domain.NewPaginatedProducts(products, total, opts.Page, opts.Limit), nil
}

// buildFilters renders the WHERE clause for the AND-combined filter options.
func buildFilters(opts domain.FilterOptions) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if opts.Category != "" {
		args = append(args, opts.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.MinPrice != nil {
		args = append(args, *opts.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if opts.MaxPrice != nil {
		args = append(args, *opts.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if opts.Active != nil {
		args = append(args, *opts.Active)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if opts.InStock != nil {
		if *opts.InStock {
			clauses = append(clauses, "stock > 0")
		} else {
			clauses = append(clauses, "stock = 0")
		}
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		args = append(args, "%"+term+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
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

	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE AND stock > 0 AND stock < $1
		ORDER BY stock ASC`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, minStock); err != nil {
		return nil, err
	}

	return rowsToDomain(rows)
}

// UpdateStock sets the absolute stock level of a product
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return &domain.ValidationError{Field: "stock", Message: "must not be negative"}
	}

	query := `UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, stock, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}

	return nil
}

// CheckStockAvailability reports whether the product holds at least quantity
// units. An unknown id reports false without an error.
func (r *ProductRepository) CheckStockAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	query := `SELECT stock >= $2 FROM products WHERE id = $1`

	var available bool
	err := r.db.GetContext(ctx, &available, query, id, quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return available, nil
}

// TotalInventoryValue returns the summed stock quantities of the whole
// catalog. Despite the name it does not weight units by price.
func (r *ProductRepository) TotalInventoryValue(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(stock), 0) FROM products`

	var total float64
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, err
	}

	return total, nil
}

// SaveMany upserts a batch of products inside one transaction.
func (r *ProductRepository) SaveMany(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, product := range products {
		row := rowFromProduct(product)
		if err := upsertProduct(ctx, tx, row); err != nil {
			return translateError(err, row.ID, row.SKU)
		}
	}

	return tx.Commit()
}

// UpdateMany overwrites a batch of existing products inside one transaction.
// Any missing product aborts the whole batch.
func (r *ProductRepository) UpdateMany(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, currency = $5, stock = $6,
			sku = $7, category = $8, images = $9, is_active = $10, updated_at = $11
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, product := range products {
		row := rowFromProduct(product)
		result, err := tx.ExecContext(
			ctx,
			query,
			row.ID,
			row.Name,
			row.Description,
			row.Price,
			row.Currency,
			row.Stock,
			row.SKU,
			row.Category,
			row.Images,
			row.IsActive,
			row.UpdatedAt,
		)
		if err != nil {
			return translateError(err, row.ID, row.SKU)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &domain.NotFoundError{Entity: "product", ID: row.ID}
		}
	}

	return tx.Commit()
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}

	return count, nil
}

// CountByCategory returns per-category product counts, biggest first
func (r *ProductRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*) AS count
		FROM products
		GROUP BY category
		ORDER BY count DESC, category ASC
	`

	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make([]domain.CategoryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.CategoryCount{Category: row.Category, Count: row.Count})
	}

	return counts, nil
}

// CountByStatus returns product counts split by active flag
func (r *ProductRepository) CountByStatus(ctx context.Context) (domain.StatusCount, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM products
	`

	var row struct {
		Active   int `db:"active"`
		Inactive int `db:"inactive"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return domain.StatusCount{}, err
	}

	return domain.StatusCount{Active: row.Active, Inactive: row.Inactive}, nil
}

// SKUExists reports whether a product other than excludeID holds the SKU.
func (r *ProductRepository) SKUExists(ctx context.Context, sku string, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`
	args := []interface{}{sku}

	if excludeID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND id <> $2)`
		args = append(args, excludeID)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, err
	}

	return exists, nil
}

// Categories returns the distinct categories in use, sorted
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products ORDER BY category ASC`

	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}

	return categories, nil
}

// TopSelling returns up to limit active products ranked by stock depletion.
func (r *ProductRepository) TopSelling(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit < 1 {
		limit = domain.DefaultLimit
	}

	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE
		ORDER BY stock ASC, updated_at DESC
		LIMIT $1`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	return rowsToDomain(rows)
}

// RecentlyAdded returns up to limit products, newest first.
func (r *ProductRepository) RecentlyAdded(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit < 1 {
		limit = domain.DefaultLimit
	}

	query := `SELECT ` + productColumns + ` FROM products
		ORDER BY created_at DESC
		LIMIT $1`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	return rowsToDomain(rows)
}

func rowsToDomain(rows []productRow) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		product, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// translateError maps PostgreSQL error codes onto the domain taxonomy.
func translateError(err error, id, sku string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505":
		if strings.Contains(pqErr.Constraint, "sku") {
			return &domain.DuplicateSKUError{SKU: sku}
		}
		return &domain.ConflictError{Entity: "product", ID: id}
	case "40001", "40P01":
		// Serialization failure or deadlock between concurrent writers.
		return &domain.ConflictError{Entity: "product", ID: id}
	}

	return err
}
