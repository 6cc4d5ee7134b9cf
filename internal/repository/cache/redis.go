package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

// RedisCache implements read-through caching for products, listings and the
// category index.
type RedisCache struct {
	client        *redis.Client
	productTTL    time.Duration
	listingTTL    time.Duration
	categoriesTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productTTL, listingTTL, categoriesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:        client,
		productTTL:    productTTL,
		listingTTL:    listingTTL,
		categoriesTTL: categoriesTTL,
	}
}

// Product cache keys and methods

func (c *RedisCache) productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *RedisCache) productSKUKey(sku string) string {
	return fmt.Sprintf("product:sku:%s", sku)
}

// GetProduct retrieves a cached product by id
func (c *RedisCache) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.getProductByKey(ctx, c.productKey(id))
}

// GetProductBySKU retrieves a cached product by SKU
func (c *RedisCache) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return c.getProductByKey(ctx, c.productSKUKey(sku))
}

func (c *RedisCache) getProductByKey(ctx context.Context, key string) (*domain.Product, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var rec domain.ProductRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, err
	}

	return domain.ProductFromRecord(rec)
}

// SetProduct stores a product under both its id and SKU keys
func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	rec := product.Record()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.productKey(rec.ID), data, c.productTTL)
	pipe.Set(ctx, c.productSKUKey(rec.SKU), data, c.productTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateProduct removes a product from the cache by id and SKU
func (c *RedisCache) InvalidateProduct(ctx context.Context, id, sku string) error {
	return c.client.Unlink(ctx, c.productKey(id), c.productSKUKey(sku)).Err()
}

// Listing cache keys and methods

func (c *RedisCache) listingKey(opts domain.FilterOptions) string {
	return fmt.Sprintf(
		"products:list:%d:%d:%s:%s:%s:%s:%s:%s:%s:%s",
		opts.Page, opts.Limit, opts.SortBy, opts.SortOrder,
		opts.Category, floatTag(opts.MinPrice), floatTag(opts.MaxPrice),
		boolTag(opts.Active), boolTag(opts.InStock), opts.Search,
	)
}

func (c *RedisCache) listingKeysSet() string {
	return "products:list:cache_keys"
}

// listingPayload is the serialized form of one listing page.
type listingPayload struct {
	Records []domain.ProductRecord `json:"records"`
	Total   int                    `json:"total"`
}

// GetListing retrieves a cached listing page for the given filters
func (c *RedisCache) GetListing(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	opts = opts.Normalize()

	val, err := c.client.Get(ctx, c.listingKey(opts)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var payload listingPayload
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(payload.Records))
	for _, rec := range payload.Records {
		product, err := domain.ProductFromRecord(rec)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return domain.NewPaginatedProducts(products, payload.Total, opts.Page, opts.Limit), nil
}

// SetListing stores a listing page in cache and tracks the key in a SET
func (c *RedisCache) SetListing(ctx context.Context, opts domain.FilterOptions, page *domain.PaginatedProducts) error {
	opts = opts.Normalize()
	key := c.listingKey(opts)
	trackingKey := c.listingKeysSet()

	payload := listingPayload{
		Records: make([]domain.ProductRecord, 0, len(page.Data)),
		Total:   page.Total,
	}
	for _, product := range page.Data {
		payload.Records = append(payload.Records, product.Record())
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.listingTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.listingTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateListings removes all cached listing pages using SET-based tracking
func (c *RedisCache) InvalidateListings(ctx context.Context) error {
	trackingKey := c.listingKeysSet()

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}

// Category index cache keys and methods

func (c *RedisCache) categoriesKey() string {
	return "products:categories"
}

// GetCategories retrieves the cached category index
func (c *RedisCache) GetCategories(ctx context.Context) ([]string, error) {
	val, err := c.client.Get(ctx, c.categoriesKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal([]byte(val), &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

// SetCategories stores the category index in cache
func (c *RedisCache) SetCategories(ctx context.Context, categories []string) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.categoriesKey(), data, c.categoriesTTL).Err()
}

// InvalidateCatalog invalidates every derived view: listings and categories.
// Single product entries are invalidated separately because they need the SKU.
func (c *RedisCache) InvalidateCatalog(ctx context.Context) error {
	if err := c.InvalidateListings(ctx); err != nil && err != redis.Nil {
		return err
	}

	if err := c.client.Unlink(ctx, c.categoriesKey()).Err(); err != nil && err != redis.Nil {
		return err
	}

	return nil
}

func floatTag(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func boolTag(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}
