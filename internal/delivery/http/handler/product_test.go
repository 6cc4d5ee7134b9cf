package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
	"github.com/RaulAJaimes/eccomerce/internal/usecase/catalog"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindAll(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedProducts), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	args := m.Called(ctx, category, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedProducts), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, minStock int) ([]*domain.Product, error) {
	args := m.Called(ctx, minStock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, term string, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	args := m.Called(ctx, term, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedProducts), args.Error(1)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockProductRepository) CheckStockAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) TotalInventoryValue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockProductRepository) SaveMany(ctx context.Context, products []*domain.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateMany(ctx context.Context, products []*domain.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryCount), args.Error(1)
}

func (m *MockProductRepository) CountByStatus(ctx context.Context) (domain.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StatusCount), args.Error(1)
}

func (m *MockProductRepository) SKUExists(ctx context.Context, sku string, excludeID string) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) TopSelling(ctx context.Context, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) RecentlyAdded(ctx context.Context, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// MockCache is a mock implementation of catalog.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCache) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCache) SetProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCache) InvalidateProduct(ctx context.Context, id, sku string) error {
	args := m.Called(ctx, id, sku)
	return args.Error(0)
}

func (m *MockCache) GetListing(ctx context.Context, opts domain.FilterOptions) (*domain.PaginatedProducts, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedProducts), args.Error(1)
}

func (m *MockCache) SetListing(ctx context.Context, opts domain.FilterOptions, page *domain.PaginatedProducts) error {
	args := m.Called(ctx, opts, page)
	return args.Error(0)
}

func (m *MockCache) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCache) SetCategories(ctx context.Context, categories []string) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *MockCache) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of catalog.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func setupHandler() (*ProductHandler, *MockProductRepository, *MockCache, *MockEventPublisher) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := catalog.NewService(mockRepo, mockCache, mockPublisher, log)
	return NewProductHandler(service, log), mockRepo, mockCache, mockPublisher
}

func testProduct(t *testing.T, id string, stock int) *domain.Product {
	t.Helper()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	product, err := domain.ProductFromRecord(domain.ProductRecord{
		ID:          id,
		Name:        "Mechanical Keyboard",
		Description: "Tenkeyless, hot-swappable switches",
		PriceAmount: 129.99,
		Currency:    "USD",
		Stock:       stock,
		SKU:         "KB-" + id,
		Category:    "peripherals",
		Images:      []string{"https://cdn.example.com/kb.jpg"},
		Active:      true,
		CreatedAt:   created,
		UpdatedAt:   created,
	})
	require.NoError(t, err)
	return product
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestProductHandler_Create_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	requestBody := catalog.CreateProductInput{
		Name:     "Mechanical Keyboard",
		Price:    129.99,
		Currency: "USD",
		Stock:    10,
		SKU:      "KB-TKL-001",
		Category: "peripherals",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mockRepo.On("SKUExists", mock.Anything, "KB-TKL-001", "").Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.SKU() == "KB-TKL-001" && p.Stock() == 10
	})).Return(nil)
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response, "data")

	data := response["data"].(map[string]any)
	assert.Equal(t, "KB-TKL-001", data["sku"])
	assert.Equal(t, 129.99, data["price"])
}

func TestProductHandler_Create_InvalidJSON(t *testing.T) {
	handler, _, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "Invalid request body")
}

func TestProductHandler_Create_ValidationError(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	requestBody := catalog.CreateProductInput{
		Name:     "", // Invalid: empty name
		Price:    129.99,
		SKU:      "KB-TKL-001",
		Category: "peripherals",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductHandler_Create_DuplicateSKU(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	requestBody := catalog.CreateProductInput{
		Name:     "Mechanical Keyboard",
		Price:    129.99,
		Stock:    10,
		SKU:      "KB-TKL-001",
		Category: "peripherals",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mockRepo.On("SKUExists", mock.Anything, "KB-TKL-001", "").Return(true, nil)

	handler.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "SKU already exists")
}

func TestProductHandler_GetByID_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	product := testProduct(t, "prod-1", 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-1", nil)
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockCache.On("GetProduct", mock.Anything, "prod-1").Return(nil, domain.ErrNotFound)
	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)
	mockCache.On("SetProduct", mock.Anything, product).Return(nil)

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, "prod-1", data["id"])
	assert.Equal(t, "Mechanical Keyboard", data["name"])
	assert.Equal(t, float64(10), data["stock"])
}

func TestProductHandler_GetByID_MissingID(t *testing.T) {
	handler, _, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	req = withURLParam(req, "id", "")
	w := httptest.NewRecorder()

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "Invalid product ID")
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/ghost", nil)
	req = withURLParam(req, "id", "ghost")
	w := httptest.NewRecorder()

	mockCache.On("GetProduct", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	mockRepo.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_GetBySKU_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	product := testProduct(t, "prod-1", 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/sku/KB-prod-1", nil)
	req = withURLParam(req, "sku", "KB-prod-1")
	w := httptest.NewRecorder()

	mockCache.On("GetProductBySKU", mock.Anything, "KB-prod-1").Return(nil, domain.ErrNotFound)
	mockRepo.On("FindBySKU", mock.Anything, "KB-prod-1").Return(product, nil)
	mockCache.On("SetProduct", mock.Anything, product).Return(nil)

	handler.GetBySKU(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, "KB-prod-1", data["sku"])
}

func TestProductHandler_List_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	products := []*domain.Product{
		testProduct(t, "prod-1", 10),
		testProduct(t, "prod-2", 3),
	}
	page := domain.NewPaginatedProducts(products, 2, 1, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&limit=20", nil)
	w := httptest.NewRecorder()

	mockCache.On("GetListing", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("FindAll", mock.Anything, mock.Anything).Return(page, nil)
	mockCache.On("SetListing", mock.Anything, mock.Anything, page).Return(nil)

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response, "data")
	assert.Contains(t, response, "pagination")

	pagination := response["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(20), pagination["limit"])
}

func TestProductHandler_List_FilterPassthrough(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	page := domain.NewPaginatedProducts([]*domain.Product{}, 0, 1, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=peripherals&min_price=50&active=true", nil)
	w := httptest.NewRecorder()

	mockCache.On("GetListing", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(opts domain.FilterOptions) bool {
		return opts.Category == "peripherals" &&
			opts.MinPrice != nil && *opts.MinPrice == 50 &&
			opts.Active != nil && *opts.Active
	})).Return(page, nil)
	mockCache.On("SetListing", mock.Anything, mock.Anything, page).Return(nil)

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_List_RepositoryError(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()

	mockCache.On("GetListing", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("FindAll", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	handler.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_Search_PassesTerm(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	page := domain.NewPaginatedProducts([]*domain.Product{}, 0, 1, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=keyboard", nil)
	w := httptest.NewRecorder()

	mockCache.On("GetListing", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("Search", mock.Anything, "keyboard", mock.Anything).Return(page, nil)
	mockCache.On("SetListing", mock.Anything, mock.Anything, page).Return(nil)

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_GetByCategory_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	products := []*domain.Product{testProduct(t, "prod-1", 10)}
	page := domain.NewPaginatedProducts(products, 1, 1, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/category/peripherals", nil)
	req = withURLParam(req, "category", "peripherals")
	w := httptest.NewRecorder()

	mockCache.On("GetListing", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("FindByCategory", mock.Anything, "peripherals", mock.Anything).Return(page, nil)
	mockCache.On("SetListing", mock.Anything, mock.Anything, page).Return(nil)

	handler.GetByCategory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_Categories_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil)
	w := httptest.NewRecorder()

	mockCache.On("GetCategories", mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("Categories", mock.Anything).Return([]string{"audio", "peripherals"}, nil)
	mockCache.On("SetCategories", mock.Anything, []string{"audio", "peripherals"}).Return(nil)

	handler.Categories(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].([]any)
	assert.Len(t, data, 2)
}

func TestProductHandler_LowStock_Success(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	products := []*domain.Product{testProduct(t, "prod-1", 2)}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/low-stock?min_stock=5", nil)
	w := httptest.NewRecorder()

	mockRepo.On("FindLowStock", mock.Anything, 5).Return(products, nil)

	handler.LowStock(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_TopSelling_Success(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	products := []*domain.Product{testProduct(t, "prod-1", 1)}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/top-selling?limit=5", nil)
	w := httptest.NewRecorder()

	mockRepo.On("TopSelling", mock.Anything, 5).Return(products, nil)

	handler.TopSelling(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_Stats_Success(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/stats", nil)
	w := httptest.NewRecorder()

	mockRepo.On("Count", mock.Anything).Return(12, nil)
	mockRepo.On("CountByCategory", mock.Anything).Return([]domain.CategoryCount{
		{Category: "peripherals", Count: 8},
		{Category: "audio", Count: 4},
	}, nil)
	mockRepo.On("CountByStatus", mock.Anything).Return(domain.StatusCount{Active: 9, Inactive: 3}, nil)
	mockRepo.On("TotalInventoryValue", mock.Anything).Return(37.0, nil)

	handler.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(12), data["total_products"])
}

func TestProductHandler_Update_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	product := testProduct(t, "prod-1", 10)

	requestBody := catalog.UpdateProductInfoInput{
		Name:        "Updated Keyboard",
		Description: "Now with a volume knob",
		Category:    "peripherals",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/prod-1", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name() == "Updated Keyboard"
	})).Return(nil)
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, "Updated Keyboard", data["name"])
}

func TestProductHandler_Update_NotFound(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	requestBody := catalog.UpdateProductInfoInput{
		Name:     "Updated Keyboard",
		Category: "peripherals",
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/ghost", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "ghost")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	handler.Update(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_UpdatePrice_InactiveProduct(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	product := testProduct(t, "prod-1", 10)
	product.Deactivate()

	requestBody := catalog.ChangePriceInput{Price: 99.99}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/prod-1/price", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)

	handler.UpdatePrice(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductHandler_ReduceStock_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	product := testProduct(t, "prod-1", 10)

	requestBody := catalog.StockAdjustmentInput{Quantity: 4}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/prod-1/stock/reduce", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.ReduceStock(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(6), data["stock"])
}

func TestProductHandler_ReduceStock_Insufficient(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	product := testProduct(t, "prod-1", 3)

	requestBody := catalog.StockAdjustmentInput{Quantity: 5}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/prod-1/stock/reduce", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)

	handler.ReduceStock(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductHandler_SetStock_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	existing := testProduct(t, "prod-1", 10)
	stored := testProduct(t, "prod-1", 25)

	requestBody := catalog.SetStockInput{Stock: 25}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/prod-1/stock", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(existing, nil).Once()
	mockRepo.On("UpdateStock", mock.Anything, "prod-1", 25).Return(nil)
	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(stored, nil).Once()
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.SetStock(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(25), data["stock"])
}

func TestProductHandler_Availability_Success(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-1/availability?quantity=3", nil)
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("CheckStockAvailability", mock.Anything, "prod-1", 3).Return(true, nil)

	handler.Availability(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, true, data["available"])
	assert.Equal(t, float64(3), data["requested"])
}

func TestProductHandler_Availability_MissingQuantity(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-1/availability", nil)
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	handler.Availability(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "CheckStockAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_Activate_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	product := testProduct(t, "prod-1", 10)
	product.Deactivate()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/prod-1/activate", nil)
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("SetProduct", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.Activate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, true, data["is_active"])
}

func TestProductHandler_Import_Success(t *testing.T) {
	handler, mockRepo, mockCache, _ := setupHandler()

	requestBody := catalog.ImportInput{
		Products: []catalog.CreateProductInput{
			{Name: "Keyboard", Price: 129.99, Stock: 10, SKU: "KB-001", Category: "peripherals"},
			{Name: "Mouse", Price: 59.99, Stock: 25, SKU: "MS-001", Category: "peripherals"},
		},
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mockRepo.On("SaveMany", mock.Anything, mock.MatchedBy(func(products []*domain.Product) bool {
		return len(products) == 2
	})).Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)

	handler.Import(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(2), data["imported"])
}

func TestProductHandler_CategoryDiscount_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	products := []*domain.Product{testProduct(t, "prod-1", 10)}
	page := domain.NewPaginatedProducts(products, 1, 1, domain.MaxLimit)

	requestBody := catalog.CategoryDiscountInput{Percentage: 10}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/category/peripherals/discount", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "category", "peripherals")
	w := httptest.NewRecorder()

	mockRepo.On("FindByCategory", mock.Anything, "peripherals", mock.Anything).Return(page, nil)
	mockRepo.On("UpdateMany", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateProduct", mock.Anything, "prod-1", "KB-prod-1").Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.CategoryDiscount(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, float64(1), data["updated"])
}

func TestProductHandler_Delete_Success(t *testing.T) {
	handler, mockRepo, mockCache, mockPublisher := setupHandler()

	product := testProduct(t, "prod-1", 10)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/prod-1", nil)
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "prod-1").Return(product, nil)
	mockRepo.On("Delete", mock.Anything, "prod-1").Return(nil)
	mockCache.On("InvalidateProduct", mock.Anything, "prod-1", "KB-prod-1").Return(nil)
	mockCache.On("InvalidateCatalog", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, catalog.SubjectCatalogEvents, mock.Anything).Return(nil)

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	handler, mockRepo, _, _ := setupHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/ghost", nil)
	req = withURLParam(req, "id", "ghost")
	w := httptest.NewRecorder()

	mockRepo.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertExpectations(t)
}
