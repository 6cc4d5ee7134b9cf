package handler

import (
	"errors"
	"net/http"

	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/request"
	"github.com/RaulAJaimes/eccomerce/internal/delivery/http/response"
	"github.com/RaulAJaimes/eccomerce/internal/domain"
	"github.com/RaulAJaimes/eccomerce/internal/pkg/logger"
	"github.com/RaulAJaimes/eccomerce/internal/usecase/catalog"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *catalog.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Register a product with name, price, stock, SKU and category. Publishes a product.created event.
// @Tags Products
// @Accept json
// @Produce json
// @Param product body catalog.CreateProductInput true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "SKU already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input catalog.CreateProductInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, product)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get the purchase summary of a product: id, name, price, currency and stock. Results are cached.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{} "Product summary"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// GetBySKU handles GET /api/v1/products/sku/:sku
// @Summary Get a product by SKU
// @Description Get the full detail of a product looked up by its SKU. Results are cached.
// @Tags Products
// @Accept json
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid SKU"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/sku/{sku} [get]
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	sku, err := request.GetStringParam(r, "sku")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid SKU")
		return
	}

	product, err := h.service.GetProductBySKU(r.Context(), sku)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a paginated list of products, filterable by category, price range, active flag and stock. Results are cached.
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param category query string false "Filter by category"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param active query bool false "Filter by active flag"
// @Param in_stock query bool false "Only products with stock"
// @Param sort_by query string false "Sort field (name, price, stock, created_at)"
// @Param sort_order query string false "Sort direction (asc, desc)"
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := request.GetFilterOptions(r)

	page, err := h.service.ListProducts(r.Context(), opts)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writePage(w, page)
}

// Search handles GET /api/v1/products/search
// @Summary Search products
// @Description Search products by name, description or SKU, combined with the standard listing filters.
// @Tags Products
// @Accept json
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{} "Paginated list of matching products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/search [get]
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	opts := request.GetFilterOptions(r)

	page, err := h.service.SearchProducts(r.Context(), term, opts)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writePage(w, page)
}

// GetByCategory handles GET /api/v1/products/category/:category
// @Summary List products in a category
// @Description Get a paginated list of products belonging to one category.
// @Tags Products
// @Accept json
// @Produce json
// @Param category path string true "Category name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 400 {object} map[string]string "Invalid category"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/category/{category} [get]
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := request.GetStringParam(r, "category")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category")
		return
	}

	opts := request.GetFilterOptions(r)

	page, err := h.service.GetProductsByCategory(r.Context(), category, opts)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writePage(w, page)
}

// Categories handles GET /api/v1/products/categories
// @Summary List categories
// @Description Get the distinct categories in use, sorted alphabetically. Results are cached.
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "List of categories"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/categories [get]
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, categories)
}

// LowStock handles GET /api/v1/products/low-stock
// @Summary List products low on stock
// @Description Get active products at or below the stock threshold, most depleted first.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param min_stock query int false "Stock threshold (defaults to 5)"
// @Success 200 {object} map[string]interface{} "List of low stock products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/low-stock [get]
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	minStock := request.GetIntQuery(r, "min_stock", 0)

	products, err := h.service.GetLowStock(r.Context(), minStock)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, products)
}

// TopSelling handles GET /api/v1/products/top-selling
// @Summary List top selling products
// @Description Get the best selling products, capped at limit.
// @Tags Products
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of products (defaults to 20)"
// @Success 200 {object} map[string]interface{} "List of top selling products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/top-selling [get]
func (h *ProductHandler) TopSelling(w http.ResponseWriter, r *http.Request) {
	limit := request.GetIntQuery(r, "limit", 0)

	products, err := h.service.GetTopSelling(r.Context(), limit)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, products)
}

// RecentlyAdded handles GET /api/v1/products/recent
// @Summary List recently added products
// @Description Get the most recently created products, capped at limit.
// @Tags Products
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of products (defaults to 20)"
// @Success 200 {object} map[string]interface{} "List of recently added products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/recent [get]
func (h *ProductHandler) RecentlyAdded(w http.ResponseWriter, r *http.Request) {
	limit := request.GetIntQuery(r, "limit", 0)

	products, err := h.service.GetRecentlyAdded(r.Context(), limit)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, products)
}

// Stats handles GET /api/v1/products/stats
// @Summary Get catalog statistics
// @Description Get catalog totals: product count, counts per category and per status, total inventory units.
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Catalog statistics"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/stats [get]
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.GetCatalogOverview(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, overview)
}

// Update handles PUT /api/v1/products/:id
// @Summary Update product details
// @Description Update a product's name, description and category. Publishes a product.updated event.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body catalog.UpdateProductInfoInput true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.UpdateProductInfoInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.UpdateProductInfo(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// UpdatePrice handles PUT /api/v1/products/:id/price
// @Summary Change a product's price
// @Description Set a new price for an active product. Publishes a product.price_changed event.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param price body catalog.ChangePriceInput true "New price"
// @Success 200 {object} map[string]interface{} "Price updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]string "Product is inactive"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.ChangePriceInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.ChangeProductPrice(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// ReduceStock handles POST /api/v1/products/:id/stock/reduce
// @Summary Reduce a product's stock
// @Description Remove units from stock, e.g. after a sale. Publishes a product.stock_changed event flagged when stock runs low.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body catalog.StockAdjustmentInput true "Units to remove"
// @Success 200 {object} map[string]interface{} "Stock updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]string "Product inactive or insufficient stock"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/stock/reduce [post]
func (h *ProductHandler) ReduceStock(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.StockAdjustmentInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.ReduceProductStock(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Restock handles POST /api/v1/products/:id/stock/restock
// @Summary Restock a product
// @Description Add units to stock. Allowed while the product is inactive. Publishes a product.stock_changed event.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body catalog.StockAdjustmentInput true "Units to add"
// @Success 200 {object} map[string]interface{} "Stock updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/stock/restock [post]
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.StockAdjustmentInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.RestockProduct(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// SetStock handles PUT /api/v1/products/:id/stock
// @Summary Set a product's stock level
// @Description Overwrite the stock level with an absolute value, e.g. after a physical count. Publishes a product.stock_changed event.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param stock body catalog.SetStockInput true "New stock level"
// @Success 200 {object} map[string]interface{} "Stock updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/stock [put]
func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.SetStockInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.SetProductStock(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Availability handles GET /api/v1/products/:id/availability
// @Summary Check stock availability
// @Description Report whether a product can cover the requested quantity. Unknown products report unavailable.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param quantity query int true "Requested quantity"
// @Success 200 {object} map[string]interface{} "Availability result"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/availability [get]
func (h *ProductHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	quantity := request.GetIntQuery(r, "quantity", 0)

	result, err := h.service.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, result)
}

// Activate handles POST /api/v1/products/:id/activate
// @Summary Activate a product
// @Description Make a product visible and sellable again. Activating an active product is a no-op.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{} "Product activated"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/activate [post]
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.ActivateProduct(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Deactivate handles POST /api/v1/products/:id/deactivate
// @Summary Deactivate a product
// @Description Hide a product from sale without deleting it. Deactivating an inactive product is a no-op.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{} "Product deactivated"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.DeactivateProduct(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// AddImages handles POST /api/v1/products/:id/images
// @Summary Add product images
// @Description Attach image URLs to a product. URLs without an image extension are ignored.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param images body catalog.ImagesInput true "Image URLs"
// @Success 200 {object} map[string]interface{} "Images added"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/images [post]
func (h *ProductHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input catalog.ImagesInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.AddProductImages(r.Context(), id, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// RemoveImage handles DELETE /api/v1/products/:id/images
// @Summary Remove a product image
// @Description Detach one image URL from a product. Removing an absent URL is a no-op.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param url query string true "Image URL to remove"
// @Success 200 {object} map[string]interface{} "Image removed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/images [delete]
func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	url := r.URL.Query().Get("url")

	product, err := h.service.RemoveProductImage(r.Context(), id, url)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Import handles POST /api/v1/products/import
// @Summary Import products in bulk
// @Description Register a batch of products in one transaction. Any invalid item aborts the whole batch.
// @Tags Products
// @Accept json
// @Produce json
// @Param products body catalog.ImportInput true "Products to import"
// @Success 201 {object} map[string]interface{} "Import result"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Duplicate SKU in batch"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/import [post]
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	var input catalog.ImportInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ImportProducts(r.Context(), input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, result)
}

// CategoryDiscount handles POST /api/v1/products/category/:category/discount
// @Summary Apply a discount to a category
// @Description Apply a percentage discount to every active product in a category. Publishes a price_changed event per product.
// @Tags Products
// @Accept json
// @Produce json
// @Param category path string true "Category name"
// @Param discount body catalog.CategoryDiscountInput true "Discount percentage"
// @Success 200 {object} map[string]interface{} "Discount result"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/category/{category}/discount [post]
func (h *ProductHandler) CategoryDiscount(w http.ResponseWriter, r *http.Request) {
	category, err := request.GetStringParam(r, "category")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category")
		return
	}

	var input catalog.CategoryDiscountInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ApplyCategoryDiscount(r.Context(), category, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Remove a product from the catalog. Publishes a product.deleted event.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetStringParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// writePage unwraps a listing page into the standard paginated envelope.
func writePage(w http.ResponseWriter, page *catalog.ProductPage) {
	response.Paginated(w, page.Data, response.Pagination{
		Total:       page.Total,
		Page:        page.Page,
		Limit:       page.Limit,
		TotalPages:  page.TotalPages,
		HasNextPage: page.HasNextPage,
		HasPrevPage: page.HasPrevPage,
	})
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrDuplicateSKU):
		response.Error(w, http.StatusConflict, "SKU already exists")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Product was modified by another request")
	case errors.Is(err, domain.ErrInsufficientStock):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrProductInactive):
		response.Error(w, http.StatusUnprocessableEntity, "Product is inactive")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
