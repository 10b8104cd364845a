package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/middleware"
)

// CreateProduct handles POST /api/products requests.
//
// @Summary      Create a product
// @Description  Creates a catalog product. A case-breakable product whose package holds more than one unit gets a unit facet with a derived unit price and zero stock.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        request body dto.CreateProductRequest true "Product"
// @Success      201 {object} dto.SuccessResponse{data=model.Product}
// @Failure      400 {object} dto.ErrorResponse "Invalid product"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      409 {object} dto.ErrorResponse "SKU already exists"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Store unavailable"
// @Security     ApiKeyAuth
// @Router       /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	req, ok := bindJSON[dto.CreateProductRequest](c)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.ToDraft())
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	h.audit(c, middleware.ActionProductCreate, "Product created", map[string]interface{}{
		"product_id":        product.ID,
		"sku":               product.SKU,
		"is_case_breakable": product.IsCaseBreakable,
	})
	NewResponseBuilder(c).SuccessCreated(product)
}

// GetProduct handles GET /api/products/:id requests.
//
// @Summary      Get a product
// @Description  Returns a product with its unit facet, if any.
// @Tags         Products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Product}
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(product)
}

// UpdateProduct handles PATCH /api/products/:id requests.
//
// @Summary      Update a product
// @Description  Applies a partial update. Turning case breaking on creates the unit facet; turning it off drops it. Existing unit prices are only recomputed when the case price or package changes.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path string true "Product ID"
// @Param        request body dto.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.SuccessResponse{data=model.Product}
// @Failure      400 {object} dto.ErrorResponse "Invalid patch"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      409 {object} dto.ErrorResponse "SKU already exists"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/products/{id} [patch]
func (h *Handler) UpdateProduct(c *gin.Context) {
	req, ok := bindJSON[dto.UpdateProductRequest](c)
	if !ok {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	h.audit(c, middleware.ActionProductUpdate, "Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	NewResponseBuilder(c).SuccessOK(product)
}

// GetStock handles GET /api/inventory/:productId requests.
//
// @Summary      Available unit stock
// @Description  Returns the loose units on hand for a case-breakable product.
// @Tags         Inventory
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        productId path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse{data=dto.StockResponse}
// @Failure      400 {object} dto.ErrorResponse "Product has no unit inventory"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/inventory/{productId} [get]
func (h *Handler) GetStock(c *gin.Context) {
	productID := c.Param("productId")
	stock, err := h.inventory.GetAvailableStock(c.Request.Context(), productID)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(dto.StockResponse{ProductID: productID, AvailableStock: stock})
}
