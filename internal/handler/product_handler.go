package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/store"
	"github.com/precifica/precifica_api/internal/utils"
)

// ProductHandler handles product grid HTTP endpoints.
type ProductHandler struct {
	catalog *service.CatalogService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ListProducts returns the product list, optionally filtered by a search
// term matched against sku, name and provider.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	search := c.Query("search")
	products := h.catalog.List(search)

	utils.Success(c, 200, "Products retrieved successfully", gin.H{
		"products": products,
		"total":    len(products),
	})
}

// CreateProduct adds a new row at the top of the grid.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req store.CreateFields
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product := h.catalog.Create(c.Request.Context(), req)
	utils.Success(c, 201, "Product created", gin.H{"product": product})
}

// UpdateProductField applies a single-cell edit. The value arrives as the
// raw string the user typed; coercion rules live in the store.
func (h *ProductHandler) UpdateProductField(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.catalog.UpdateField(c.Request.Context(), c.Param("id"), req.Field, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		case errors.Is(err, store.ErrUnknownField):
			utils.Error(c, 400, "UNKNOWN_FIELD", "Unknown or read-only field: "+req.Field)
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update product")
		}
		return
	}

	utils.Success(c, 200, "Product updated", gin.H{"product": product})
}

// DeleteProduct removes one product. Confirmation is a UI concern; the API
// deletes unconditionally.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if !h.catalog.Delete(c.Request.Context(), c.Param("id")) {
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}
	utils.Success(c, 200, "Product deleted", nil)
}

// DeleteProducts removes a batch of products by id.
func (h *ProductHandler) DeleteProducts(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	removed := h.catalog.DeleteMany(c.Request.Context(), req.IDs)
	utils.Success(c, 200, "Products deleted", gin.H{"removed": removed})
}
