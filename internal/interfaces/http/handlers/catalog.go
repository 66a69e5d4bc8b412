// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/catalog"
)

// CatalogHandler handles product and variant-resolution endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GetProducts handles GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	limit := catalog.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// GetProduct handles GET /products/:handle
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	detail, err := h.catalogService.GetProductDetail(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    detail,
	})
}

// ResolveVariant handles POST /products/:handle/resolve. An unmatched
// selection is not an error: the result reports matched=false and keeps the
// previously resolved variant.
func (h *CatalogHandler) ResolveVariant(c *gin.Context) {
	var req catalog.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.catalogService.Resolve(c.Request.Context(), c.Param("handle"), &req)
	if err != nil {
		respondError(c, err, "Failed to resolve variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant resolved successfully",
		"data":    result,
	})
}

// UpsertProduct handles POST /admin/products
func (h *CatalogHandler) UpsertProduct(c *gin.Context) {
	var product catalog.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.catalogService.SaveProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err, "Failed to save product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product saved successfully",
		"data":    product,
	})
}
