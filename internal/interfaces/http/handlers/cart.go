// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

const sessionHeader = "X-Session-ID"

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartResponse, err := h.cartService.GetCart(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// GetCartCount handles GET /cart/count, the header badge
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.Count(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err, "Failed to get cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), h.owner(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// QuickAdd handles POST /products/:handle/quick-add: one of the default variant
func (h *CartHandler) QuickAdd(c *gin.Context) {
	req := cart.AddToCartRequest{Handle: c.Param("handle"), Quantity: 1}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), h.owner(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:variantId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cartResponse, err := h.cartService.SetQuantity(c.Request.Context(), h.owner(c), c.Param("variantId"), *req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items/:variantId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	cartResponse, err := h.cartService.RemoveItem(c.Request.Context(), h.owner(c), c.Param("variantId"))
	if err != nil {
		respondError(c, err, "Failed to remove item from cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), h.owner(c)); err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// MergeGuestCart handles POST /cart/merge, called after sign-in
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	cartResponse, err := h.cartService.MergeGuestCart(c.Request.Context(), userID, h.existingSessionID(c))
	if err != nil {
		respondError(c, err, "Failed to merge cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    cartResponse,
	})
}

// ValidateCart handles POST /cart/validate
func (h *CartHandler) ValidateCart(c *gin.Context) {
	report, err := h.cartService.Validate(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err, "Failed to validate cart")
		return
	}

	if !report.Valid {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cart validation failed",
			"data":  report,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart validation successful",
		"data":    report,
	})
}

// owner addresses the signed-in user's cart, or the guest session's cart
func (h *CartHandler) owner(c *gin.Context) cart.Owner {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.Owner{UserID: &userID}
	}
	return cart.Owner{SessionID: h.getOrCreateSessionID(c)}
}

func (h *CartHandler) existingSessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	id, _ := c.Cookie(h.config.Cart.SessionCookie)
	return id
}

// getOrCreateSessionID gets the session ID from the header or cookie, or starts a new session
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID := h.existingSessionID(c)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// refresh the cookie so it lives as long as the cart
	maxAge := int(h.config.Cart.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.Cart.SessionCookie, sessionID, maxAge, "/", "", h.config.IsProduction(), true)
	c.Header(sessionHeader, sessionID)

	return sessionID
}
