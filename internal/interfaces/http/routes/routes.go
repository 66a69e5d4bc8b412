// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers the routes are bound to
type Handlers struct {
	Catalog *handlers.CatalogHandler
	Cart    *handlers.CartHandler
}

// SetupRoutes registers every /api/v1 route
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupProductRoutes(rg, h, cfg)
	SetupCartRoutes(rg, h, cfg)
	SetupAdminRoutes(rg, h, cfg)
}

// SetupProductRoutes sets up product browsing and variant selection routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", h.Catalog.GetProducts)
		products.GET("/:handle", h.Catalog.GetProduct)
		products.POST("/:handle/resolve", h.Catalog.ResolveVariant)

		// product card quick add goes to the visitor's cart
		products.POST("/:handle/quick-add", h.Cart.QuickAdd)
	}
}

// SetupCartRoutes sets up cart routes; guests are identified by session
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/count", h.Cart.GetCartCount)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:variantId", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:variantId", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/validate", h.Cart.ValidateCart)
	}

	protected := rg.Group("/cart")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/merge", h.Cart.MergeGuestCart)
	}
}

// SetupAdminRoutes sets up catalog administration routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.Catalog.UpsertProduct)
	}
}
