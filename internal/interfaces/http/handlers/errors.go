// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/catalog"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrUnavailableVariant),
		errors.Is(err, catalog.ErrNoMatchingVariant),
		errors.Is(err, catalog.ErrProductUnresolvable):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrCurrencyMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrSessionRequired),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, catalog.ErrUnknownOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the domain error, hiding internal failures behind fallback
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = fallback
	}
	c.JSON(status, gin.H{
		"error": message,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
