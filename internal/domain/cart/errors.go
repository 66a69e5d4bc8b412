// internal/domain/cart/errors.go
package cart

import (
	"errors"

	"github.com/your-org/storefront/internal/domain/catalog"
)

var (
	// ErrUnavailableVariant rejects adding a variant that is not for sale
	ErrUnavailableVariant = errors.New("variant is not available for sale")

	// ErrInvalidQuantity rejects non-positive quantity increments
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrItemNotFound is returned by session operations that target a missing line item
	ErrItemNotFound = errors.New("item not found in cart")

	// ErrSessionRequired means a guest request arrived without a session ID
	ErrSessionRequired = errors.New("session ID required for guest cart")

	// ErrCurrencyMismatch is the catalog error, re-exported for cart callers
	ErrCurrencyMismatch = catalog.ErrCurrencyMismatch
)
