// internal/domain/catalog/errors.go
package catalog

import "errors"

var (
	// ErrNoMatchingVariant means no variant carries exactly the selected option values
	ErrNoMatchingVariant = errors.New("no variant matches the selected options")

	// ErrProductUnresolvable marks a product without variants (or images) that can only be displayed
	ErrProductUnresolvable = errors.New("product unavailable")

	// ErrCurrencyMismatch is returned when amounts in different currencies are combined
	ErrCurrencyMismatch = errors.New("currency mismatch")

	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrUnknownOption   = errors.New("unknown product option")
)
