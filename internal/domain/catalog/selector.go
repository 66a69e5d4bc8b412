// internal/domain/catalog/selector.go
package catalog

import "fmt"

// Selector tracks a shopper's in-progress option choice for one product and
// the last variant that choice resolved to.
type Selector struct {
	product   *Product
	selection Selection
	current   *Variant
}

// NewSelector starts from the product's default selection. It returns
// ErrProductUnresolvable when the product has no variants; the selector is
// still usable for display in that case.
func NewSelector(product *Product) (*Selector, error) {
	s := &Selector{
		product:   product,
		selection: DefaultSelection(product),
	}

	variant, err := DefaultVariant(product)
	if err != nil {
		return s, err
	}
	s.current = variant
	return s, nil
}

// NewSelectorFrom restores a selector from a previously held selection.
// When the selection does not resolve, the default variant stays current.
func NewSelectorFrom(product *Product, selection Selection) (*Selector, error) {
	s, err := NewSelector(product)
	if err != nil {
		return s, err
	}
	if len(selection) == 0 {
		return s, nil
	}

	s.selection = selection.Clone()
	variant, err := ResolveVariant(product, s.selection)
	if err != nil {
		return s, err
	}
	s.current = variant
	return s, nil
}

// Choose sets one option and re-resolves. On ErrNoMatchingVariant the
// selection keeps the new value and the previously resolved variant stays current.
func (s *Selector) Choose(optionName, value string) (*Variant, error) {
	if _, ok := s.product.OptionByName(optionName); !ok {
		return s.current, fmt.Errorf("%w: %s", ErrUnknownOption, optionName)
	}

	s.selection = UpdateSelection(s.selection, optionName, value)

	variant, err := ResolveVariant(s.product, s.selection)
	if err != nil {
		return s.current, err
	}
	s.current = variant
	return variant, nil
}

// Selection returns a copy of the current selection
func (s *Selector) Selection() Selection {
	return s.selection.Clone()
}

// Current returns the last resolved variant, nil if none ever resolved
func (s *Selector) Current() *Variant {
	return s.current
}

// CanPurchase reports whether the current variant may be added to a cart
func (s *Selector) CanPurchase() bool {
	return s.current != nil && s.current.AvailableForSale
}
