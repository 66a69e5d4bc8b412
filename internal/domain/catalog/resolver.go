// internal/domain/catalog/resolver.go
package catalog

// DefaultSelection builds the initial selection from the first variant's
// option pairs. A product without variants yields an empty selection.
func DefaultSelection(product *Product) Selection {
	selection := Selection{}
	if product == nil || len(product.Variants) == 0 {
		return selection
	}

	for _, opt := range product.Variants[0].SelectedOptions {
		selection[opt.Name] = opt.Value
	}
	return selection
}

// DefaultVariant returns the first variant of the product
func DefaultVariant(product *Product) (*Variant, error) {
	if product == nil || len(product.Variants) == 0 {
		return nil, ErrProductUnresolvable
	}
	return &product.Variants[0], nil
}

// ResolveVariant returns the first variant, in catalog order, whose option
// pairs all equal the selection. Availability is not considered.
func ResolveVariant(product *Product, selection Selection) (*Variant, error) {
	if product == nil {
		return nil, ErrNoMatchingVariant
	}

	for i := range product.Variants {
		if product.Variants[i].Matches(selection) {
			return &product.Variants[i], nil
		}
	}
	return nil, ErrNoMatchingVariant
}

// UpdateSelection returns a copy of selection with one option replaced.
// It does not resolve; callers follow up with ResolveVariant.
func UpdateSelection(selection Selection, optionName, value string) Selection {
	next := selection.Clone()
	next[optionName] = value
	return next
}
