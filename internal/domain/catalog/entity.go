// internal/domain/catalog/entity.go
package catalog

// Option is a named axis of configuration (e.g. "Size") with its legal values
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SelectedOption is one (option name, option value) pair carried by a variant
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable configuration of a product, one value per option
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Price            Money            `json:"price"`
	AvailableForSale bool             `json:"available_for_sale"`
	SelectedOptions  []SelectedOption `json:"selected_options"`
}

// Image is a product image as served by the catalog
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// PriceRange carries the cheapest variant price shown on listings
type PriceRange struct {
	MinVariantPrice Money `json:"min_variant_price"`
}

// Product is an immutable catalog product with its options, variants and images
type Product struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Handle      string     `json:"handle"`
	Options     []Option   `json:"options"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	PriceRange  PriceRange `json:"price_range"`
}

// Selection maps option names to the values chosen so far
type Selection map[string]string

// Business methods for Product

// IsPurchasable reports whether the product has at least one variant to sell
func (p *Product) IsPurchasable() bool {
	return len(p.Variants) > 0
}

// PrimaryImage returns the first image, or nil when the product has none
func (p *Product) PrimaryImage() *Image {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// VariantByID looks up a variant by identifier
func (p *Product) VariantByID(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// OptionByName returns the option definition with the given name
func (p *Product) OptionByName(name string) (*Option, bool) {
	for i := range p.Options {
		if p.Options[i].Name == name {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// Matches reports whether every option pair on the variant equals the
// selection's value for that name. A selection missing any of the variant's
// option names never matches.
func (v *Variant) Matches(selection Selection) bool {
	for _, opt := range v.SelectedOptions {
		chosen, ok := selection[opt.Name]
		if !ok || chosen != opt.Value {
			return false
		}
	}
	return true
}

// Clone returns a copy of the selection that shares no state with the receiver
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
