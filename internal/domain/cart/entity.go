// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/your-org/storefront/internal/domain/catalog"
)

// ProductRef is the display snapshot of the product a line item belongs to
type ProductRef struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
}

// LineItem is one cart row, keyed by variant ID
type LineItem struct {
	VariantID       string                   `json:"variant_id"`
	VariantTitle    string                   `json:"variant_title"`
	Product         ProductRef               `json:"product"`
	UnitPrice       catalog.Money            `json:"unit_price"` // Price at time of adding
	Quantity        int                      `json:"quantity"`
	SelectedOptions []catalog.SelectedOption `json:"selected_options"`
	AddedAt         time.Time                `json:"added_at"`
}

// LineTotal returns unit price times quantity
func (li LineItem) LineTotal() catalog.Money {
	return li.UnitPrice.Mul(li.Quantity)
}

func (li LineItem) clone() LineItem {
	li.SelectedOptions = append([]catalog.SelectedOption(nil), li.SelectedOptions...)
	return li
}

// Snapshot is a read-only copy of the cart for rendering
type Snapshot struct {
	Items            []LineItem     `json:"items"`
	ItemCount        int            `json:"item_count"`       // Number of distinct line items
	TotalItemCount   int            `json:"total_item_count"` // Sum of all quantities
	TotalPrice       *catalog.Money `json:"total_price"`      // nil when line items mix currencies
	CurrencyMismatch bool           `json:"currency_mismatch"`
}

// SessionCart is the persisted form of a cart, stored per owner key
type SessionCart struct {
	Key       string     `json:"key"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Owner identifies whose cart is addressed: a signed-in user or a guest session
type Owner struct {
	UserID    *uint
	SessionID string
}

// Key returns the storage key for the owner's cart
func (o Owner) Key() string {
	if o.UserID != nil {
		return fmt.Sprintf("cart:user:%d", *o.UserID)
	}
	return fmt.Sprintf("cart:session:%s", o.SessionID)
}

// IsGuest reports whether the owner is an anonymous session
func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	SessionID string `json:"session_id,omitempty"`
	UserID    *uint  `json:"user_id,omitempty"`
	Snapshot
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	Handle    string `json:"handle" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ValidationIssue describes a line item whose catalog data moved since it was added
type ValidationIssue struct {
	VariantID    string         `json:"variant_id"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	CurrentPrice *catalog.Money `json:"current_price,omitempty"`
}

// Validation issue codes
const (
	IssueProductMissing = "product_missing"
	IssueVariantMissing = "variant_missing"
	IssueUnavailable    = "unavailable"
	IssuePriceChanged   = "price_changed"
)

// ValidationReport is the result of checking a cart against the catalog
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
	Cart   *CartResponse     `json:"cart"`
}
