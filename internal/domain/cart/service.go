// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/catalog"
)

// ProductLookup is the part of the catalog the cart needs
type ProductLookup interface {
	GetProductByHandle(ctx context.Context, handle string) (*catalog.Product, error)
}

// Service handles session-scoped carts: each request loads the owner's
// Store, applies one operation and persists the result.
type Service struct {
	repo     Repository
	products ProductLookup
	config   *config.Config
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, products ProductLookup, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		config:   cfg,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a user or guest session
func (s *Service) GetCart(ctx context.Context, owner Owner) (*CartResponse, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	sessionCart, err := s.repo.Get(ctx, owner.Key())
	if err != nil {
		return nil, err
	}
	return s.response(owner, sessionCart), nil
}

// AddItem adds a variant of a catalog product. Without a variant ID the
// product's default variant is used, as the product card quick-add does.
func (s *Service) AddItem(ctx context.Context, owner Owner, req *AddToCartRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.products.GetProductByHandle(ctx, req.Handle)
	if err != nil {
		return nil, err
	}

	var variant *catalog.Variant
	if req.VariantID == "" {
		if variant, err = catalog.DefaultVariant(product); err != nil {
			return nil, err
		}
	} else {
		var ok bool
		if variant, ok = product.VariantByID(req.VariantID); !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrVariantNotFound, req.VariantID)
		}
	}

	resp, err := s.withStore(ctx, owner, func(store *Store) error {
		return store.AddItem(product, variant, quantity)
	})
	if err != nil {
		if errors.Is(err, ErrUnavailableVariant) {
			s.logger.WithFields(logrus.Fields{
				"cart":       owner.Key(),
				"variant_id": variant.ID,
			}).Info("rejected add of unavailable variant")
		}
		return nil, err
	}
	return resp, nil
}

// SetQuantity sets a line's quantity; zero or less removes the line
func (s *Service) SetQuantity(ctx context.Context, owner Owner, variantID string, quantity int) (*CartResponse, error) {
	return s.withStore(ctx, owner, func(store *Store) error {
		if !store.SetQuantity(variantID, quantity) {
			return ErrItemNotFound
		}
		return nil
	})
}

// RemoveItem removes a line; removing an absent line is not an error
func (s *Service) RemoveItem(ctx context.Context, owner Owner, variantID string) (*CartResponse, error) {
	return s.withStore(ctx, owner, func(store *Store) error {
		store.RemoveItem(variantID)
		return nil
	})
}

// Clear removes all items from the cart
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	_, err := s.withStore(ctx, owner, func(store *Store) error {
		store.Clear()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.WithField("cart", owner.Key()).Info("cart cleared")
	return nil
}

// Count returns the sum of quantities in the cart
func (s *Service) Count(ctx context.Context, owner Owner) (int, error) {
	resp, err := s.GetCart(ctx, owner)
	if err != nil {
		return 0, err
	}
	return resp.TotalItemCount, nil
}

// MergeGuestCart folds a guest session cart into the user's cart when the
// user signs in. Quantities of shared variants are summed.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, sessionID string) (*CartResponse, error) {
	user := Owner{UserID: &userID, SessionID: sessionID}
	if sessionID == "" {
		return s.GetCart(ctx, user)
	}

	guest := Owner{SessionID: sessionID}
	guestCart, err := s.repo.Get(ctx, guest.Key())
	if err != nil {
		return nil, err
	}
	if len(guestCart.Items) == 0 {
		return s.GetCart(ctx, user)
	}

	resp, err := s.withStore(ctx, user, func(store *Store) error {
		store.MergeItems(guestCart.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, guest.Key()); err != nil {
		return nil, fmt.Errorf("failed to clear guest cart: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"cart":        user.Key(),
		"guest_cart":  guest.Key(),
		"guest_items": len(guestCart.Items),
	}).Info("guest cart merged")
	return resp, nil
}

// Validate checks every line against the current catalog. It reports
// differences and leaves the snapshotted prices untouched.
func (s *Service) Validate(ctx context.Context, owner Owner) (*ValidationReport, error) {
	resp, err := s.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{Issues: []ValidationIssue{}, Cart: resp}
	products := make(map[string]*catalog.Product)

	for _, item := range resp.Items {
		product, ok := products[item.Product.Handle]
		if !ok {
			product, err = s.products.GetProductByHandle(ctx, item.Product.Handle)
			if err != nil && !errors.Is(err, catalog.ErrProductNotFound) {
				return nil, err
			}
			products[item.Product.Handle] = product
		}

		if product == nil {
			report.Issues = append(report.Issues, ValidationIssue{
				VariantID: item.VariantID,
				Code:      IssueProductMissing,
				Message:   fmt.Sprintf("Product '%s' is no longer available", item.Product.Title),
			})
			continue
		}

		variant, found := product.VariantByID(item.VariantID)
		switch {
		case !found:
			report.Issues = append(report.Issues, ValidationIssue{
				VariantID: item.VariantID,
				Code:      IssueVariantMissing,
				Message:   fmt.Sprintf("'%s - %s' is no longer offered", product.Title, item.VariantTitle),
			})
		case !variant.AvailableForSale:
			report.Issues = append(report.Issues, ValidationIssue{
				VariantID: item.VariantID,
				Code:      IssueUnavailable,
				Message:   fmt.Sprintf("'%s - %s' is sold out", product.Title, variant.Title),
			})
		case !variant.Price.Equal(item.UnitPrice):
			current := variant.Price
			report.Issues = append(report.Issues, ValidationIssue{
				VariantID:    item.VariantID,
				Code:         IssuePriceChanged,
				Message:      fmt.Sprintf("Price for '%s - %s' has changed. Current: %s, Cart: %s", product.Title, variant.Title, current, item.UnitPrice),
				CurrentPrice: &current,
			})
		}
	}

	report.Valid = len(report.Issues) == 0 && !resp.CurrencyMismatch
	return report, nil
}

// withStore runs fn against the owner's cart inside an optimistic update
func (s *Service) withStore(ctx context.Context, owner Owner, fn func(*Store) error) (*CartResponse, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	var changed Snapshot
	mutated := false

	sessionCart, err := s.repo.Update(ctx, owner.Key(), func(sc *SessionCart) error {
		store := NewStoreFromItems(s.config.Cart.DefaultCurrency, sc.Items)
		mutated = false
		store.Subscribe(func(snap Snapshot) {
			changed = snap
			mutated = true
		})

		if err := fn(store); err != nil {
			return err
		}
		sc.Items = store.Items()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mutated {
		s.logger.WithFields(logrus.Fields{
			"cart":             owner.Key(),
			"line_items":       changed.ItemCount,
			"total_item_count": changed.TotalItemCount,
		}).Debug("cart updated")
	}
	return s.response(owner, sessionCart), nil
}

func (s *Service) response(owner Owner, sessionCart *SessionCart) *CartResponse {
	store := NewStoreFromItems(s.config.Cart.DefaultCurrency, sessionCart.Items)
	resp := &CartResponse{
		UserID:    owner.UserID,
		Snapshot:  store.Snapshot(),
		CreatedAt: sessionCart.CreatedAt,
		UpdatedAt: sessionCart.UpdatedAt,
	}
	if owner.IsGuest() {
		resp.SessionID = owner.SessionID
	}
	return resp
}

func checkOwner(owner Owner) error {
	if owner.UserID == nil && owner.SessionID == "" {
		return ErrSessionRequired
	}
	return nil
}
