// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Repository is the catalog collaborator contract: handle lookup, listing and admin import
type Repository interface {
	GetByHandle(ctx context.Context, handle string) (*Product, error)
	List(ctx context.Context, limit int) ([]Product, error)
	Upsert(ctx context.Context, product *Product) error
}

// Service handles catalog business logic
type Service struct {
	repo   Repository
	logger *logrus.Logger
}

// NewService creates a new catalog service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ProductDetail is a product together with its initial purchase state
type ProductDetail struct {
	Product          *Product  `json:"product"`
	DefaultSelection Selection `json:"default_selection"`
	DefaultVariant   *Variant  `json:"default_variant,omitempty"`
	Purchasable      bool      `json:"purchasable"`
	HasImage         bool      `json:"has_image"`
}

// ResolveRequest carries a selection and an optional single-option change
type ResolveRequest struct {
	Selection Selection `json:"selection"`
	Option    string    `json:"option"`
	Value     string    `json:"value"`
}

// ResolveResult describes where a selection change landed
type ResolveResult struct {
	Selection   Selection `json:"selection"`
	Variant     *Variant  `json:"variant,omitempty"`
	Matched     bool      `json:"matched"`
	CanPurchase bool      `json:"can_purchase"`
}

// GetProductByHandle retrieves a product by its URL handle
func (s *Service) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrProductNotFound
	}
	return s.repo.GetByHandle(ctx, handle)
}

// GetProductDetail loads a product and computes its default selection
func (s *Service) GetProductDetail(ctx context.Context, handle string) (*ProductDetail, error) {
	product, err := s.GetProductByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:          product,
		DefaultSelection: DefaultSelection(product),
		HasImage:         product.PrimaryImage() != nil,
	}
	if variant, err := DefaultVariant(product); err == nil {
		detail.DefaultVariant = variant
		detail.Purchasable = variant.AvailableForSale
	} else {
		s.logger.WithField("handle", handle).Debug("product has no variants, display only")
	}
	return detail, nil
}

// ListProducts lists products, clamping the limit to sane bounds
func (s *Service) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.List(ctx, limit)
}

// Resolve applies an option change to a selection and resolves the variant.
// An unmatched selection keeps the variant the previous selection resolved to.
func (s *Service) Resolve(ctx context.Context, handle string, req *ResolveRequest) (*ResolveResult, error) {
	product, err := s.GetProductByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	selector, err := NewSelectorFrom(product, req.Selection)
	if err != nil && !errors.Is(err, ErrNoMatchingVariant) {
		return nil, err
	}

	matched := err == nil
	if req.Option != "" {
		_, err = selector.Choose(req.Option, req.Value)
		switch {
		case err == nil:
			matched = true
		case errors.Is(err, ErrNoMatchingVariant):
			matched = false
		default:
			return nil, err
		}
	}

	if !matched {
		s.logger.WithFields(logrus.Fields{
			"handle":    handle,
			"selection": selector.Selection(),
		}).Debug("selection did not resolve to a variant")
	}

	return &ResolveResult{
		Selection:   selector.Selection(),
		Variant:     selector.Current(),
		Matched:     matched,
		CanPurchase: matched && selector.CanPurchase(),
	}, nil
}

// SaveProduct validates and stores a product coming from the catalog import
func (s *Service) SaveProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if product.PriceRange.MinVariantPrice.CurrencyCode == "" && len(product.Variants) > 0 {
		product.PriceRange.MinVariantPrice = minVariantPrice(product.Variants)
	}

	if err := s.repo.Upsert(ctx, product); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"handle":     product.Handle,
		"variants":   len(product.Variants),
	}).Info("catalog product saved")
	return nil
}

func validateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("%w: product is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Handle) == "" {
		return fmt.Errorf("%w: handle is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}

	seen := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: variant id is required", ErrInvalidProduct)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: duplicate variant id %s", ErrInvalidProduct, v.ID)
		}
		seen[v.ID] = struct{}{}

		if v.Price.CurrencyCode == "" {
			return fmt.Errorf("%w: variant %s has no currency", ErrInvalidProduct, v.ID)
		}
		if v.Price.Amount.IsNegative() {
			return fmt.Errorf("%w: variant %s has a negative price", ErrInvalidProduct, v.ID)
		}
	}
	return nil
}

// minVariantPrice picks the cheapest variant price, ignoring currency differences
func minVariantPrice(variants []Variant) Money {
	lowest := variants[0].Price
	for _, v := range variants[1:] {
		if v.Price.Amount.LessThan(lowest.Amount) {
			lowest = v.Price
		}
	}
	return lowest
}
