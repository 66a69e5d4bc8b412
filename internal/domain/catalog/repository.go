// internal/domain/catalog/repository.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRecord is the stored form of a catalog product
type ProductRecord struct {
	ID             string          `gorm:"primaryKey;size:100" json:"id"`
	Handle         string          `gorm:"uniqueIndex;not null;size:255" json:"handle"`
	Title          string          `gorm:"not null;size:255" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	MinPriceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_price_amount"`
	CurrencyCode   string          `gorm:"size:3;not null" json:"currency_code"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relationships
	Options  []OptionRecord  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"options,omitempty"`
	Variants []VariantRecord `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
	Images   []ImageRecord   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// OptionRecord stores one option axis; values keep their catalog order
type OptionRecord struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProductID string   `gorm:"not null;index;size:100" json:"product_id"`
	Position  int      `gorm:"not null;default:0" json:"position"`
	Name      string   `gorm:"not null;size:100" json:"name"`
	Values    []string `gorm:"type:text;serializer:json" json:"values"`
}

// VariantRecord stores a sellable variant with its option pairs as JSON
type VariantRecord struct {
	ID               string           `gorm:"primaryKey;size:100" json:"id"`
	ProductID        string           `gorm:"not null;index;size:100" json:"product_id"`
	Position         int              `gorm:"not null;default:0" json:"position"`
	Title            string           `gorm:"not null;size:255" json:"title"`
	PriceAmount      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price_amount"`
	CurrencyCode     string           `gorm:"size:3;not null" json:"currency_code"`
	AvailableForSale bool             `gorm:"not null" json:"available_for_sale"`
	SelectedOptions  []SelectedOption `gorm:"type:text;serializer:json" json:"selected_options"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ImageRecord stores a product image
type ImageRecord struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID string `gorm:"not null;index;size:100" json:"product_id"`
	Position  int    `gorm:"not null;default:0" json:"position"`
	URL       string `gorm:"not null;size:500" json:"url"`
	AltText   string `gorm:"size:255" json:"alt_text"`
}

// TableName overrides
func (ProductRecord) TableName() string { return "catalog_products" }
func (OptionRecord) TableName() string  { return "catalog_product_options" }
func (VariantRecord) TableName() string { return "catalog_product_variants" }
func (ImageRecord) TableName() string   { return "catalog_product_images" }

// GormRepository reads and writes catalog products through GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-backed catalog repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// GetByHandle loads a product with its options, variants and images
func (r *GormRepository) GetByHandle(ctx context.Context, handle string) (*Product, error) {
	var rec ProductRecord
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("handle = ?", handle).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product %q: %w", handle, err)
	}

	p := rec.toProduct()
	return &p, nil
}

// List returns up to limit products in insertion order
func (r *GormRepository) List(ctx context.Context, limit int) ([]Product, error) {
	var recs []ProductRecord
	err := r.withChildren(r.db.WithContext(ctx)).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]Product, len(recs))
	for i := range recs {
		products[i] = recs[i].toProduct()
	}
	return products, nil
}

// Upsert replaces a product and all of its children in one transaction
func (r *GormRepository) Upsert(ctx context.Context, product *Product) error {
	rec := fromProduct(product)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Omit(clause.Associations).
			Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}

		for _, model := range []interface{}{&OptionRecord{}, &VariantRecord{}, &ImageRecord{}} {
			if err := tx.Where("product_id = ?", rec.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}

		if len(rec.Options) > 0 {
			if err := tx.Create(&rec.Options).Error; err != nil {
				return fmt.Errorf("failed to save options: %w", err)
			}
		}
		if len(rec.Variants) > 0 {
			if err := tx.Create(&rec.Variants).Error; err != nil {
				return fmt.Errorf("failed to save variants: %w", err)
			}
		}
		if len(rec.Images) > 0 {
			if err := tx.Create(&rec.Images).Error; err != nil {
				return fmt.Errorf("failed to save images: %w", err)
			}
		}
		return nil
	})
}

func (r *GormRepository) withChildren(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return db.
		Preload("Options", byPosition).
		Preload("Variants", byPosition).
		Preload("Images", byPosition)
}

func (rec *ProductRecord) toProduct() Product {
	p := Product{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Handle:      rec.Handle,
		Options:     make([]Option, len(rec.Options)),
		Variants:    make([]Variant, len(rec.Variants)),
		Images:      make([]Image, len(rec.Images)),
		PriceRange: PriceRange{
			MinVariantPrice: Money{Amount: rec.MinPriceAmount, CurrencyCode: rec.CurrencyCode},
		},
	}

	for i, o := range rec.Options {
		p.Options[i] = Option{Name: o.Name, Values: append([]string(nil), o.Values...)}
	}
	for i, v := range rec.Variants {
		p.Variants[i] = Variant{
			ID:               v.ID,
			Title:            v.Title,
			Price:            Money{Amount: v.PriceAmount, CurrencyCode: v.CurrencyCode},
			AvailableForSale: v.AvailableForSale,
			SelectedOptions:  append([]SelectedOption(nil), v.SelectedOptions...),
		}
	}
	for i, img := range rec.Images {
		p.Images[i] = Image{URL: img.URL, AltText: img.AltText}
	}
	return p
}

func fromProduct(p *Product) ProductRecord {
	rec := ProductRecord{
		ID:             p.ID,
		Handle:         p.Handle,
		Title:          p.Title,
		Description:    p.Description,
		MinPriceAmount: p.PriceRange.MinVariantPrice.Amount,
		CurrencyCode:   p.PriceRange.MinVariantPrice.CurrencyCode,
	}

	for i, o := range p.Options {
		rec.Options = append(rec.Options, OptionRecord{
			ProductID: p.ID,
			Position:  i,
			Name:      o.Name,
			Values:    o.Values,
		})
	}
	for i, v := range p.Variants {
		rec.Variants = append(rec.Variants, VariantRecord{
			ID:               v.ID,
			ProductID:        p.ID,
			Position:         i,
			Title:            v.Title,
			PriceAmount:      v.Price.Amount,
			CurrencyCode:     v.Price.CurrencyCode,
			AvailableForSale: v.AvailableForSale,
			SelectedOptions:  v.SelectedOptions,
		})
	}
	for i, img := range p.Images {
		rec.Images = append(rec.Images, ImageRecord{
			ProductID: p.ID,
			Position:  i,
			URL:       img.URL,
			AltText:   img.AltText,
		})
	}
	return rec
}
