// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

func catalogModels() []interface{} {
	// parents before children
	return []interface{}{
		&catalog.ProductRecord{},
		&catalog.OptionRecord{},
		&catalog.VariantRecord{},
		&catalog.ImageRecord{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for the catalog models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	for _, model := range catalogModels() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for the storefront read paths
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_catalog_products_created_at ON catalog_products(created_at, id)",
		"CREATE INDEX IF NOT EXISTS idx_catalog_variants_product_position ON catalog_product_variants(product_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_catalog_options_product_position ON catalog_product_options(product_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_catalog_images_product_position ON catalog_product_images(product_id, position)",
	}

	failCount := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			failCount++
			m.logger.WithError(err).Warnf("⚠️ Failed to create index: %s", stmt)
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", len(indexes)-failCount, failCount)
	if failCount > 0 {
		return fmt.Errorf("%d of %d indexes failed", failCount, len(indexes))
	}
	return nil
}

// SeedInitialData inserts demo products so a fresh storefront has something to sell
func (m *Migration) SeedInitialData(ctx context.Context) error {
	m.logger.Info("🌱 Seeding initial data...")

	var count int64
	if err := m.db.WithContext(ctx).Model(&catalog.ProductRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		m.logger.Infof("⏭️ Catalog already has %d products", count)
		return nil
	}

	products := catalog.NewService(catalog.NewGormRepository(m.db), m.logger)
	for _, p := range seedProducts() {
		if err := products.SaveProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Handle, err)
		}
		m.logger.WithField("handle", p.Handle).Info("✅ Seeded product")
	}

	m.logger.Info("✅ Initial data seeded successfully")
	return nil
}

// TableInfo is the row count of one catalog table
type TableInfo struct {
	Table   string
	Records int64
}

// GetTableInfo returns row counts for the catalog tables and logs them
func (m *Migration) GetTableInfo(ctx context.Context) ([]TableInfo, error) {
	info := make([]TableInfo, 0, len(catalogModels()))
	total := int64(0)

	for _, model := range catalogModels() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		var count int64
		if err := m.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", stmt.Table, err)
		}
		total += count
		info = append(info, TableInfo{Table: stmt.Table, Records: count})

		status := "✅"
		if count == 0 {
			status = "📭"
		}
		m.logger.Infof("%s %-25s | %d records", status, stmt.Table, count)
	}

	m.logger.Infof("📈 Total records across catalog tables: %d", total)
	return info, nil
}

// CleanupTestData removes the seeded demo products and their children
func (m *Migration) CleanupTestData(ctx context.Context) error {
	m.logger.Info("🧹 Cleaning up seed data...")

	ids := make([]string, 0, len(seedProducts()))
	for _, p := range seedProducts() {
		ids = append(ids, p.ID)
	}

	var removed int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&catalog.OptionRecord{}, &catalog.VariantRecord{}, &catalog.ImageRecord{}} {
			if err := tx.Where("product_id IN ?", ids).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id IN ?", ids).Delete(&catalog.ProductRecord{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return fmt.Errorf("failed to remove seed products: %w", err)
	}

	m.logger.Infof("🗑️ Removed %d seed products", removed)
	return nil
}

// DropAllTables drops the catalog tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.logger.Warn("⚠️ WARNING: Dropping all catalog tables...")

	models := catalogModels()
	// children first
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", models[i], err)
		}
	}

	m.logger.Info("✅ All tables dropped successfully")
	return nil
}

func seedProducts() []catalog.Product {
	usd := func(amount string) catalog.Money {
		return catalog.Money{Amount: decimal.RequireFromString(amount), CurrencyCode: "USD"}
	}

	return []catalog.Product{
		{
			ID:          "prod-classic-tee",
			Title:       "Classic Tee",
			Handle:      "classic-tee",
			Description: "A soft cotton tee with a relaxed fit.",
			Options: []catalog.Option{
				{Name: "Color", Values: []string{"Red", "Blue"}},
				{Name: "Size", Values: []string{"S", "M"}},
			},
			Variants: []catalog.Variant{
				{
					ID: "var-tee-red-s", Title: "Red / S", Price: usd("20.00"), AvailableForSale: true,
					SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "S"}},
				},
				{
					ID: "var-tee-red-m", Title: "Red / M", Price: usd("22.00"), AvailableForSale: false,
					SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}},
				},
				{
					ID: "var-tee-blue-s", Title: "Blue / S", Price: usd("20.00"), AvailableForSale: true,
					SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "S"}},
				},
			},
			Images: []catalog.Image{{URL: "https://cdn.example.com/products/classic-tee.jpg", AltText: "Classic Tee"}},
		},
		{
			ID:          "prod-canvas-tote",
			Title:       "Canvas Tote",
			Handle:      "canvas-tote",
			Description: "Heavyweight canvas tote bag.",
			Variants: []catalog.Variant{
				{ID: "var-tote-default", Title: "Default Title", Price: usd("35.00"), AvailableForSale: true},
			},
		},
		{
			ID:          "prod-wool-beanie",
			Title:       "Wool Beanie",
			Handle:      "wool-beanie",
			Description: "Merino wool beanie.",
			Options: []catalog.Option{
				{Name: "Color", Values: []string{"Grey"}},
			},
			Variants: []catalog.Variant{
				{
					ID: "var-beanie-grey", Title: "Grey", Price: usd("28.00"), AvailableForSale: false,
					SelectedOptions: []catalog.SelectedOption{{Name: "Color", Value: "Grey"}},
				},
			},
			Images: []catalog.Image{{URL: "https://cdn.example.com/products/wool-beanie.jpg", AltText: "Wool Beanie"}},
		},
	}
}
