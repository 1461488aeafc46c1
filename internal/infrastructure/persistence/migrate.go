package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaVersion is the version stamped into snapshots. Bump it whenever a
// migration changes the shape of the exported data.
const SchemaVersion = 3

// Migration is one irreversible schema or data change, applied exactly once
// and recorded in schema_migrations. Migrations run in registry order.
type Migration struct {
	ID  string
	Run func(ctx context.Context, db *gorm.DB) error
}

// Registry returns every known migration in order. IDs are stable; the
// snapshot format embeds the applied list so imports from older exports can
// replay what they are missing.
func Registry() []Migration {
	return []Migration{
		{ID: "0001_initial_schema", Run: migrateInitialSchema},
		{ID: "0002_seed_default_categories", Run: migrateSeedDefaultCategories},
		{ID: "0003_backfill_allocations_from_linked_invoice", Run: migrateBackfillAllocations},
	}
}

func migrateInitialSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(models.All()...)
}

func migrateSeedDefaultCategories(ctx context.Context, db *gorm.DB) error {
	for _, seed := range ledger.DefaultCategorySeeds() {
		var count int64
		err := db.WithContext(ctx).Model(&models.CategoryModel{}).
			Where("name = ? AND type = ?", seed.Name, seed.Type).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		category, err := ledger.NewCategory(seed.Name, seed.Type, seed.Color)
		if err != nil {
			return err
		}
		category.IsDefault = true
		var model models.CategoryModel
		model.FromDomain(category)
		if err := db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

// migrateBackfillAllocations converts the legacy single-link column into
// allocation rows. A linked payment becomes one allocation for its full base
// amount, capped to the invoice base amount, skipping pairs that already have
// a row.
func migrateBackfillAllocations(ctx context.Context, db *gorm.DB) error {
	var payments []models.TransactionModel
	err := db.WithContext(ctx).
		Where("linked_invoice_id IS NOT NULL").
		Order("date ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return err
	}
	for _, payment := range payments {
		var existing int64
		err := db.WithContext(ctx).Model(&models.PaymentAllocationModel{}).
			Where("payment_id = ? AND invoice_id = ?", payment.ID, *payment.LinkedInvoiceID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		var invoice models.TransactionModel
		if err := db.WithContext(ctx).First(&invoice, "id = ?", *payment.LinkedInvoiceID).Error; err != nil {
			// dangling legacy link, nothing to backfill
			continue
		}
		amount := payment.AmountInBase
		if amount.GreaterThan(invoice.AmountInBase) {
			amount = invoice.AmountInBase
		}
		if !amount.IsPositive() {
			continue
		}
		allocation, err := ledger.NewPaymentAllocation(payment.ID, invoice.ID, amount)
		if err != nil {
			return err
		}
		var model models.PaymentAllocationModel
		model.FromDomain(allocation)
		if err := db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Migrator applies pending migrations and answers which ones ran.
type Migrator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMigrator creates a Migrator over the database handle
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Run applies every registered migration that is not yet recorded, in order.
// The schema_migrations table itself is created on first run.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&models.SchemaMigrationModel{}); err != nil {
		return fmt.Errorf("prepare migrations table: %w", err)
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	appliedSet := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		appliedSet[id] = struct{}{}
	}

	for _, migration := range Registry() {
		if _, ok := appliedSet[migration.ID]; ok {
			continue
		}
		m.logger.Info("applying migration", zap.String("id", migration.ID))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Run(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigrationModel{
				ID:        migration.ID,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", migration.ID, err)
		}
	}
	return nil
}

// Applied returns the ids of every recorded migration in application order
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	var rows []models.SchemaMigrationModel
	err := m.db.WithContext(ctx).Order("applied_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}
