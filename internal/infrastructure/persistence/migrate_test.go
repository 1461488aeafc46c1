package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrator_Run(t *testing.T) {
	t.Run("applies every migration once", func(t *testing.T) {
		db := newBareDB(t)
		migrator := NewMigrator(db, zap.NewNop())

		require.NoError(t, migrator.Run(context.Background()))

		applied, err := migrator.Applied(context.Background())
		require.NoError(t, err)
		want := make([]string, 0, len(Registry()))
		for _, m := range Registry() {
			want = append(want, m.ID)
		}
		assert.Equal(t, want, applied)

		// rerunning is a no-op
		require.NoError(t, migrator.Run(context.Background()))
		again, err := migrator.Applied(context.Background())
		require.NoError(t, err)
		assert.Equal(t, applied, again)
	})

	t.Run("seeds default categories covering every group", func(t *testing.T) {
		db := newTestDB(t)
		store := NewStore(db)

		categories, err := store.Categories.FindAll(context.Background(), ledger.CategoryFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, categories)

		groups := make(map[ledger.CategoryType]bool)
		for _, category := range categories {
			assert.True(t, category.IsDefault)
			groups[category.Type] = true
		}
		assert.True(t, groups[ledger.CategoryInvoiceOut])
		assert.True(t, groups[ledger.CategoryInvoiceIn])
		assert.True(t, groups[ledger.CategoryPayment])
	})

	t.Run("backfills allocation rows from legacy invoice links", func(t *testing.T) {
		db := newBareDB(t)
		migrator := NewMigrator(db, zap.NewNop())

		// bring the schema up without the data migrations
		require.NoError(t, db.AutoMigrate(models.All()...))

		store := NewStore(db)
		ctx := context.Background()
		company := mustCreateCompany(t, store, "Meridian Holding", ledger.CompanyRoleCustomer)
		invoice := mustCreateInvoice(t, store, company.ID, 5000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

		payment, err := ledger.NewTransaction(
			ledger.ScopeCari, &company.ID, nil,
			ledger.TypePaymentIn, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(7000), valueobject.TRY, decimal.NewFromInt(1),
		)
		require.NoError(t, err)
		payment.LinkedInvoiceID = &invoice.ID
		require.NoError(t, store.Transactions.Create(ctx, payment))

		require.NoError(t, migrator.Run(ctx))

		allocations, err := store.Allocations.FindByPayment(ctx, payment.ID)
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, invoice.ID, allocations[0].InvoiceID)
		// capped to the invoice amount, not the larger payment
		assert.True(t, allocations[0].Amount.Equal(decimal.NewFromInt(5000)))
	})
}
