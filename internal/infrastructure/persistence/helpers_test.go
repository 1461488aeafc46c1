package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with all migrations applied
func newTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, NewMigrator(db, zap.NewNop()).Run(context.Background()))
	return db
}

func newTestTxManager(t *testing.T) *TxManager {
	t.Helper()
	return NewTxManager(newTestDB(t), zap.NewNop())
}

func mustCreateCompany(t *testing.T, store *Store, name string, role ledger.CompanyRole) *ledger.Company {
	t.Helper()
	company, err := ledger.NewCompany(ledger.CompanyKindOrganization, role, name)
	require.NoError(t, err)
	require.NoError(t, store.Companies.Create(context.Background(), company))
	return company
}

func mustCreateInvoice(t *testing.T, store *Store, companyID uuid.UUID, amount float64, date time.Time) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(
		ledger.ScopeCari, &companyID, nil,
		ledger.TypeInvoiceOut, date,
		decimal.NewFromFloat(amount), valueobject.TRY, decimal.NewFromInt(1),
	)
	require.NoError(t, err)
	require.NoError(t, store.Transactions.Create(context.Background(), tx))
	return tx
}

func mustCreatePayment(t *testing.T, store *Store, companyID uuid.UUID, amount float64, date time.Time) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(
		ledger.ScopeCari, &companyID, nil,
		ledger.TypePaymentIn, date,
		decimal.NewFromFloat(amount), valueobject.TRY, decimal.NewFromInt(1),
	)
	require.NoError(t, err)
	require.NoError(t, store.Transactions.Create(context.Background(), tx))
	return tx
}
