package ledger

import (
	"context"
	"testing"
	"time"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/infrastructure/cache"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	ledger      *LedgerService
	allocations *AllocationService
	reports     *ReportService
	txm         *persistence.TxManager
	summary     *cache.SummaryCache
}

func newTestEnv(t *testing.T) *testEnv {
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

	require.NoError(t, persistence.NewMigrator(db, zap.NewNop()).Run(context.Background()))

	txm := persistence.NewTxManager(db, zap.NewNop())
	store := persistence.NewStore(db)
	summary := cache.NewSummaryCache()
	log := zap.NewNop()

	return &testEnv{
		ledger:      NewLedgerService(txm, store, summary, log),
		allocations: NewAllocationService(txm, store, summary, log),
		reports:     NewReportService(txm, store, summary, log),
		txm:         txm,
		summary:     summary,
	}
}

func (e *testEnv) createCompany(t *testing.T, name, role string) *CompanyResponse {
	t.Helper()
	company, err := e.ledger.CreateCompany(context.Background(), CreateCompanyRequest{
		Kind: "organization",
		Role: role,
		Name: name,
	})
	require.NoError(t, err)
	return company
}

func (e *testEnv) createClientProject(t *testing.T, code, name string, clientID uuid.UUID) *ProjectResponse {
	t.Helper()
	project, err := e.ledger.CreateProject(context.Background(), CreateProjectRequest{
		Code:            code,
		Name:            name,
		Ownership:       "client",
		ClientCompanyID: &clientID,
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) bookTransaction(t *testing.T, req CreateTransactionRequest) *TransactionResponse {
	t.Helper()
	tx, err := e.ledger.CreateTransaction(context.Background(), req)
	require.NoError(t, err)
	return tx
}

func (e *testEnv) bookCariInvoiceOut(t *testing.T, companyID uuid.UUID, amount float64, date time.Time) *TransactionResponse {
	t.Helper()
	return e.bookTransaction(t, CreateTransactionRequest{
		Scope:     "cari",
		CompanyID: &companyID,
		Type:      string(domain.TypeInvoiceOut),
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
		Currency:  "TRY",
	})
}

func (e *testEnv) bookCariPaymentIn(t *testing.T, companyID uuid.UUID, amount float64, date time.Time) *TransactionResponse {
	t.Helper()
	return e.bookTransaction(t, CreateTransactionRequest{
		Scope:     "cari",
		CompanyID: &companyID,
		Type:      string(domain.TypePaymentIn),
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
		Currency:  "TRY",
	})
}

func (e *testEnv) bookProjectTx(t *testing.T, projectID uuid.UUID, txType string, amount float64, date time.Time) *TransactionResponse {
	t.Helper()
	return e.bookTransaction(t, CreateTransactionRequest{
		Scope:     "project",
		ProjectID: &projectID,
		Type:      txType,
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
		Currency:  "TRY",
	})
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}
