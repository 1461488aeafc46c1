package ledger

import (
	"context"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/infrastructure/cache"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService computes the ledger rollups, reading through the summary
// cache. The calculators themselves are pure; this service only feeds them
// consistent transaction sets and caches the results.
type ReportService struct {
	txm     *persistence.TxManager
	store   *persistence.Store
	summary *cache.SummaryCache
	logger  *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(txm *persistence.TxManager, store *persistence.Store, summary *cache.SummaryCache, logger *zap.Logger) *ReportService {
	return &ReportService{txm: txm, store: store, summary: summary, logger: logger}
}

// CompanyLedger returns the counterparty running account. Payments count in
// full whether or not they are allocated.
func (s *ReportService) CompanyLedger(ctx context.Context, companyID uuid.UUID) (*domain.CompanyLedgerSummary, error) {
	key := "company:" + companyID.String() + ":ledger"
	if cached, ok := s.summary.Get(key).(*domain.CompanyLedgerSummary); ok {
		return cached, nil
	}

	if _, err := s.store.Companies.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions.FindAll(ctx, domain.TransactionFilter{CompanyID: &companyID})
	if err != nil {
		return nil, err
	}
	result := domain.CalculateCompanyLedger(txs)
	s.summary.Set(key, &result)
	return &result, nil
}

// ProjectLedger returns the project profitability view. Only the allocated
// portion of payments settles invoices here.
func (s *ReportService) ProjectLedger(ctx context.Context, projectID uuid.UUID) (*domain.ProjectLedgerSummary, error) {
	key := "project:" + projectID.String() + ":ledger"
	if cached, ok := s.summary.Get(key).(*domain.ProjectLedgerSummary); ok {
		return cached, nil
	}

	var result domain.ProjectLedgerSummary
	err := s.txm.View(ctx, func(ctx context.Context, store *persistence.Store) error {
		project, err := store.Projects.FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		txs, err := store.Transactions.FindAll(ctx, domain.TransactionFilter{ProjectID: &projectID})
		if err != nil {
			return err
		}
		paymentIDs := make([]uuid.UUID, 0, len(txs))
		for i := range txs {
			if txs[i].Type.IsPayment() {
				paymentIDs = append(paymentIDs, txs[i].ID)
			}
		}
		allocated, err := store.Allocations.SumsByPayment(ctx, paymentIDs)
		if err != nil {
			return err
		}
		result = domain.CalculateProjectLedger(txs, allocated, project.Ownership, project.EstimatedBudget)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.summary.Set(key, &result)
	return &result, nil
}

// DashboardTotals returns the firm-wide rollup over every transaction
func (s *ReportService) DashboardTotals(ctx context.Context) (*domain.DashboardSummary, error) {
	key := "dashboard"
	if cached, ok := s.summary.Get(key).(*domain.DashboardSummary); ok {
		return cached, nil
	}

	txs, err := s.store.Transactions.FindAll(ctx, domain.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	result := domain.CalculateDashboardTotals(txs)
	s.summary.Set(key, &result)
	return &result, nil
}

// TransactionTotals returns list totals over an arbitrary filter. Only the
// unfiltered rollup is cached; filtered variants are cheap one-off scans.
func (s *ReportService) TransactionTotals(ctx context.Context, filter domain.TransactionFilter) (*domain.TransactionTotals, error) {
	unfiltered := filter == (domain.TransactionFilter{})
	key := "totals:all"
	if unfiltered {
		if cached, ok := s.summary.Get(key).(*domain.TransactionTotals); ok {
			return cached, nil
		}
	}

	txs, err := s.store.Transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := domain.CalculateTransactionTotals(txs)
	if unfiltered {
		s.summary.Set(key, &result)
	}
	return &result, nil
}
