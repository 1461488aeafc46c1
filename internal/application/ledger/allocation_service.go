package ledger

import (
	"context"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/buildledger/backend/internal/infrastructure/cache"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService matches payments against invoices: listing open
// invoices, planning FIFO allocations and atomically replacing a payment's
// allocation set.
type AllocationService struct {
	txm     *persistence.TxManager
	store   *persistence.Store
	summary *cache.SummaryCache
	logger  *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(txm *persistence.TxManager, store *persistence.Store, summary *cache.SummaryCache, logger *zap.Logger) *AllocationService {
	return &AllocationService{txm: txm, store: store, summary: summary, logger: logger}
}

// GetOpenInvoices lists the invoices of one company or project that still
// have a remaining balance, oldest first. invoiceType selects the direction
// (invoice_out for incoming payments, invoice_in for outgoing ones).
func (s *AllocationService) GetOpenInvoices(ctx context.Context, entityID uuid.UUID, scope OpenInvoiceScope, invoiceType domain.TransactionType) ([]domain.OpenInvoice, error) {
	if !invoiceType.IsInvoice() {
		return nil, shared.NewValidationError("open invoices exist only for invoice transaction types")
	}

	filter := domain.TransactionFilter{Type: &invoiceType}
	switch scope {
	case OpenInvoicesForCompany:
		filter.CompanyID = &entityID
	case OpenInvoicesForProject:
		filter.ProjectID = &entityID
	default:
		return nil, shared.NewValidationError("open invoice scope must be company or project")
	}

	var open []domain.OpenInvoice
	err := s.txm.View(ctx, func(ctx context.Context, store *persistence.Store) error {
		invoices, err := store.Transactions.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(invoices))
		for i := range invoices {
			ids[i] = invoices[i].ID
		}
		allocated, err := store.Allocations.SumsByInvoice(ctx, ids)
		if err != nil {
			return err
		}
		for i := range invoices {
			invoice := &invoices[i]
			remaining := invoice.AmountInBase.Sub(allocated[invoice.ID])
			if !remaining.IsPositive() {
				continue
			}
			open = append(open, domain.OpenInvoice{
				InvoiceID:   invoice.ID,
				Type:        invoice.Type,
				Date:        invoice.Date,
				CreatedAt:   invoice.CreatedAt,
				Description: invoice.Description,
				DocumentNo:  invoice.DocumentNo,
				Total:       invoice.AmountInBase,
				Allocated:   allocated[invoice.ID],
				Remaining:   remaining,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return open, nil
}

// PlanAutoAllocation builds a FIFO allocation plan for a payment without
// persisting anything. The payment's open-invoice universe is its company or
// project in the matching invoice direction.
func (s *AllocationService) PlanAutoAllocation(ctx context.Context, paymentID uuid.UUID) (*domain.AllocationPlan, error) {
	payment, err := s.store.Transactions.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Type.IsPayment() {
		return nil, shared.NewConstraintViolation("allocations can only be set for payment transactions")
	}

	scope := OpenInvoicesForCompany
	entityID := uuid.Nil
	switch {
	case payment.CompanyID != nil:
		entityID = *payment.CompanyID
	case payment.ProjectID != nil:
		scope = OpenInvoicesForProject
		entityID = *payment.ProjectID
	default:
		return nil, shared.NewConstraintViolation("company-scoped payments have no invoice universe to allocate against")
	}

	open, err := s.GetOpenInvoices(ctx, entityID, scope, payment.Type.CounterpartType())
	if err != nil {
		return nil, err
	}

	// plan against the payment's still-unallocated remainder
	sums, err := s.store.Allocations.SumsByPayment(ctx, []uuid.UUID{paymentID})
	if err != nil {
		return nil, err
	}
	remainder := payment.AmountInBase.Sub(sums[paymentID])
	if !remainder.IsPositive() {
		return &domain.AllocationPlan{
			RemainingPayment: decimal.Zero,
			FullyAllocated:   true,
		}, nil
	}
	return domain.AutoAllocateFIFO(open, valueobject.NewMoneyTRY(remainder))
}

// SetAllocations atomically replaces the payment's whole allocation set with
// the submitted one. The set is validated against invoice remainders that
// exclude this payment's own rows, so resubmitting an unchanged set is always
// legal.
func (s *AllocationService) SetAllocations(ctx context.Context, req SetAllocationsRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	candidates := make([]domain.AllocationCandidate, len(req.Allocations))
	for i, a := range req.Allocations {
		candidates[i] = domain.AllocationCandidate{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}

	var payment *domain.Transaction
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		var err error
		payment, err = store.Transactions.FindByID(ctx, req.PaymentID)
		if err != nil {
			return err
		}

		invoiceIDs := make([]uuid.UUID, 0, len(candidates))
		seen := make(map[uuid.UUID]struct{}, len(candidates))
		for _, c := range candidates {
			if _, ok := seen[c.InvoiceID]; ok {
				continue
			}
			seen[c.InvoiceID] = struct{}{}
			invoiceIDs = append(invoiceIDs, c.InvoiceID)
		}
		invoiceRows, err := store.Transactions.FindByIDs(ctx, invoiceIDs)
		if err != nil {
			return err
		}
		invoices := make(map[uuid.UUID]*domain.Transaction, len(invoiceRows))
		for i := range invoiceRows {
			invoices[invoiceRows[i].ID] = &invoiceRows[i]
		}

		otherAllocated := make(map[uuid.UUID]decimal.Decimal, len(invoiceIDs))
		for _, invoiceID := range invoiceIDs {
			sum, err := store.Allocations.SumByInvoiceExcludingPayment(ctx, invoiceID, req.PaymentID)
			if err != nil {
				return err
			}
			otherAllocated[invoiceID] = sum
		}

		if err := domain.ValidateCandidates(payment, candidates, invoices, otherAllocated); err != nil {
			return err
		}

		rows := make([]domain.PaymentAllocation, 0, len(candidates))
		merged := make(map[uuid.UUID]decimal.Decimal, len(candidates))
		for _, c := range candidates {
			merged[c.InvoiceID] = merged[c.InvoiceID].Add(c.Amount)
		}
		for _, invoiceID := range invoiceIDs {
			allocation, err := domain.NewPaymentAllocation(req.PaymentID, invoiceID, merged[invoiceID])
			if err != nil {
				return err
			}
			rows = append(rows, *allocation)
		}
		return store.Allocations.ReplaceForPayment(ctx, req.PaymentID, rows)
	})
	if err != nil {
		return err
	}

	if payment.CompanyID != nil {
		s.summary.InvalidatePrefix("company:" + payment.CompanyID.String())
	}
	if payment.ProjectID != nil {
		s.summary.InvalidatePrefix("project:" + payment.ProjectID.String())
	}
	s.summary.InvalidatePrefix("dashboard")
	s.summary.InvalidatePrefix("totals")
	s.logger.Info("allocations replaced",
		zap.String("payment_id", req.PaymentID.String()),
		zap.Int("rows", len(candidates)))
	return nil
}

// AutoAllocate plans a FIFO allocation for the payment's remainder and
// persists the combined set in one step.
func (s *AllocationService) AutoAllocate(ctx context.Context, paymentID uuid.UUID) (*domain.AllocationPlan, error) {
	plan, err := s.PlanAutoAllocation(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if len(plan.Candidates) == 0 {
		return plan, nil
	}

	existing, err := s.store.Allocations.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	req := SetAllocationsRequest{PaymentID: paymentID}
	for _, row := range existing {
		req.Allocations = append(req.Allocations, AllocationRequest{InvoiceID: row.InvoiceID, Amount: row.Amount})
	}
	for _, c := range plan.Candidates {
		req.Allocations = append(req.Allocations, AllocationRequest{InvoiceID: c.InvoiceID, Amount: c.Amount})
	}
	if err := s.SetAllocations(ctx, req); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetAllocations returns the payment's allocation rows joined with invoice
// metadata for display.
func (s *AllocationService) GetAllocations(ctx context.Context, paymentID uuid.UUID) ([]domain.AllocationDetail, error) {
	if _, err := s.store.Transactions.FindByID(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.store.Allocations.FindDetailsByPayment(ctx, paymentID)
}
