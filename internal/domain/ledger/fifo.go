package ledger

import (
	"sort"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationPlan is the outcome of a FIFO walk: the candidate rows to submit,
// plus bookkeeping for display. Nothing is persisted until the caller submits
// the candidates as a replacement set.
type AllocationPlan struct {
	Candidates           []AllocationCandidate
	TotalAllocated       decimal.Decimal
	RemainingPayment     decimal.Decimal
	FullyAllocated       bool
	InvoicesFullySettled []uuid.UUID
}

// AutoAllocateFIFO walks the open invoices oldest-date-first and allocates
// min(remaining payment, invoice remaining) to each, rounded to two decimals,
// until the payment is exhausted or the invoices run out. Ties on date break
// by creation order, so repeated calls over the same snapshot produce the
// same plan.
func AutoAllocateFIFO(openInvoices []OpenInvoice, payment valueobject.Money) (*AllocationPlan, error) {
	if payment.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if !payment.Currency().IsBase() {
		return nil, shared.NewValidationError("auto-allocation works on base currency amounts")
	}

	ordered := make([]OpenInvoice, len(openInvoices))
	copy(ordered, openInvoices)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	plan := &AllocationPlan{
		Candidates:           make([]AllocationCandidate, 0, len(ordered)),
		TotalAllocated:       decimal.Zero,
		RemainingPayment:     payment.Amount(),
		InvoicesFullySettled: make([]uuid.UUID, 0),
	}

	for _, invoice := range ordered {
		if plan.RemainingPayment.IsZero() {
			break
		}
		if invoice.Remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}

		amount := decimal.Min(plan.RemainingPayment, invoice.Remaining).Round(2)
		plan.Candidates = append(plan.Candidates, AllocationCandidate{
			InvoiceID: invoice.InvoiceID,
			Amount:    amount,
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(amount)
		plan.RemainingPayment = plan.RemainingPayment.Sub(amount)

		if amount.GreaterThanOrEqual(invoice.Remaining) {
			plan.InvoicesFullySettled = append(plan.InvoicesFullySettled, invoice.InvoiceID)
		}
	}

	plan.FullyAllocated = plan.RemainingPayment.IsZero()
	return plan, nil
}
