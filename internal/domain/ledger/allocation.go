package ledger

import (
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentAllocation matches a base-currency amount of one payment against one
// invoice. Rows are only ever written as a complete set per payment; the
// (payment, invoice) pair is unique.
type PaymentAllocation struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// NewPaymentAllocation creates a single allocation row.
func NewPaymentAllocation(paymentID, invoiceID uuid.UUID, amount decimal.Decimal) (*PaymentAllocation, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	return &PaymentAllocation{
		ID:        uuid.New(),
		PaymentID: paymentID,
		InvoiceID: invoiceID,
		Amount:    amount.Round(2),
		CreatedAt: time.Now(),
	}, nil
}

// OpenInvoice is an invoice with a positive remaining balance, the unit the
// FIFO allocator walks over.
type OpenInvoice struct {
	InvoiceID   uuid.UUID
	Type        TransactionType
	Date        time.Time
	CreatedAt   time.Time
	Description string
	DocumentNo  string
	Total       decimal.Decimal
	Allocated   decimal.Decimal
	Remaining   decimal.Decimal
}

// AllocationCandidate is one proposed allocation produced by the allocator or
// submitted manually. Candidates are not persisted until the whole set is
// accepted.
type AllocationCandidate struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// AllocationDetail is the read-only join of an allocation with the invoice it
// settles, denormalized for display.
type AllocationDetail struct {
	AllocationID  uuid.UUID
	PaymentID     uuid.UUID
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	CreatedAt     time.Time
	InvoiceType   TransactionType
	InvoiceDate   time.Time
	InvoiceAmount decimal.Decimal
	Description   string
	DocumentNo    string
}

// ValidateCandidates checks a full replacement set against the invoices it
// touches and the paying transaction: every amount positive, every invoice an
// allocatable counterpart of the payment, cumulative amounts within both the
// invoices' remaining balances and the payment base amount. invoices is keyed
// by invoice id and must cover every candidate; otherAllocated carries the
// amount already allocated to each invoice by payments other than this one
// (the payment's own rows are being replaced and do not count).
func ValidateCandidates(payment *Transaction, candidates []AllocationCandidate, invoices map[uuid.UUID]*Transaction, otherAllocated map[uuid.UUID]decimal.Decimal) error {
	if payment == nil {
		return shared.NewValidationError("payment transaction is required")
	}
	if !payment.Type.IsPayment() {
		return shared.NewConstraintViolation("allocations can only be set for payment transactions")
	}

	perInvoice := make(map[uuid.UUID]decimal.Decimal, len(candidates))
	total := decimal.Zero
	for _, c := range candidates {
		if !c.Amount.IsPositive() {
			return shared.NewValidationError("allocation amount must be positive")
		}
		invoice, ok := invoices[c.InvoiceID]
		if !ok || invoice == nil {
			return shared.NewNotFound("allocated invoice not found")
		}
		if invoice.Type != payment.Type.CounterpartType() {
			return shared.NewConstraintViolation("allocation links a payment to a non-matching invoice type")
		}
		perInvoice[c.InvoiceID] = perInvoice[c.InvoiceID].Add(c.Amount)
		total = total.Add(c.Amount)
	}

	for invoiceID, sum := range perInvoice {
		headroom := invoices[invoiceID].AmountInBase.Sub(otherAllocated[invoiceID])
		if sum.GreaterThan(headroom) {
			return shared.NewConstraintViolation("allocation exceeds invoice remaining balance")
		}
	}
	if total.GreaterThan(payment.AmountInBase) {
		return shared.NewConstraintViolation("allocations exceed the payment amount")
	}
	return nil
}
