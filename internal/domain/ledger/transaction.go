package ledger

import (
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionScope selects which view a transaction belongs to: the
// counterparty running account (cari), a project, or the firm itself.
type TransactionScope string

const (
	ScopeCari    TransactionScope = "cari"
	ScopeProject TransactionScope = "project"
	ScopeCompany TransactionScope = "company"
)

// IsValid checks if the scope is valid
func (s TransactionScope) IsValid() bool {
	switch s {
	case ScopeCari, ScopeProject, ScopeCompany:
		return true
	}
	return false
}

// TransactionType is the closed four-way variant every ledger computation
// dispatches on.
type TransactionType string

const (
	TypeInvoiceOut TransactionType = "invoice_out"
	TypePaymentIn  TransactionType = "payment_in"
	TypeInvoiceIn  TransactionType = "invoice_in"
	TypePaymentOut TransactionType = "payment_out"
)

// TransactionKind separates invoices from payments
type TransactionKind string

const (
	KindInvoice TransactionKind = "invoice"
	KindPayment TransactionKind = "payment"
)

// TypeTraits is the single lookup table behind the four-way type dispatch:
// ledger sign, allocation eligibility and category group all read from here
// so every call site stays consistent.
type TypeTraits struct {
	Sign             int
	Kind             TransactionKind
	AllowsAllocation bool
	CategoryGroup    CategoryType
	CounterpartType  TransactionType
}

var typeTraits = map[TransactionType]TypeTraits{
	TypeInvoiceOut: {Sign: +1, Kind: KindInvoice, AllowsAllocation: false, CategoryGroup: CategoryInvoiceOut, CounterpartType: TypePaymentIn},
	TypePaymentIn:  {Sign: +1, Kind: KindPayment, AllowsAllocation: true, CategoryGroup: CategoryPayment, CounterpartType: TypeInvoiceOut},
	TypeInvoiceIn:  {Sign: -1, Kind: KindInvoice, AllowsAllocation: false, CategoryGroup: CategoryInvoiceIn, CounterpartType: TypePaymentOut},
	TypePaymentOut: {Sign: -1, Kind: KindPayment, AllowsAllocation: true, CategoryGroup: CategoryPayment, CounterpartType: TypeInvoiceIn},
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	_, ok := typeTraits[t]
	return ok
}

// Traits returns the dispatch entry for the type
func (t TransactionType) Traits() TypeTraits {
	return typeTraits[t]
}

// IsInvoice reports whether the type is an invoice
func (t TransactionType) IsInvoice() bool {
	return typeTraits[t].Kind == KindInvoice
}

// IsPayment reports whether the type is a payment
func (t TransactionType) IsPayment() bool {
	return typeTraits[t].Kind == KindPayment
}

// CategoryGroup returns the category group a transaction of this type may be
// labeled with
func (t TransactionType) CategoryGroup() CategoryType {
	return typeTraits[t].CategoryGroup
}

// CounterpartType maps a payment type to the invoice type it settles, and an
// invoice type to the payment type that settles it.
func (t TransactionType) CounterpartType() TransactionType {
	return typeTraits[t].CounterpartType
}

// AllTransactionTypes returns all valid transaction types
func AllTransactionTypes() []TransactionType {
	return []TransactionType{TypeInvoiceOut, TypePaymentIn, TypeInvoiceIn, TypePaymentOut}
}

// Transaction is one ledger row: an invoice issued or received, or a payment
// collected or made. Amounts are stored both in the original currency and in
// the base currency at the exchange rate locked at creation.
type Transaction struct {
	shared.BaseEntity
	Scope        TransactionScope
	CompanyID    *uuid.UUID
	ProjectID    *uuid.UUID
	Type         TransactionType
	CategoryID   *uuid.UUID
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
	AmountInBase decimal.Decimal
	DocumentNo   string
	Notes        string

	// LinkedInvoiceID is the superseded single-invoice link kept for
	// read-compatibility with pre-allocation data. The allocation table is
	// canonical; a migration backfills it from this field.
	LinkedInvoiceID *uuid.UUID
}

// NewTransaction creates a transaction, locking the exchange rate and
// computing the persisted base-currency amount.
func NewTransaction(
	scope TransactionScope,
	companyID, projectID *uuid.UUID,
	txType TransactionType,
	date time.Time,
	amount decimal.Decimal,
	currency valueobject.Currency,
	exchangeRate decimal.Decimal,
) (*Transaction, error) {
	if !scope.IsValid() {
		return nil, shared.NewValidationError("transaction scope must be cari, project or company")
	}
	if !txType.IsValid() {
		return nil, shared.NewValidationError("transaction type must be invoice_out, payment_in, invoice_in or payment_out")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("transaction amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("transaction date is required")
	}
	if err := validateScopeRefs(scope, companyID, projectID); err != nil {
		return nil, err
	}

	original, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if currency.IsBase() {
		exchangeRate = decimal.NewFromInt(1)
	}
	base, err := original.ToBase(exchangeRate)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	return &Transaction{
		BaseEntity:   shared.NewBaseEntity(),
		Scope:        scope,
		CompanyID:    companyID,
		ProjectID:    projectID,
		Type:         txType,
		Date:         date,
		Amount:       amount,
		Currency:     currency,
		ExchangeRate: exchangeRate,
		AmountInBase: base.Amount(),
	}, nil
}

// validateScopeRefs enforces the scope/reference invariant: project-scope
// rows carry a project, cari-scope rows carry a company, company-scope rows
// carry neither as their primary key.
func validateScopeRefs(scope TransactionScope, companyID, projectID *uuid.UUID) error {
	switch scope {
	case ScopeProject:
		if projectID == nil {
			return shared.NewConstraintViolation("project-scope transactions require a project reference")
		}
	case ScopeCari:
		if companyID == nil {
			return shared.NewConstraintViolation("cari-scope transactions require a company reference")
		}
	case ScopeCompany:
		if companyID != nil || projectID != nil {
			return shared.NewConstraintViolation("company-scope transactions cannot reference a company or project")
		}
	}
	return nil
}

// Validate re-asserts the transaction's own invariants. Used by the store on
// every write and by the diagnostic integrity scan.
func (t *Transaction) Validate() error {
	if !t.Scope.IsValid() {
		return shared.NewValidationError("transaction scope must be cari, project or company")
	}
	if !t.Type.IsValid() {
		return shared.NewValidationError("transaction type must be invoice_out, payment_in, invoice_in or payment_out")
	}
	if !t.Amount.IsPositive() {
		return shared.NewValidationError("transaction amount must be positive")
	}
	if !t.AmountInBase.IsPositive() {
		return shared.NewValidationError("transaction base amount must be positive")
	}
	if !t.Currency.IsValid() {
		return shared.NewValidationError("transaction currency is not supported")
	}
	if t.Currency.IsBase() && !t.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		return shared.NewValidationError("base currency transactions must use exchange rate 1")
	}
	if !t.ExchangeRate.IsPositive() {
		return shared.NewValidationError("transaction exchange rate must be positive")
	}
	if expected := t.Amount.Mul(t.ExchangeRate).Round(2); !t.AmountInBase.Equal(expected) {
		return shared.NewValidationError("transaction base amount does not match amount times exchange rate")
	}
	return validateScopeRefs(t.Scope, t.CompanyID, t.ProjectID)
}

// SetCategory labels the transaction, enforcing the category-group match.
func (t *Transaction) SetCategory(category *Category) error {
	if category == nil {
		t.CategoryID = nil
		return nil
	}
	if category.Type != t.Type.CategoryGroup() {
		return shared.NewConstraintViolation("category group does not match transaction type")
	}
	id := category.ID
	t.CategoryID = &id
	return nil
}

// TransactionPatch carries a partial field-by-field update. Amount, currency
// and exchange rate are patched together so the persisted base amount stays
// consistent; the rate stays locked unless explicitly re-supplied.
type TransactionPatch struct {
	Date         *time.Time
	Description  *string
	Amount       *decimal.Decimal
	Currency     *valueobject.Currency
	ExchangeRate *decimal.Decimal
	DocumentNo   *string
	Notes        *string
}

// Apply merges the patch into the transaction and recomputes the base amount
// when any monetary field changed.
func (t *Transaction) Apply(p TransactionPatch) error {
	if p.Date != nil {
		if p.Date.IsZero() {
			return shared.NewValidationError("transaction date is required")
		}
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DocumentNo != nil {
		t.DocumentNo = *p.DocumentNo
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}

	if p.Amount != nil || p.Currency != nil || p.ExchangeRate != nil {
		amount := t.Amount
		currency := t.Currency
		rate := t.ExchangeRate
		if p.Amount != nil {
			amount = *p.Amount
		}
		if p.Currency != nil {
			currency = *p.Currency
		}
		if p.ExchangeRate != nil {
			rate = *p.ExchangeRate
		}
		if !amount.IsPositive() {
			return shared.NewValidationError("transaction amount must be positive")
		}
		original, err := valueobject.NewMoney(amount, currency)
		if err != nil {
			return shared.NewValidationError(err.Error())
		}
		if currency.IsBase() {
			rate = decimal.NewFromInt(1)
		}
		base, err := original.ToBase(rate)
		if err != nil {
			return shared.NewValidationError(err.Error())
		}
		t.Amount = amount
		t.Currency = currency
		t.ExchangeRate = rate
		t.AmountInBase = base.Amount()
	}
	t.Touch()
	return nil
}
