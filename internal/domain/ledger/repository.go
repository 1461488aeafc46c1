package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyFilter narrows company listings.
type CompanyFilter struct {
	Kind   *CompanyKind
	Role   *CompanyRole
	Active *bool
	Search string
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Ownership       *ProjectOwnership
	Status          *ProjectStatus
	ClientCompanyID *uuid.UUID
	Search          string
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Type *CategoryType
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Scope      *TransactionScope
	CompanyID  *uuid.UUID
	ProjectID  *uuid.UUID
	Type       *TransactionType
	CategoryID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// CompanyRepository is the store for counterparties.
type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindAll(ctx context.Context, filter CompanyFilter) ([]Company, error)
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository is the store for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByCode(ctx context.Context, code string) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]Project, error)
	FindByClientCompany(ctx context.Context, companyID uuid.UUID) ([]Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository is the store for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter CategoryFilter) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository is the store for ledger rows.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

// AllocationRepository is the store for payment allocations. Rows are only
// replaced as a complete set per payment, never inserted one by one.
type AllocationRepository interface {
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]PaymentAllocation, error)
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]PaymentAllocation, error)
	FindDetailsByPayment(ctx context.Context, paymentID uuid.UUID) ([]AllocationDetail, error)
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	SumByInvoiceExcludingPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (decimal.Decimal, error)
	SumsByPayment(ctx context.Context, paymentIDs []uuid.UUID) (AllocatedSums, error)
	SumsByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	ReplaceForPayment(ctx context.Context, paymentID uuid.UUID, allocations []PaymentAllocation) error
	DeleteByTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// TrashRepository is the store for soft-deleted graphs.
type TrashRepository interface {
	Create(ctx context.Context, entry *TrashEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*TrashEntry, error)
	FindAll(ctx context.Context) ([]TrashEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}
