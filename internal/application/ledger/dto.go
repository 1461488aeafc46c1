package ledger

import (
	"time"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Company DTOs
// =============================================================================

// CreateCompanyRequest represents a request to create a counterparty
type CreateCompanyRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=person organization"`
	Role      string `json:"role" validate:"required,oneof=customer supplier subcontractor investor"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	TaxNumber string `json:"tax_number" validate:"max=50"`
	Phone     string `json:"phone" validate:"max=50"`
	Email     string `json:"email" validate:"omitempty,email,max=200"`
	Address   string `json:"address" validate:"max=500"`
}

// UpdateCompanyRequest represents a partial update to a counterparty
type UpdateCompanyRequest struct {
	Kind      *string `json:"kind" validate:"omitempty,oneof=person organization"`
	Role      *string `json:"role" validate:"omitempty,oneof=customer supplier subcontractor investor"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	TaxNumber *string `json:"tax_number" validate:"omitempty,max=50"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email,max=200"`
	Address   *string `json:"address" validate:"omitempty,max=500"`
	Active    *bool   `json:"active"`
}

// =============================================================================
// Project DTOs
// =============================================================================

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Code            string           `json:"code" validate:"required,min=1,max=50"`
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Ownership       string           `json:"ownership" validate:"required,oneof=own client"`
	ClientCompanyID *uuid.UUID       `json:"client_company_id"`
	EstimatedBudget *decimal.Decimal `json:"estimated_budget"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
}

// UpdateProjectRequest represents a partial update to a project
type UpdateProjectRequest struct {
	Code            *string          `json:"code" validate:"omitempty,min=1,max=50"`
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Ownership       *string          `json:"ownership" validate:"omitempty,oneof=own client"`
	ClientCompanyID *uuid.UUID       `json:"client_company_id"`
	ClearClientRef  bool             `json:"clear_client_ref"`
	Status          *string          `json:"status" validate:"omitempty,oneof=planned active completed cancelled"`
	EstimatedBudget *decimal.Decimal `json:"estimated_budget"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
}

// =============================================================================
// Category DTOs
// =============================================================================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"required,oneof=invoice_out invoice_in payment"`
	Color string `json:"color" validate:"max=10"`
}

// UpdateCategoryRequest represents a partial update to a category
type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,max=10"`
}

// =============================================================================
// Transaction DTOs
// =============================================================================

// CreateTransactionRequest represents a request to book a ledger row
type CreateTransactionRequest struct {
	Scope        string           `json:"scope" validate:"required,oneof=cari project company"`
	CompanyID    *uuid.UUID       `json:"company_id"`
	ProjectID    *uuid.UUID       `json:"project_id"`
	Type         string           `json:"type" validate:"required,oneof=invoice_out payment_in invoice_in payment_out"`
	CategoryID   *uuid.UUID       `json:"category_id"`
	Date         time.Time        `json:"date" validate:"required"`
	Description  string           `json:"description" validate:"max=500"`
	Amount       decimal.Decimal  `json:"amount" validate:"required"`
	Currency     string           `json:"currency" validate:"required,oneof=TRY USD EUR"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	DocumentNo   string           `json:"document_no" validate:"max=100"`
	Notes        string           `json:"notes"`
}

// UpdateTransactionRequest represents a partial update to a ledger row
type UpdateTransactionRequest struct {
	Date          *time.Time       `json:"date"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Description   *string          `json:"description" validate:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      *string          `json:"currency" validate:"omitempty,oneof=TRY USD EUR"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate"`
	DocumentNo    *string          `json:"document_no" validate:"omitempty,max=100"`
	Notes         *string          `json:"notes"`
}

// =============================================================================
// Allocation DTOs
// =============================================================================

// AllocationRequest is one invoice/amount pair in a replacement set
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

// SetAllocationsRequest replaces a payment's whole allocation set
type SetAllocationsRequest struct {
	PaymentID   uuid.UUID           `json:"payment_id" validate:"required"`
	Allocations []AllocationRequest `json:"allocations" validate:"dive"`
}

// OpenInvoiceScope selects whose open invoices to list
type OpenInvoiceScope string

const (
	OpenInvoicesForCompany OpenInvoiceScope = "company"
	OpenInvoicesForProject OpenInvoiceScope = "project"
)

// =============================================================================
// Responses
// =============================================================================

// CompanyResponse represents a counterparty in responses
type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	TaxNumber string    `json:"tax_number"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCompanyResponse(c *domain.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Role:      string(c.Role),
		Name:      c.Name,
		TaxNumber: c.TaxNumber,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ProjectResponse represents a project in responses
type ProjectResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Ownership       string          `json:"ownership"`
	ClientCompanyID *uuid.UUID      `json:"client_company_id,omitempty"`
	Status          string          `json:"status"`
	EstimatedBudget decimal.Decimal `json:"estimated_budget"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toProjectResponse(p *domain.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Ownership:       string(p.Ownership),
		ClientCompanyID: p.ClientCompanyID,
		Status:          string(p.Status),
		EstimatedBudget: p.EstimatedBudget,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// CategoryResponse represents a category in responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
}

func toCategoryResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

// TransactionResponse represents a ledger row in responses
type TransactionResponse struct {
	ID           uuid.UUID            `json:"id"`
	Scope        string               `json:"scope"`
	CompanyID    *uuid.UUID           `json:"company_id,omitempty"`
	ProjectID    *uuid.UUID           `json:"project_id,omitempty"`
	Type         string               `json:"type"`
	CategoryID   *uuid.UUID           `json:"category_id,omitempty"`
	Date         time.Time            `json:"date"`
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	Currency     valueobject.Currency `json:"currency"`
	ExchangeRate decimal.Decimal      `json:"exchange_rate"`
	AmountInBase decimal.Decimal      `json:"amount_in_base"`
	DocumentNo   string               `json:"document_no"`
	Notes        string               `json:"notes"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func toTransactionResponse(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		Scope:        string(t.Scope),
		CompanyID:    t.CompanyID,
		ProjectID:    t.ProjectID,
		Type:         string(t.Type),
		CategoryID:   t.CategoryID,
		Date:         t.Date,
		Description:  t.Description,
		Amount:       t.Amount,
		Currency:     t.Currency,
		ExchangeRate: t.ExchangeRate,
		AmountInBase: t.AmountInBase,
		DocumentNo:   t.DocumentNo,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TrashEntryResponse represents one soft-deleted graph in listings
type TrashEntryResponse struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entity_type"`
	Label      string    `json:"label"`
	DeletedAt  time.Time `json:"deleted_at"`
}
