package models

import (
	"time"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for counterparties.
type CompanyModel struct {
	BaseModel
	Kind      ledger.CompanyKind `gorm:"type:varchar(20);not null"`
	Role      ledger.CompanyRole `gorm:"type:varchar(20);not null;index"`
	Name      string             `gorm:"type:varchar(200);not null"`
	TaxNumber string             `gorm:"type:varchar(50)"`
	Phone     string             `gorm:"type:varchar(50)"`
	Email     string             `gorm:"type:varchar(200)"`
	Address   string             `gorm:"type:text"`
	Active    bool               `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string { return "companies" }

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *ledger.Company {
	return &ledger.Company{
		BaseEntity: m.BaseModel.ToDomain(),
		Kind:       m.Kind,
		Role:       m.Role,
		Name:       m.Name,
		TaxNumber:  m.TaxNumber,
		Phone:      m.Phone,
		Email:      m.Email,
		Address:    m.Address,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Company.
func (m *CompanyModel) FromDomain(c *ledger.Company) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Kind = c.Kind
	m.Role = c.Role
	m.Name = c.Name
	m.TaxNumber = c.TaxNumber
	m.Phone = c.Phone
	m.Email = c.Email
	m.Address = c.Address
	m.Active = c.Active
}

// ProjectModel is the persistence model for projects.
type ProjectModel struct {
	BaseModel
	Code            string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string                  `gorm:"type:varchar(200);not null"`
	Ownership       ledger.ProjectOwnership `gorm:"type:varchar(10);not null"`
	ClientCompanyID *uuid.UUID              `gorm:"type:uuid;index"`
	Status          ledger.ProjectStatus    `gorm:"type:varchar(20);not null;default:'planned';index"`
	EstimatedBudget decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	StartDate       *time.Time
	EndDate         *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string { return "projects" }

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *ledger.Project {
	return &ledger.Project{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Name:            m.Name,
		Ownership:       m.Ownership,
		ClientCompanyID: m.ClientCompanyID,
		Status:          m.Status,
		EstimatedBudget: m.EstimatedBudget,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain Project.
func (m *ProjectModel) FromDomain(p *ledger.Project) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Name = p.Name
	m.Ownership = p.Ownership
	m.ClientCompanyID = p.ClientCompanyID
	m.Status = p.Status
	m.EstimatedBudget = p.EstimatedBudget
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
}

// CategoryModel is the persistence model for categories.
type CategoryModel struct {
	BaseModel
	Name      string              `gorm:"type:varchar(100);not null"`
	Type      ledger.CategoryType `gorm:"type:varchar(20);not null;index"`
	Color     string              `gorm:"type:varchar(10)"`
	IsDefault bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string { return "categories" }

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Type:       m.Type,
		Color:      m.Color,
		IsDefault:  m.IsDefault,
	}
}

// FromDomain populates the persistence model from a domain Category.
func (m *CategoryModel) FromDomain(c *ledger.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Type = c.Type
	m.Color = c.Color
	m.IsDefault = c.IsDefault
}

// TransactionModel is the persistence model for ledger rows.
type TransactionModel struct {
	BaseModel
	Scope           ledger.TransactionScope `gorm:"type:varchar(10);not null;index"`
	CompanyID       *uuid.UUID              `gorm:"type:uuid;index"`
	ProjectID       *uuid.UUID              `gorm:"type:uuid;index"`
	Type            ledger.TransactionType  `gorm:"type:varchar(20);not null;index"`
	CategoryID      *uuid.UUID              `gorm:"type:uuid;index"`
	Date            time.Time               `gorm:"not null;index"`
	Description     string                  `gorm:"type:varchar(500)"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Currency        valueobject.Currency    `gorm:"type:varchar(3);not null"`
	ExchangeRate    decimal.Decimal         `gorm:"type:decimal(18,6);not null"`
	AmountInBase    decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	DocumentNo      string                  `gorm:"type:varchar(100)"`
	Notes           string                  `gorm:"type:text"`
	LinkedInvoiceID *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string { return "transactions" }

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		Scope:           m.Scope,
		CompanyID:       m.CompanyID,
		ProjectID:       m.ProjectID,
		Type:            m.Type,
		CategoryID:      m.CategoryID,
		Date:            m.Date,
		Description:     m.Description,
		Amount:          m.Amount,
		Currency:        m.Currency,
		ExchangeRate:    m.ExchangeRate,
		AmountInBase:    m.AmountInBase,
		DocumentNo:      m.DocumentNo,
		Notes:           m.Notes,
		LinkedInvoiceID: m.LinkedInvoiceID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Scope = t.Scope
	m.CompanyID = t.CompanyID
	m.ProjectID = t.ProjectID
	m.Type = t.Type
	m.CategoryID = t.CategoryID
	m.Date = t.Date
	m.Description = t.Description
	m.Amount = t.Amount
	m.Currency = t.Currency
	m.ExchangeRate = t.ExchangeRate
	m.AmountInBase = t.AmountInBase
	m.DocumentNo = t.DocumentNo
	m.Notes = t.Notes
	m.LinkedInvoiceID = t.LinkedInvoiceID
}

// PaymentAllocationModel is the persistence model for payment allocations.
// The (payment, invoice) pair is unique.
type PaymentAllocationModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_invoice,priority:1;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_invoice,priority:2;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string { return "payment_allocations" }

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() *ledger.PaymentAllocation {
	return &ledger.PaymentAllocation{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		InvoiceID: m.InvoiceID,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation.
func (m *PaymentAllocationModel) FromDomain(a *ledger.PaymentAllocation) {
	m.ID = a.ID
	m.PaymentID = a.PaymentID
	m.InvoiceID = a.InvoiceID
	m.Amount = a.Amount
	m.CreatedAt = a.CreatedAt
}

// TrashEntryModel is the persistence model for soft-deleted graphs.
type TrashEntryModel struct {
	ID         uuid.UUID              `gorm:"type:uuid;primary_key"`
	EntityType ledger.TrashEntityType `gorm:"type:varchar(20);not null;index"`
	Payload    []byte                 `gorm:"type:blob;not null"`
	DeletedAt  time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TrashEntryModel) TableName() string { return "trash_entries" }

// ToDomain converts the persistence model to a domain TrashEntry.
func (m *TrashEntryModel) ToDomain() *ledger.TrashEntry {
	return &ledger.TrashEntry{
		ID:         m.ID,
		EntityType: m.EntityType,
		Payload:    m.Payload,
		DeletedAt:  m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain TrashEntry.
func (m *TrashEntryModel) FromDomain(e *ledger.TrashEntry) {
	m.ID = e.ID
	m.EntityType = e.EntityType
	m.Payload = e.Payload
	m.DeletedAt = e.DeletedAt
}

// SchemaMigrationModel records one applied migration. The snapshot format
// embeds this log so imports can replay missing migrations exactly once.
type SchemaMigrationModel struct {
	ID        string    `gorm:"type:varchar(100);primary_key"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SchemaMigrationModel) TableName() string { return "schema_migrations" }

// All returns one instance of every ledger model, in migration order.
func All() []any {
	return []any{
		&CompanyModel{},
		&ProjectModel{},
		&CategoryModel{},
		&TransactionModel{},
		&PaymentAllocationModel{},
		&TrashEntryModel{},
		&SchemaMigrationModel{},
	}
}
