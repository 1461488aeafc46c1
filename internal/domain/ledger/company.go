// Package ledger holds the bookkeeping core: counterparties, projects,
// categories, the transaction record set, invoice-payment allocations and the
// balance calculators derived from them.
package ledger

import (
	"strings"

	"github.com/buildledger/backend/internal/domain/shared"
)

// CompanyKind distinguishes natural persons from organizations
type CompanyKind string

const (
	CompanyKindPerson       CompanyKind = "person"
	CompanyKindOrganization CompanyKind = "organization"
)

// IsValid checks if the company kind is valid
func (k CompanyKind) IsValid() bool {
	switch k {
	case CompanyKindPerson, CompanyKindOrganization:
		return true
	}
	return false
}

// CompanyRole describes the counterparty's relationship to the firm
type CompanyRole string

const (
	CompanyRoleCustomer      CompanyRole = "customer"
	CompanyRoleSupplier      CompanyRole = "supplier"
	CompanyRoleSubcontractor CompanyRole = "subcontractor"
	CompanyRoleInvestor      CompanyRole = "investor"
)

// IsValid checks if the company role is valid
func (r CompanyRole) IsValid() bool {
	switch r {
	case CompanyRoleCustomer, CompanyRoleSupplier, CompanyRoleSubcontractor, CompanyRoleInvestor:
		return true
	}
	return false
}

// Company is a counterparty the firm keeps a running (cari) account with.
type Company struct {
	shared.BaseEntity
	Kind      CompanyKind
	Role      CompanyRole
	Name      string
	TaxNumber string
	Phone     string
	Email     string
	Address   string
	Active    bool
}

// NewCompany creates a company after re-asserting the cross-entity invariants.
// Field-level coercion happens at the application boundary.
func NewCompany(kind CompanyKind, role CompanyRole, name string) (*Company, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("company kind must be person or organization")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("company role must be customer, supplier, subcontractor or investor")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("company name cannot be empty")
	}
	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Role:       role,
		Name:       strings.TrimSpace(name),
		Active:     true,
	}, nil
}

// CompanyPatch carries a partial field-by-field update. Nil fields are left
// untouched.
type CompanyPatch struct {
	Kind      *CompanyKind
	Role      *CompanyRole
	Name      *string
	TaxNumber *string
	Phone     *string
	Email     *string
	Address   *string
	Active    *bool
}

// Apply merges the patch into the company, validating changed fields.
func (c *Company) Apply(p CompanyPatch) error {
	if p.Kind != nil {
		if !p.Kind.IsValid() {
			return shared.NewValidationError("company kind must be person or organization")
		}
		c.Kind = *p.Kind
	}
	if p.Role != nil {
		if !p.Role.IsValid() {
			return shared.NewValidationError("company role must be customer, supplier, subcontractor or investor")
		}
		c.Role = *p.Role
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return shared.NewValidationError("company name cannot be empty")
		}
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.TaxNumber != nil {
		c.TaxNumber = *p.TaxNumber
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	c.Touch()
	return nil
}
