package ledger

import (
	"strings"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectOwnership distinguishes the firm's own developments from client jobs
type ProjectOwnership string

const (
	OwnershipOwn    ProjectOwnership = "own"
	OwnershipClient ProjectOwnership = "client"
)

// IsValid checks if the ownership value is valid
func (o ProjectOwnership) IsValid() bool {
	switch o {
	case OwnershipOwn, OwnershipClient:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the project status is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transactions
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// Project is a construction site tracked for profitability.
type Project struct {
	shared.BaseEntity
	Code            string
	Name            string
	Ownership       ProjectOwnership
	ClientCompanyID *uuid.UUID
	Status          ProjectStatus
	EstimatedBudget decimal.Decimal
	StartDate       *time.Time
	EndDate         *time.Time
}

// NewProject creates a project. A client company reference is required iff
// the project is client-owned.
func NewProject(code, name string, ownership ProjectOwnership, clientCompanyID *uuid.UUID) (*Project, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewValidationError("project code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("project name cannot be empty")
	}
	if !ownership.IsValid() {
		return nil, shared.NewValidationError("project ownership must be own or client")
	}
	if err := validateClientRef(ownership, clientCompanyID); err != nil {
		return nil, err
	}
	return &Project{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            strings.TrimSpace(code),
		Name:            strings.TrimSpace(name),
		Ownership:       ownership,
		ClientCompanyID: clientCompanyID,
		Status:          ProjectStatusPlanned,
		EstimatedBudget: decimal.Zero,
	}, nil
}

func validateClientRef(ownership ProjectOwnership, clientCompanyID *uuid.UUID) error {
	if ownership == OwnershipClient && clientCompanyID == nil {
		return shared.NewValidationError("client projects require a client company")
	}
	if ownership == OwnershipOwn && clientCompanyID != nil {
		return shared.NewValidationError("own projects cannot reference a client company")
	}
	return nil
}

// AcceptsTransactions reports whether new transactions may be booked against
// the project.
func (p *Project) AcceptsTransactions() bool {
	return !p.Status.IsTerminal()
}

// ProjectPatch carries a partial field-by-field update. Nil fields are left
// untouched. Ownership and client reference are patched together so the
// required-iff-client rule stays checkable.
type ProjectPatch struct {
	Code            *string
	Name            *string
	Ownership       *ProjectOwnership
	ClientCompanyID *uuid.UUID
	ClearClientRef  bool
	Status          *ProjectStatus
	EstimatedBudget *decimal.Decimal
	StartDate       *time.Time
	EndDate         *time.Time
}

// Apply merges the patch into the project, validating changed fields.
func (p *Project) Apply(patch ProjectPatch) error {
	if patch.Code != nil {
		if strings.TrimSpace(*patch.Code) == "" {
			return shared.NewValidationError("project code cannot be empty")
		}
		p.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return shared.NewValidationError("project name cannot be empty")
		}
		p.Name = strings.TrimSpace(*patch.Name)
	}

	ownership := p.Ownership
	if patch.Ownership != nil {
		if !patch.Ownership.IsValid() {
			return shared.NewValidationError("project ownership must be own or client")
		}
		ownership = *patch.Ownership
	}
	clientRef := p.ClientCompanyID
	if patch.ClearClientRef {
		clientRef = nil
	} else if patch.ClientCompanyID != nil {
		clientRef = patch.ClientCompanyID
	}
	if err := validateClientRef(ownership, clientRef); err != nil {
		return err
	}
	p.Ownership = ownership
	p.ClientCompanyID = clientRef

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return shared.NewValidationError("project status must be planned, active, completed or cancelled")
		}
		p.Status = *patch.Status
	}
	if patch.EstimatedBudget != nil {
		if patch.EstimatedBudget.IsNegative() {
			return shared.NewValidationError("estimated budget cannot be negative")
		}
		p.EstimatedBudget = *patch.EstimatedBudget
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	p.Touch()
	return nil
}
