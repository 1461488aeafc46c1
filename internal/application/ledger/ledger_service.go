// Package ledger holds the application services of the bookkeeping core:
// entity lifecycle with cascading deletes into the trash, the allocation
// engine, cached reports and backups.
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

// LedgerService handles entity lifecycle: companies, projects, categories,
// transactions and the trash. All writes run inside the single transaction
// boundary; deletes cascade and capture the removed graph as one trash entry.
type LedgerService struct {
	txm     *persistence.TxManager
	store   *persistence.Store
	summary *cache.SummaryCache
	logger  *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txm *persistence.TxManager, store *persistence.Store, summary *cache.SummaryCache, logger *zap.Logger) *LedgerService {
	return &LedgerService{txm: txm, store: store, summary: summary, logger: logger}
}

func (s *LedgerService) invalidateCompany(id uuid.UUID) {
	s.summary.InvalidatePrefix("company:" + id.String())
	s.summary.InvalidatePrefix("dashboard")
	s.summary.InvalidatePrefix("totals")
}

func (s *LedgerService) invalidateProject(id uuid.UUID) {
	s.summary.InvalidatePrefix("project:" + id.String())
	s.summary.InvalidatePrefix("dashboard")
	s.summary.InvalidatePrefix("totals")
}

func (s *LedgerService) invalidateTransactionScopes(tx *domain.Transaction) {
	if tx.CompanyID != nil {
		s.summary.InvalidatePrefix("company:" + tx.CompanyID.String())
	}
	if tx.ProjectID != nil {
		s.summary.InvalidatePrefix("project:" + tx.ProjectID.String())
	}
	s.summary.InvalidatePrefix("dashboard")
	s.summary.InvalidatePrefix("totals")
}

// =============================================================================
// Companies
// =============================================================================

// CreateCompany creates a counterparty
func (s *LedgerService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	company, err := domain.NewCompany(domain.CompanyKind(req.Kind), domain.CompanyRole(req.Role), req.Name)
	if err != nil {
		return nil, err
	}
	company.TaxNumber = req.TaxNumber
	company.Phone = req.Phone
	company.Email = req.Email
	company.Address = req.Address

	err = s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		return store.Companies.Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("company created", zap.String("id", company.ID.String()), zap.String("name", company.Name))
	return toCompanyResponse(company), nil
}

// GetCompany returns one counterparty
func (s *LedgerService) GetCompany(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.store.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// ListCompanies returns counterparties matching the filter
func (s *LedgerService) ListCompanies(ctx context.Context, filter domain.CompanyFilter) ([]CompanyResponse, error) {
	companies, err := s.store.Companies.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = *toCompanyResponse(&companies[i])
	}
	return responses, nil
}

// UpdateCompany applies a partial update
func (s *LedgerService) UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	patch := domain.CompanyPatch{
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Active:    req.Active,
	}
	if req.Kind != nil {
		kind := domain.CompanyKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.Role != nil {
		role := domain.CompanyRole(*req.Role)
		patch.Role = &role
	}

	var company *domain.Company
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		var err error
		company, err = store.Companies.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := company.Apply(patch); err != nil {
			return err
		}
		return store.Companies.Update(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCompany(id)
	return toCompanyResponse(company), nil
}

// DeleteCompany removes a counterparty together with its client projects,
// their transactions, the company's own account rows and every touched
// allocation. The whole graph lands in one trash entry.
func (s *LedgerService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		company, err := store.Companies.FindByID(ctx, id)
		if err != nil {
			return err
		}
		graph := domain.DeletedGraph{Company: company}

		projects, err := store.Projects.FindByClientCompany(ctx, id)
		if err != nil {
			return err
		}
		graph.Projects = projects

		seen := make(map[uuid.UUID]struct{})
		for i := range projects {
			if err := collectProjectTransactions(ctx, store, projects[i].ID, &graph, seen); err != nil {
				return err
			}
		}

		cariTxs, err := store.Transactions.FindAll(ctx, domain.TransactionFilter{CompanyID: &id})
		if err != nil {
			return err
		}
		for i := range cariTxs {
			if err := collectTransaction(ctx, store, &cariTxs[i], &graph, seen); err != nil {
				return err
			}
		}

		entry, err := domain.NewTrashEntry(domain.TrashCompany, graph)
		if err != nil {
			return err
		}
		if err := store.Trash.Create(ctx, entry); err != nil {
			return err
		}

		for i := range graph.Transactions {
			tx := &graph.Transactions[i]
			if err := store.Allocations.DeleteByTransaction(ctx, tx.ID); err != nil {
				return err
			}
			if err := store.Transactions.Delete(ctx, tx.ID); err != nil {
				return err
			}
		}
		for i := range projects {
			if err := store.Projects.Delete(ctx, projects[i].ID); err != nil {
				return err
			}
		}
		return store.Companies.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.summary.Clear()
	s.logger.Info("company deleted to trash", zap.String("id", id.String()))
	return nil
}

// collectProjectTransactions gathers a project's transactions and their
// allocations into the graph without deleting anything yet.
func collectProjectTransactions(ctx context.Context, store *persistence.Store, projectID uuid.UUID, graph *domain.DeletedGraph, seen map[uuid.UUID]struct{}) error {
	txs, err := store.Transactions.FindAll(ctx, domain.TransactionFilter{ProjectID: &projectID})
	if err != nil {
		return err
	}
	for i := range txs {
		if err := collectTransaction(ctx, store, &txs[i], graph, seen); err != nil {
			return err
		}
	}
	return nil
}

// collectTransaction adds one transaction and its allocation rows to the
// graph, deduplicating rows shared between already-collected transactions.
func collectTransaction(ctx context.Context, store *persistence.Store, tx *domain.Transaction, graph *domain.DeletedGraph, seen map[uuid.UUID]struct{}) error {
	if _, ok := seen[tx.ID]; ok {
		return nil
	}
	seen[tx.ID] = struct{}{}
	graph.Transactions = append(graph.Transactions, *tx)

	allocations, err := store.Allocations.FindByTransaction(ctx, tx.ID)
	if err != nil {
		return err
	}
	for _, allocation := range allocations {
		key := allocation.ID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		graph.Allocations = append(graph.Allocations, allocation)
	}
	return nil
}

// =============================================================================
// Projects
// =============================================================================

// CreateProject creates a project. Client-owned projects must reference an
// existing, active client company; project codes are unique.
func (s *LedgerService) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	project, err := domain.NewProject(req.Code, req.Name, domain.ProjectOwnership(req.Ownership), req.ClientCompanyID)
	if err != nil {
		return nil, err
	}
	if req.EstimatedBudget != nil {
		if req.EstimatedBudget.IsNegative() {
			return nil, shared.NewValidationError("estimated budget cannot be negative")
		}
		project.EstimatedBudget = *req.EstimatedBudget
	}
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate

	err = s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		if _, err := store.Projects.FindByCode(ctx, project.Code); err == nil {
			return shared.NewConstraintViolation("a project with this code already exists")
		} else if !shared.IsNotFound(err) {
			return err
		}
		if project.ClientCompanyID != nil {
			company, err := store.Companies.FindByID(ctx, *project.ClientCompanyID)
			if err != nil {
				return err
			}
			if !company.Active {
				return shared.NewConstraintViolation("client company is inactive")
			}
		}
		return store.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", zap.String("id", project.ID.String()), zap.String("code", project.Code))
	return toProjectResponse(project), nil
}

// GetProject returns one project
func (s *LedgerService) GetProject(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.store.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ListProjects returns projects matching the filter
func (s *LedgerService) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]ProjectResponse, error) {
	projects, err := s.store.Projects.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *toProjectResponse(&projects[i])
	}
	return responses, nil
}

// UpdateProject applies a partial update
func (s *LedgerService) UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	patch := domain.ProjectPatch{
		Code:            req.Code,
		Name:            req.Name,
		ClientCompanyID: req.ClientCompanyID,
		ClearClientRef:  req.ClearClientRef,
		EstimatedBudget: req.EstimatedBudget,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}
	if req.Ownership != nil {
		ownership := domain.ProjectOwnership(*req.Ownership)
		patch.Ownership = &ownership
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		patch.Status = &status
	}

	var project *domain.Project
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		var err error
		project, err = store.Projects.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Code != nil && *req.Code != project.Code {
			if _, err := store.Projects.FindByCode(ctx, *req.Code); err == nil {
				return shared.NewConstraintViolation("a project with this code already exists")
			} else if !shared.IsNotFound(err) {
				return err
			}
		}
		if err := project.Apply(patch); err != nil {
			return err
		}
		if req.ClientCompanyID != nil {
			if _, err := store.Companies.FindByID(ctx, *req.ClientCompanyID); err != nil {
				return err
			}
		}
		return store.Projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateProject(id)
	return toProjectResponse(project), nil
}

// DeleteProject removes a project, its transactions and their allocations
// into one trash entry.
func (s *LedgerService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		project, err := store.Projects.FindByID(ctx, id)
		if err != nil {
			return err
		}
		graph := domain.DeletedGraph{Project: project}
		seen := make(map[uuid.UUID]struct{})
		if err := collectProjectTransactions(ctx, store, id, &graph, seen); err != nil {
			return err
		}

		entry, err := domain.NewTrashEntry(domain.TrashProject, graph)
		if err != nil {
			return err
		}
		if err := store.Trash.Create(ctx, entry); err != nil {
			return err
		}

		for i := range graph.Transactions {
			if err := store.Allocations.DeleteByTransaction(ctx, graph.Transactions[i].ID); err != nil {
				return err
			}
		}
		if err := store.Transactions.DeleteByProject(ctx, id); err != nil {
			return err
		}
		return store.Projects.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.summary.Clear()
	s.logger.Info("project deleted to trash", zap.String("id", id.String()))
	return nil
}

// =============================================================================
// Categories
// =============================================================================

// CreateCategory creates a category
func (s *LedgerService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	category, err := domain.NewCategory(req.Name, domain.CategoryType(req.Type), req.Color)
	if err != nil {
		return nil, err
	}
	err = s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		return store.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetCategory returns one category
func (s *LedgerService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.store.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// ListCategories returns categories matching the filter
func (s *LedgerService) ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]CategoryResponse, error) {
	categories, err := s.store.Categories.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *toCategoryResponse(&categories[i])
	}
	return responses, nil
}

// UpdateCategory applies a partial update. Default categories are immutable.
func (s *LedgerService) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var category *domain.Category
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		var err error
		category, err = store.Categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := category.Apply(domain.CategoryPatch{Name: req.Name, Color: req.Color}); err != nil {
			return err
		}
		return store.Categories.Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// DeleteCategory removes a custom category, detaching it from any
// transactions that used it. Default categories cannot be deleted.
func (s *LedgerService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		category, err := store.Categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if category.IsDefault {
			return shared.NewConstraintViolation("default categories cannot be deleted")
		}
		txs, err := store.Transactions.FindAll(ctx, domain.TransactionFilter{CategoryID: &id})
		if err != nil {
			return err
		}
		for i := range txs {
			txs[i].CategoryID = nil
			if err := store.Transactions.Update(ctx, &txs[i]); err != nil {
				return err
			}
		}
		return store.Categories.Delete(ctx, id)
	})
}

// =============================================================================
// Transactions
// =============================================================================

// CreateTransaction books a ledger row. The referenced company must be
// active, the referenced project must still accept transactions and the
// category's group must match the transaction type.
func (s *LedgerService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	rate := decimal.NewFromInt(1)
	if req.ExchangeRate != nil {
		rate = *req.ExchangeRate
	}
	tx, err := domain.NewTransaction(
		domain.TransactionScope(req.Scope),
		req.CompanyID, req.ProjectID,
		domain.TransactionType(req.Type),
		req.Date, req.Amount,
		valueobject.Currency(req.Currency), rate,
	)
	if err != nil {
		return nil, err
	}
	tx.Description = req.Description
	tx.DocumentNo = req.DocumentNo
	tx.Notes = req.Notes

	err = s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		if err := s.checkScopeTargets(ctx, store, tx); err != nil {
			return err
		}
		if req.CategoryID != nil {
			category, err := store.Categories.FindByID(ctx, *req.CategoryID)
			if err != nil {
				return err
			}
			if err := tx.SetCategory(category); err != nil {
				return err
			}
		}
		return store.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateTransactionScopes(tx)
	s.logger.Info("transaction booked",
		zap.String("id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.String("amount_in_base", tx.AmountInBase.String()))
	return toTransactionResponse(tx), nil
}

// checkScopeTargets verifies the row's scope references point at entities
// that may still take bookings.
func (s *LedgerService) checkScopeTargets(ctx context.Context, store *persistence.Store, tx *domain.Transaction) error {
	if tx.CompanyID != nil {
		company, err := store.Companies.FindByID(ctx, *tx.CompanyID)
		if err != nil {
			return err
		}
		if !company.Active {
			return shared.NewConstraintViolation("transactions cannot target an inactive company")
		}
	}
	if tx.ProjectID != nil {
		project, err := store.Projects.FindByID(ctx, *tx.ProjectID)
		if err != nil {
			return err
		}
		if !project.AcceptsTransactions() {
			return shared.NewConstraintViolation("transactions cannot target a completed or cancelled project")
		}
	}
	return nil
}

// GetTransaction returns one ledger row
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.store.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

// ListTransactions returns ledger rows matching the filter
func (s *LedgerService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]TransactionResponse, error) {
	txs, err := s.store.Transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = *toTransactionResponse(&txs[i])
	}
	return responses, nil
}

// UpdateTransaction applies a partial update. Shrinking a transaction below
// its already-allocated total is rejected.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	patch := domain.TransactionPatch{
		Date:         req.Date,
		Description:  req.Description,
		Amount:       req.Amount,
		ExchangeRate: req.ExchangeRate,
		DocumentNo:   req.DocumentNo,
		Notes:        req.Notes,
	}
	if req.Currency != nil {
		currency := valueobject.Currency(*req.Currency)
		patch.Currency = &currency
	}

	var tx *domain.Transaction
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		var err error
		tx, err = store.Transactions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkScopeTargets(ctx, store, tx); err != nil {
			return err
		}
		if err := tx.Apply(patch); err != nil {
			return err
		}
		switch {
		case req.ClearCategory:
			tx.CategoryID = nil
		case req.CategoryID != nil:
			category, err := store.Categories.FindByID(ctx, *req.CategoryID)
			if err != nil {
				return err
			}
			if err := tx.SetCategory(category); err != nil {
				return err
			}
		}

		allocated, err := store.Allocations.SumByInvoice(ctx, tx.ID)
		if err != nil {
			return err
		}
		if tx.Type.IsPayment() {
			sums, err := store.Allocations.SumsByPayment(ctx, []uuid.UUID{tx.ID})
			if err != nil {
				return err
			}
			allocated = sums[tx.ID]
		}
		if allocated.GreaterThan(tx.AmountInBase) {
			return shared.NewConstraintViolation("transaction amount cannot drop below its allocated total")
		}
		return store.Transactions.Update(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateTransactionScopes(tx)
	return toTransactionResponse(tx), nil
}

// DeleteTransaction removes a ledger row and every allocation touching it
// into one trash entry.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	var deleted *domain.Transaction
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		tx, err := store.Transactions.FindByID(ctx, id)
		if err != nil {
			return err
		}
		deleted = tx
		allocations, err := store.Allocations.FindByTransaction(ctx, id)
		if err != nil {
			return err
		}
		entry, err := domain.NewTrashEntry(domain.TrashTransaction, domain.DeletedGraph{
			Transaction: tx,
			Allocations: allocations,
		})
		if err != nil {
			return err
		}
		if err := store.Trash.Create(ctx, entry); err != nil {
			return err
		}
		if err := store.Allocations.DeleteByTransaction(ctx, id); err != nil {
			return err
		}
		return store.Transactions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateTransactionScopes(deleted)
	return nil
}

// =============================================================================
// Trash
// =============================================================================

// ListTrash returns every soft-deleted graph, newest first
func (s *LedgerService) ListTrash(ctx context.Context) ([]TrashEntryResponse, error) {
	entries, err := s.store.Trash.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]TrashEntryResponse, 0, len(entries))
	for i := range entries {
		graph, err := entries[i].Graph()
		if err != nil {
			return nil, err
		}
		responses = append(responses, TrashEntryResponse{
			ID:         entries[i].ID,
			EntityType: string(entries[i].EntityType),
			Label:      trashLabel(graph),
			DeletedAt:  entries[i].DeletedAt,
		})
	}
	return responses, nil
}

func trashLabel(graph domain.DeletedGraph) string {
	switch {
	case graph.Company != nil:
		return graph.Company.Name
	case graph.Project != nil:
		return graph.Project.Name
	case graph.Transaction != nil:
		if graph.Transaction.Description != "" {
			return graph.Transaction.Description
		}
		return string(graph.Transaction.Type) + " " + graph.Transaction.AmountInBase.StringFixed(2)
	}
	return ""
}

// RestoreTrash re-inserts a deleted graph and removes the entry. Allocations
// whose counterpart no longer exists are dropped instead of recreating
// dangling links.
func (s *LedgerService) RestoreTrash(ctx context.Context, id uuid.UUID) error {
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		entry, err := store.Trash.FindByID(ctx, id)
		if err != nil {
			return err
		}
		graph, err := entry.Graph()
		if err != nil {
			return err
		}

		if graph.Company != nil {
			if err := store.Companies.Create(ctx, graph.Company); err != nil {
				return err
			}
		}
		for i := range graph.Projects {
			if err := store.Projects.Create(ctx, &graph.Projects[i]); err != nil {
				return err
			}
		}
		if graph.Project != nil {
			if err := store.Projects.Create(ctx, graph.Project); err != nil {
				return err
			}
		}
		if graph.Transaction != nil {
			if err := s.restoreTransaction(ctx, store, graph.Transaction); err != nil {
				return err
			}
		}
		for i := range graph.Transactions {
			if err := s.restoreTransaction(ctx, store, &graph.Transactions[i]); err != nil {
				return err
			}
		}
		for i := range graph.Allocations {
			allocation := graph.Allocations[i]
			if _, err := store.Transactions.FindByID(ctx, allocation.PaymentID); shared.IsNotFound(err) {
				continue
			} else if err != nil {
				return err
			}
			if _, err := store.Transactions.FindByID(ctx, allocation.InvoiceID); shared.IsNotFound(err) {
				continue
			} else if err != nil {
				return err
			}
			if err := restoreAllocation(ctx, store, allocation); err != nil {
				return err
			}
		}
		return store.Trash.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.summary.Clear()
	s.logger.Info("trash entry restored", zap.String("id", id.String()))
	return nil
}

// restoreTransaction re-inserts one row, verifying its scope targets still
// exist so a restore cannot create orphans.
func (s *LedgerService) restoreTransaction(ctx context.Context, store *persistence.Store, tx *domain.Transaction) error {
	if tx.CompanyID != nil {
		if _, err := store.Companies.FindByID(ctx, *tx.CompanyID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewConstraintViolation("cannot restore: the transaction's company no longer exists")
			}
			return err
		}
	}
	if tx.ProjectID != nil {
		if _, err := store.Projects.FindByID(ctx, *tx.ProjectID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewConstraintViolation("cannot restore: the transaction's project no longer exists")
			}
			return err
		}
	}
	return store.Transactions.Create(ctx, tx)
}

func restoreAllocation(ctx context.Context, store *persistence.Store, allocation domain.PaymentAllocation) error {
	existing, err := store.Allocations.FindByPayment(ctx, allocation.PaymentID)
	if err != nil {
		return err
	}
	for _, row := range existing {
		if row.InvoiceID == allocation.InvoiceID {
			return nil
		}
	}
	return store.Allocations.ReplaceForPayment(ctx, allocation.PaymentID, append(existing, allocation))
}

// PurgeTrash permanently drops one trash entry
func (s *LedgerService) PurgeTrash(ctx context.Context, id uuid.UUID) error {
	return s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		return store.Trash.Delete(ctx, id)
	})
}

// PurgeAllTrash empties the trash permanently
func (s *LedgerService) PurgeAllTrash(ctx context.Context) error {
	return s.txm.WithTransaction(ctx, func(ctx context.Context, store *persistence.Store) error {
		return store.Trash.DeleteAll(ctx)
	})
}
