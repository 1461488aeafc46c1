package persistence

import (
	"context"
	"errors"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(tx)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("transaction not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads a batch of transactions. Missing ids are simply absent from
// the result; callers decide whether that is an error.
func (r *GormTransactionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&txModels).Error; err != nil {
		return nil, err
	}
	txs := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		txs[i] = *model.ToDomain()
	}
	return txs, nil
}

// FindAll returns transactions matching the filter, oldest first with
// insertion order as the tiebreak so ledgers read chronologically.
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	if filter.Scope != nil {
		query = query.Where("scope = ?", *filter.Scope)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	var txModels []models.TransactionModel
	if err := query.Order("date ASC, created_at ASC").Find(&txModels).Error; err != nil {
		return nil, err
	}
	txs := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		txs[i] = *model.ToDomain()
	}
	return txs, nil
}

// Update saves the full transaction row
func (r *GormTransactionRepository) Update(ctx context.Context, tx *ledger.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(tx)
	result := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("transaction not found")
	}
	return nil
}

// Delete removes the transaction row
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("transaction not found")
	}
	return nil
}

// DeleteByProject removes every transaction scoped to a project. Used by the
// project cascade after the rows were captured into a trash entry.
func (r *GormTransactionRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.TransactionModel{}, "project_id = ?", projectID).Error
}
