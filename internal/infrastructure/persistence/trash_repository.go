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

// GormTrashRepository implements ledger.TrashRepository using GORM
type GormTrashRepository struct {
	db *gorm.DB
}

// NewGormTrashRepository creates a new GormTrashRepository
func NewGormTrashRepository(db *gorm.DB) *GormTrashRepository {
	return &GormTrashRepository{db: db}
}

// Create inserts a new trash entry
func (r *GormTrashRepository) Create(ctx context.Context, entry *ledger.TrashEntry) error {
	var model models.TrashEntryModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a trash entry by its ID
func (r *GormTrashRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.TrashEntry, error) {
	var model models.TrashEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("trash entry not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every trash entry, newest deletion first
func (r *GormTrashRepository) FindAll(ctx context.Context) ([]ledger.TrashEntry, error) {
	var entryModels []models.TrashEntryModel
	if err := r.db.WithContext(ctx).Order("deleted_at DESC").Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.TrashEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Delete removes one trash entry
func (r *GormTrashRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TrashEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("trash entry not found")
	}
	return nil
}

// DeleteAll empties the trash
func (r *GormTrashRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.TrashEntryModel{}).Error
}
