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

// GormCategoryRepository implements ledger.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create inserts a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *ledger.Category) error {
	var model models.CategoryModel
	model.FromDomain(category)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("category not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter ledger.CategoryFilter) ([]ledger.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{})
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var categoryModels []models.CategoryModel
	if err := query.Order("name ASC").Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]ledger.Category, len(categoryModels))
	for i, model := range categoryModels {
		categories[i] = *model.ToDomain()
	}
	return categories, nil
}

// Update saves the full category row
func (r *GormCategoryRepository) Update(ctx context.Context, category *ledger.Category) error {
	var model models.CategoryModel
	model.FromDomain(category)
	result := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("category not found")
	}
	return nil
}

// Delete removes the category row
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("category not found")
	}
	return nil
}
