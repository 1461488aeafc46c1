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

// GormProjectRepository implements ledger.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *ledger.Project) error {
	var model models.ProjectModel
	model.FromDomain(project)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("project not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a project by its unique code
func (r *GormProjectRepository) FindByCode(ctx context.Context, code string) (*ledger.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("project not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns projects matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, filter ledger.ProjectFilter) ([]ledger.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if filter.Ownership != nil {
		query = query.Where("ownership = ?", *filter.Ownership)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientCompanyID != nil {
		query = query.Where("client_company_id = ?", *filter.ClientCompanyID)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ? OR code LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var projectModels []models.ProjectModel
	if err := query.Order("code ASC").Find(&projectModels).Error; err != nil {
		return nil, err
	}
	projects := make([]ledger.Project, len(projectModels))
	for i, model := range projectModels {
		projects[i] = *model.ToDomain()
	}
	return projects, nil
}

// FindByClientCompany returns all projects tied to a client company
func (r *GormProjectRepository) FindByClientCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Project, error) {
	var projectModels []models.ProjectModel
	if err := r.db.WithContext(ctx).
		Where("client_company_id = ?", companyID).
		Order("code ASC").
		Find(&projectModels).Error; err != nil {
		return nil, err
	}
	projects := make([]ledger.Project, len(projectModels))
	for i, model := range projectModels {
		projects[i] = *model.ToDomain()
	}
	return projects, nil
}

// Update saves the full project row
func (r *GormProjectRepository) Update(ctx context.Context, project *ledger.Project) error {
	var model models.ProjectModel
	model.FromDomain(project)
	result := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("project not found")
	}
	return nil
}

// Delete removes the project row
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("project not found")
	}
	return nil
}
