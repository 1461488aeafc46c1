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

// GormCompanyRepository implements ledger.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create inserts a new company
func (r *GormCompanyRepository) Create(ctx context.Context, company *ledger.Company) error {
	var model models.CompanyModel
	model.FromDomain(company)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("company not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter ledger.CompanyFilter) ([]ledger.Company, error) {
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var companyModels []models.CompanyModel
	if err := query.Order("name ASC").Find(&companyModels).Error; err != nil {
		return nil, err
	}
	companies := make([]ledger.Company, len(companyModels))
	for i, model := range companyModels {
		companies[i] = *model.ToDomain()
	}
	return companies, nil
}

// Update saves the full company row
func (r *GormCompanyRepository) Update(ctx context.Context, company *ledger.Company) error {
	var model models.CompanyModel
	model.FromDomain(company)
	result := r.db.WithContext(ctx).Model(&models.CompanyModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("company not found")
	}
	return nil
}

// Delete removes the company row
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CompanyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("company not found")
	}
	return nil
}
