package repository

import (
	"context"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByName(ctx context.Context, name string) (*model.Company, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByName matches by exact name, case-insensitively. Used to resolve the
// extracted-customer guess against the directory.
func (r *companyRepository) FindByName(ctx context.Context, name string) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	db := GetDB(ctx, r.db)

	applyFilters := func(q *gorm.DB) *gorm.DB {
		if search != "" {
			q = q.Where("name ILIKE ? OR contact_person ILIKE ? OR email ILIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := applyFilters(db.Model(&model.Company{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := applyFilters(db.Model(&model.Company{})).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}
