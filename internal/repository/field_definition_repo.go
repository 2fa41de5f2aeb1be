package repository

import (
	"context"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FieldDefinitionRepository interface {
	List(ctx context.Context, status string, page, limit int) ([]model.FieldDefinition, int64, error)
	ListAll(ctx context.Context, status string) ([]model.FieldDefinition, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.FieldDefinition, error)
	FindByKey(ctx context.Context, key string) (*model.FieldDefinition, error)
	Create(ctx context.Context, def *model.FieldDefinition) error
	Update(ctx context.Context, def *model.FieldDefinition) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type fieldDefinitionRepository struct {
	db *gorm.DB
}

func NewFieldDefinitionRepository(db *gorm.DB) FieldDefinitionRepository {
	return &fieldDefinitionRepository{db: db}
}

func (r *fieldDefinitionRepository) List(ctx context.Context, status string, page, limit int) ([]model.FieldDefinition, int64, error) {
	var defs []model.FieldDefinition
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.FieldDefinition{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.FieldDefinition{})
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("field_key ASC").Offset(offset).Limit(limit).Find(&defs).Error; err != nil {
		return nil, 0, err
	}

	return defs, total, nil
}

func (r *fieldDefinitionRepository) ListAll(ctx context.Context, status string) ([]model.FieldDefinition, error) {
	var defs []model.FieldDefinition
	query := GetDB(ctx, r.db).Model(&model.FieldDefinition{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("field_key ASC").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *fieldDefinitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FieldDefinition, error) {
	var def model.FieldDefinition
	if err := GetDB(ctx, r.db).First(&def, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *fieldDefinitionRepository) FindByKey(ctx context.Context, key string) (*model.FieldDefinition, error) {
	var def model.FieldDefinition
	if err := GetDB(ctx, r.db).First(&def, "field_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *fieldDefinitionRepository) Create(ctx context.Context, def *model.FieldDefinition) error {
	return GetDB(ctx, r.db).Create(def).Error
}

func (r *fieldDefinitionRepository) Update(ctx context.Context, def *model.FieldDefinition) error {
	return GetDB(ctx, r.db).Save(def).Error
}

func (r *fieldDefinitionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := GetDB(ctx, r.db).Model(&model.FieldDefinition{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete is a hard delete. Item fields keep their field_definition_id value;
// the reference is advisory and goes dangling on purpose.
func (r *fieldDefinitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.FieldDefinition{}).Error
}
