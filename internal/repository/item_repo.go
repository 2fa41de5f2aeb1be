package repository

import (
	"context"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error)
	Update(ctx context.Context, item *model.EstimateItem) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateField(ctx context.Context, field *model.ItemField) error
	UpdateField(ctx context.Context, field *model.ItemField) error
	DeleteField(ctx context.Context, id uuid.UUID) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error) {
	var item model.EstimateItem
	if err := GetDB(ctx, r.db).Preload("Fields").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.EstimateItem) error {
	return GetDB(ctx, r.db).Omit("Fields").Save(item).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.EstimateItem{}).Error
}

func (r *itemRepository) CreateField(ctx context.Context, field *model.ItemField) error {
	return GetDB(ctx, r.db).Create(field).Error
}

func (r *itemRepository) UpdateField(ctx context.Context, field *model.ItemField) error {
	return GetDB(ctx, r.db).Save(field).Error
}

func (r *itemRepository) DeleteField(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ItemField{}).Error
}
