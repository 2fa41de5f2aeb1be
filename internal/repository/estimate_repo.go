package repository

import (
	"context"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EstimateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	List(ctx context.Context, status, search string, page, limit int) ([]model.Estimate, int64, error)
	UpdateAssignment(ctx context.Context, id uuid.UUID, companyID *uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error
	UpdateTotalPrice(ctx context.Context, id uuid.UUID, total *decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type estimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) EstimateRepository {
	return &estimateRepository{db: db}
}

func (r *estimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var est model.Estimate
	if err := GetDB(ctx, r.db).First(&est, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &est, nil
}

func (r *estimateRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var est model.Estimate
	err := GetDB(ctx, r.db).
		Preload("Company").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("estimate_items.sort_order ASC")
		}).
		Preload("Items.Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_fields.created_at ASC")
		}).
		First(&est, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &est, nil
}

func (r *estimateRepository) List(ctx context.Context, status, search string, page, limit int) ([]model.Estimate, int64, error) {
	var estimates []model.Estimate
	var total int64

	db := GetDB(ctx, r.db)

	applyFilters := func(q *gorm.DB) *gorm.DB {
		if status != "" {
			q = q.Where("extraction_status = ?", status)
		}
		if search != "" {
			q = q.Where("file_name ILIKE ? OR ocr_customer_name ILIKE ?", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := applyFilters(db.Model(&model.Estimate{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := applyFilters(db.Model(&model.Estimate{})).
		Preload("Company").
		Preload("Uploader").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&estimates).Error
	if err != nil {
		return nil, 0, err
	}

	return estimates, total, nil
}

// UpdateAssignment only touches the bound-customer column; the wizard is not
// allowed to mutate anything else on an estimate.
func (r *estimateRepository) UpdateAssignment(ctx context.Context, id uuid.UUID, companyID *uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Estimate{}).
		Where("id = ?", id).
		Update("company_id", companyID).Error
}

func (r *estimateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	return GetDB(ctx, r.db).Model(&model.Estimate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"extraction_status":  status,
			"extraction_err_msg": errMsg,
		}).Error
}

func (r *estimateRepository) UpdateTotalPrice(ctx context.Context, id uuid.UUID, total *decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Estimate{}).
		Where("id = ?", id).
		Update("total_price", total).Error
}

func (r *estimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Items and their fields go with it via the FK cascade.
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Estimate{}).Error
}
