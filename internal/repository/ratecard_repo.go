package repository

import (
	"context"
	"time"

	"carebill/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RateCardRepository interface {
	Create(ctx context.Context, rate *model.RateCard) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RateCard, error)
	List(ctx context.Context, payerID, serviceType string, page, limit int) ([]model.RateCard, int64, error)
	FindEffective(ctx context.Context, payerID *uuid.UUID, serviceType string, asOf time.Time) (*model.RateCard, error)
	CountDuplicate(ctx context.Context, payerID *uuid.UUID, serviceType string, effectiveFrom time.Time) (int64, error)
}

type rateCardRepository struct {
	db *gorm.DB
}

func NewRateCardRepository(db *gorm.DB) RateCardRepository {
	return &rateCardRepository{db: db}
}

func (r *rateCardRepository) Create(ctx context.Context, rate *model.RateCard) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *rateCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RateCard{}).Error
}

func (r *rateCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RateCard, error) {
	var rate model.RateCard
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateCardRepository) List(ctx context.Context, payerID, serviceType string, page, limit int) ([]model.RateCard, int64, error) {
	var rates []model.RateCard
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RateCard{})
	if payerID != "" {
		query = query.Where("payer_id = ?", payerID)
	}
	if serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Payer")
	if payerID != "" {
		fetch = fetch.Where("payer_id = ?", payerID)
	}
	if serviceType != "" {
		fetch = fetch.Where("service_type = ?", serviceType)
	}
	if err := fetch.Order("effective_from desc").Offset(offset).Limit(limit).Find(&rates).Error; err != nil {
		return nil, 0, err
	}

	return rates, total, nil
}

// FindEffective returns the most recently effective entry for the payer and
// service type on or before asOf. A nil payerID selects the private-pay
// default entries.
func (r *rateCardRepository) FindEffective(ctx context.Context, payerID *uuid.UUID, serviceType string, asOf time.Time) (*model.RateCard, error) {
	var rate model.RateCard
	query := GetDB(ctx, r.db).
		Where("service_type = ? AND effective_from <= ?", serviceType, asOf)
	if payerID != nil {
		query = query.Where("payer_id = ?", *payerID)
	} else {
		query = query.Where("payer_id IS NULL")
	}
	if err := query.Order("effective_from DESC").First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateCardRepository) CountDuplicate(ctx context.Context, payerID *uuid.UUID, serviceType string, effectiveFrom time.Time) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.RateCard{}).
		Where("service_type = ? AND effective_from = ?", serviceType, effectiveFrom)
	if payerID != nil {
		query = query.Where("payer_id = ?", *payerID)
	} else {
		query = query.Where("payer_id IS NULL")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
