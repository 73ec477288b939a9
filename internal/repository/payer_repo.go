package repository

import (
	"context"

	"carebill/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayerRepository interface {
	Create(ctx context.Context, payer *model.Payer) error
	Update(ctx context.Context, payer *model.Payer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payer, error)
	List(ctx context.Context, payerType, search string, page, limit int) ([]model.Payer, int64, error)
}

type payerRepository struct {
	db *gorm.DB
}

func NewPayerRepository(db *gorm.DB) PayerRepository {
	return &payerRepository{db: db}
}

func (r *payerRepository) Create(ctx context.Context, payer *model.Payer) error {
	return GetDB(ctx, r.db).Create(payer).Error
}

func (r *payerRepository) Update(ctx context.Context, payer *model.Payer) error {
	return GetDB(ctx, r.db).Save(payer).Error
}

func (r *payerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Payer{}).Error
}

func (r *payerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payer, error) {
	var payer model.Payer
	if err := GetDB(ctx, r.db).First(&payer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payer, nil
}

func (r *payerRepository) List(ctx context.Context, payerType, search string, page, limit int) ([]model.Payer, int64, error) {
	var payers []model.Payer
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Payer{})
	if payerType != "" {
		query = query.Where("type = ?", payerType)
	}
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Model(&model.Payer{})
	if payerType != "" {
		fetch = fetch.Where("type = ?", payerType)
	}
	if search != "" {
		fetch = fetch.Where("name LIKE ?", "%"+search+"%")
	}
	if err := fetch.Order("name asc").Offset(offset).Limit(limit).Find(&payers).Error; err != nil {
		return nil, 0, err
	}

	return payers, total, nil
}
