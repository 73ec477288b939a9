package repository

import (
	"context"

	"carebill/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientListFilter narrows client listings.
type ClientListFilter struct {
	PayerID    string
	CareStatus string
	Search     string // partial match on first/last name
	Page       int
	Limit      int
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, filter ClientListFilter) ([]model.Client, int64, error)
	ListBillable(ctx context.Context, payerID *uuid.UUID) ([]model.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Preload("Payer").First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, filter ClientListFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyClientFilter(db.Model(&model.Client{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetch := applyClientFilter(db.Preload("Payer"), filter)
	if err := fetch.Order("last_name asc, first_name asc").Offset(offset).Limit(filter.Limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func applyClientFilter(query *gorm.DB, filter ClientListFilter) *gorm.DB {
	if filter.PayerID != "" {
		query = query.Where("payer_id = ?", filter.PayerID)
	}
	if filter.CareStatus != "" {
		query = query.Where("care_status = ?", filter.CareStatus)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern)
	}
	return query
}

// ListBillable returns active clients, optionally restricted to one payer,
// for batch invoice generation.
func (r *clientRepository) ListBillable(ctx context.Context, payerID *uuid.UUID) ([]model.Client, error) {
	var clients []model.Client
	query := GetDB(ctx, r.db).Where("care_status = ?", model.CareStatusActive)
	if payerID != nil {
		query = query.Where("payer_id = ?", *payerID)
	}
	if err := query.Order("last_name asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
