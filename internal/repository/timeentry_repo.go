package repository

import (
	"context"
	"time"

	"carebill/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeEntryListFilter narrows time-entry listings.
type TimeEntryListFilter struct {
	ClientID string
	Status   string
	Billed   *bool
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *model.TimeEntry) error
	Update(ctx context.Context, entry *model.TimeEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TimeEntry, error)
	List(ctx context.Context, filter TimeEntryListFilter) ([]model.TimeEntry, int64, error)
	ListUnbilledCommitted(ctx context.Context, clientID uuid.UUID, periodStart, periodEnd time.Time) ([]model.TimeEntry, error)
	MarkBilled(ctx context.Context, ids []uuid.UUID, invoiceID uuid.UUID) error
	UnmarkBilled(ctx context.Context, invoiceID uuid.UUID) error
}

type timeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *timeEntryRepository) Update(ctx context.Context, entry *model.TimeEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *timeEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := GetDB(ctx, r.db).Preload("Caregiver").First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) List(ctx context.Context, filter TimeEntryListFilter) ([]model.TimeEntry, int64, error) {
	var entries []model.TimeEntry
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyTimeEntryFilter(db.Model(&model.TimeEntry{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetch := applyTimeEntryFilter(db.Preload("Caregiver"), filter)
	if err := fetch.Order("service_date desc").Offset(offset).Limit(filter.Limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func applyTimeEntryFilter(query *gorm.DB, filter TimeEntryListFilter) *gorm.DB {
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Billed != nil {
		query = query.Where("billed = ?", *filter.Billed)
	}
	if filter.From != nil {
		query = query.Where("service_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("service_date <= ?", *filter.To)
	}
	return query
}

// ListUnbilledCommitted returns the entries that qualify for invoice
// generation: committed, not yet billed, service date within the period.
func (r *timeEntryRepository) ListUnbilledCommitted(ctx context.Context, clientID uuid.UUID, periodStart, periodEnd time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := GetDB(ctx, r.db).
		Preload("Caregiver").
		Where("client_id = ? AND status = ? AND billed = ? AND service_date >= ? AND service_date <= ?",
			clientID, model.EntryStatusCommitted, false, periodStart, periodEnd).
		Order("service_date asc, start_time asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *timeEntryRepository) MarkBilled(ctx context.Context, ids []uuid.UUID, invoiceID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.TimeEntry{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"billed": true, "invoice_id": invoiceID}).Error
}

// UnmarkBilled frees entries when their invoice is deleted so they can be
// billed again.
func (r *timeEntryRepository) UnmarkBilled(ctx context.Context, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.TimeEntry{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]interface{}{"billed": false, "invoice_id": nil}).Error
}
