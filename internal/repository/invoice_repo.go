package repository

import (
	"context"
	"time"

	"carebill/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows invoice listings.
type InvoiceListFilter struct {
	ClientID  string
	Status    string
	InvoiceNo string // partial match
	Page      int
	Limit     int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithDetail(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	ListOutstanding(ctx context.Context) ([]model.Invoice, error)
	ExistsForPeriod(ctx context.Context, clientID uuid.UUID, periodStart, periodEnd time.Time, source string) (bool, error)
	AddPayment(ctx context.Context, payment *model.Payment) error
	AddAdjustment(ctx context.Context, adjustment *model.Adjustment) error
	ListAdjustments(ctx context.Context, invoiceID uuid.UUID) ([]model.Adjustment, error)
	RefreshAmountPaid(ctx context.Context, id uuid.UUID) error
	UpdateFinancials(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSequence(ctx context.Context, prefix string) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithDetail(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Payer").
		Preload("LineItems").
		Preload("Payments").
		Preload("Adjustments").
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyInvoiceFilter(db.Model(&model.Invoice{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyInvoiceFilter(db.Preload("Client").Preload("LineItems"), filter)
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func applyInvoiceFilter(query *gorm.DB, filter InvoiceListFilter) *gorm.DB {
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.InvoiceNo != "" {
		query = query.Where("invoice_no LIKE ?", "%"+filter.InvoiceNo+"%")
	}
	return query
}

// ListOutstanding returns every invoice whose status is not PAID, with the
// client preloaded for aging detail rows.
func (r *invoiceRepository) ListOutstanding(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Where("status <> ?", model.InvoiceStatusPaid).
		Order("due_date asc").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsForPeriod implements the duplicate-generation guard keyed on
// (client, period, source).
func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, clientID uuid.UUID, periodStart, periodEnd time.Time, source string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("client_id = ? AND period_start = ? AND period_end = ? AND source = ?", clientID, periodStart, periodEnd, source).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepository) AddPayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *invoiceRepository) AddAdjustment(ctx context.Context, adjustment *model.Adjustment) error {
	return GetDB(ctx, r.db).Create(adjustment).Error
}

func (r *invoiceRepository) ListAdjustments(ctx context.Context, invoiceID uuid.UUID) ([]model.Adjustment, error) {
	var adjustments []model.Adjustment
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("created_at asc").Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// RefreshAmountPaid re-derives amount_paid from the payment rows in one
// statement. The subquery and the write share a snapshot, and the UPDATE
// takes the invoice row lock, so under concurrent ledger writes the loser
// blocks and then re-sums with the winner's rows committed. Every ledger
// mutation must run this before deriving status.
func (r *invoiceRepository) RefreshAmountPaid(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Exec(`
		UPDATE invoices
		SET amount_paid = (
			SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = invoices.id
		)
		WHERE id = ?
	`, id).Error
}

// UpdateFinancials persists only the ledger-derived fields, leaving the
// immutable provenance columns untouched.
func (r *invoiceRepository) UpdateFinancials(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"amount_paid":   invoice.AmountPaid,
			"status":        invoice.Status,
			"paid_override": invoice.PaidOverride,
		}).Error
}

// Delete hard-deletes the invoice and its children in dependency order.
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", id).Delete(&model.Adjustment{}).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", id).Delete(&model.LineItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MaxSequence returns the highest numeric suffix among invoice numbers with
// the given prefix, 0 when none exist. MAX survives deletes; counting rows
// would hand out a suffix that collides with a surviving invoice after a
// same-day delete.
func (r *invoiceRepository) MaxSequence(ctx context.Context, prefix string) (int64, error) {
	var max int64
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTR(invoice_no, ? + 1) AS INTEGER)), 0)
		FROM invoices
		WHERE invoice_no LIKE ?
	`
	row := GetDB(ctx, r.db).Raw(query, len(prefix), prefix+"%").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
