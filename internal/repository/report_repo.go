package repository

import (
	"context"
	"time"

	"carebill/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyRevenueRow is one month of billed vs collected figures.
type MonthlyRevenueRow struct {
	Month     time.Time       `gorm:"column:month"`
	Invoiced  decimal.Decimal `gorm:"column:invoiced"`
	Collected decimal.Decimal `gorm:"column:collected"`
}

// StatusCountRow is the invoice count and billed total for one status.
type StatusCountRow struct {
	Status string          `gorm:"column:status"`
	Count  int64           `gorm:"column:count"`
	Total  decimal.Decimal `gorm:"column:total"`
}

type ReportRepository interface {
	MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenueRow, error)
	OverrideSettled(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
	StatusCounts(ctx context.Context) ([]StatusCountRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// MonthlyRevenue buckets billed totals by issue month and collected payments
// by payment month over the window.
func (r *reportRepository) MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenueRow, error) {
	var rows []MonthlyRevenueRow
	err := GetDB(ctx, r.db).Raw(`
		SELECT months.month AS month,
		       COALESCE(inv.invoiced, 0) AS invoiced,
		       COALESCE(pay.collected, 0) AS collected
		FROM (
			SELECT DISTINCT DATE_TRUNC('month', issue_date) AS month
			FROM invoices WHERE issue_date BETWEEN ? AND ?
			UNION
			SELECT DISTINCT DATE_TRUNC('month', payment_date)
			FROM payments WHERE payment_date BETWEEN ? AND ?
		) months
		LEFT JOIN (
			SELECT DATE_TRUNC('month', issue_date) AS month, SUM(total) AS invoiced
			FROM invoices WHERE issue_date BETWEEN ? AND ?
			GROUP BY 1
		) inv ON inv.month = months.month
		LEFT JOIN (
			SELECT DATE_TRUNC('month', payment_date) AS month, SUM(amount) AS collected
			FROM payments WHERE payment_date BETWEEN ? AND ?
			GROUP BY 1
		) pay ON pay.month = months.month
		ORDER BY months.month
	`, from, to, from, to, from, to, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OverrideSettled totals invoices settled via mark-paid in the window: the
// gap between their billed total and recorded payments never shows up in
// the payments table, so revenue reporting reconciles it separately.
func (r *reportRepository) OverrideSettled(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
		Count int64           `gorm:"column:count"`
	}
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("COALESCE(SUM(total - amount_paid), 0) AS total, COUNT(*) AS count").
		Where("paid_override = ? AND issue_date BETWEEN ? AND ?", true, from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

func (r *reportRepository) StatusCounts(ctx context.Context) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
