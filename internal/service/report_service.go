package service

import (
	"context"
	"fmt"

	"carebill/internal/repository"
	"carebill/pkg/caldate"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type MonthlyRevenue struct {
	Month     string `json:"month"` // YYYY-MM
	Invoiced  string `json:"invoiced"`
	Collected string `json:"collected"`
}

type StatusBreakdown struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Total  string `json:"total"`
}

type RevenueReport struct {
	From                 string            `json:"from"`
	To                   string            `json:"to"`
	Months               []MonthlyRevenue  `json:"months"`
	TotalInvoiced        string            `json:"total_invoiced"`
	TotalCollected       string            `json:"total_collected"`
	OverrideSettledTotal string            `json:"override_settled_total"`
	OverrideSettledCount int64             `json:"override_settled_count"`
	StatusBreakdown      []StatusBreakdown `json:"status_breakdown"`
}

// --- Interface ---

type ReportService interface {
	GetRevenueReport(ctx context.Context, from, to string) (*RevenueReport, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

// --- Implementation ---

// GetRevenueReport produces monthly billed-vs-collected figures for the
// window (default: trailing twelve months). Collected means actual payment
// rows; invoices settled via mark-paid are reconciled as a separate line so
// the two never get conflated.
func (s *reportService) GetRevenueReport(ctx context.Context, from, to string) (*RevenueReport, error) {
	toDate := caldate.Today()
	if to != "" {
		var err error
		toDate, err = caldate.Parse(to)
		if err != nil {
			return nil, err
		}
	}
	fromDate := toDate.AddDays(-365)
	if from != "" {
		var err error
		fromDate, err = caldate.Parse(from)
		if err != nil {
			return nil, err
		}
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: report window end %s precedes start %s", ErrValidation, toDate, fromDate)
	}

	rows, err := s.reportRepo.MonthlyRevenue(ctx, fromDate.Time(), toDate.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly revenue: %w", err)
	}

	report := &RevenueReport{
		From:   fromDate.String(),
		To:     toDate.String(),
		Months: make([]MonthlyRevenue, 0, len(rows)),
	}
	totalInvoiced := decimal.Zero
	totalCollected := decimal.Zero
	for _, row := range rows {
		report.Months = append(report.Months, MonthlyRevenue{
			Month:     row.Month.Format("2006-01"),
			Invoiced:  row.Invoiced.StringFixed(2),
			Collected: row.Collected.StringFixed(2),
		})
		totalInvoiced = totalInvoiced.Add(row.Invoiced)
		totalCollected = totalCollected.Add(row.Collected)
	}
	report.TotalInvoiced = totalInvoiced.StringFixed(2)
	report.TotalCollected = totalCollected.StringFixed(2)

	overrideTotal, overrideCount, err := s.reportRepo.OverrideSettled(ctx, fromDate.Time(), toDate.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate override settlements: %w", err)
	}
	report.OverrideSettledTotal = overrideTotal.StringFixed(2)
	report.OverrideSettledCount = overrideCount

	statusRows, err := s.reportRepo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	for _, row := range statusRows {
		report.StatusBreakdown = append(report.StatusBreakdown, StatusBreakdown{
			Status: row.Status,
			Count:  row.Count,
			Total:  row.Total.StringFixed(2),
		})
	}

	return report, nil
}
