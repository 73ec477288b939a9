package service

import (
	"context"
	"fmt"

	"carebill/internal/repository"
	"carebill/pkg/caldate"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type AgingInvoice struct {
	InvoiceID   string `json:"invoice_id"`
	InvoiceNo   string `json:"invoice_no"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name,omitempty"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue"`
	Outstanding string `json:"outstanding"`
	Status      string `json:"status"`
}

type AgingBucket struct {
	Label    string         `json:"label"`
	Total    string         `json:"total"`
	Count    int            `json:"count"`
	Invoices []AgingInvoice `json:"invoices"`
}

type AgingSummary struct {
	AsOf             string      `json:"as_of"`
	Current          AgingBucket `json:"current"`
	Days1To30        AgingBucket `json:"days_1_30"`
	Days31To60       AgingBucket `json:"days_31_60"`
	Days61To90       AgingBucket `json:"days_61_90"`
	Over90           AgingBucket `json:"over_90"`
	TotalOutstanding string      `json:"total_outstanding"`
}

// --- Interface ---

type AgingService interface {
	GetAgingSummary(ctx context.Context, asOf string) (*AgingSummary, error)
}

type agingService struct {
	invoiceRepo repository.InvoiceRepository
}

func NewAgingService(invoiceRepo repository.InvoiceRepository) AgingService {
	return &agingService{invoiceRepo: invoiceRepo}
}

// --- Implementation ---

// GetAgingSummary classifies every non-paid invoice into standard A/R aging
// buckets by days past due as of the given date (default today). Outstanding
// is billed total minus collected amount; the bucket totals always sum to
// the overall outstanding figure.
func (s *agingService) GetAgingSummary(ctx context.Context, asOf string) (*AgingSummary, error) {
	asOfDate := caldate.Today()
	if asOf != "" {
		var err error
		asOfDate, err = caldate.Parse(asOf)
		if err != nil {
			return nil, err
		}
	}

	invoices, err := s.invoiceRepo.ListOutstanding(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outstanding invoices: %w", err)
	}

	summary := &AgingSummary{
		AsOf:       asOfDate.String(),
		Current:    AgingBucket{Label: "current", Invoices: []AgingInvoice{}},
		Days1To30:  AgingBucket{Label: "1-30", Invoices: []AgingInvoice{}},
		Days31To60: AgingBucket{Label: "31-60", Invoices: []AgingInvoice{}},
		Days61To90: AgingBucket{Label: "61-90", Invoices: []AgingInvoice{}},
		Over90:     AgingBucket{Label: "90+", Invoices: []AgingInvoice{}},
	}

	bucketTotals := make(map[*AgingBucket]decimal.Decimal)
	totalOutstanding := decimal.Zero

	for i := range invoices {
		inv := &invoices[i]
		outstanding := outstandingOf(inv)
		days := caldate.DaysBetween(caldate.FromTime(inv.DueDate), asOfDate)

		var bucket *AgingBucket
		switch {
		case days <= 0:
			bucket = &summary.Current
		case days <= 30:
			bucket = &summary.Days1To30
		case days <= 60:
			bucket = &summary.Days31To60
		case days <= 90:
			bucket = &summary.Days61To90
		default:
			bucket = &summary.Over90
		}

		detail := AgingInvoice{
			InvoiceID:   inv.ID.String(),
			InvoiceNo:   inv.InvoiceNo,
			ClientID:    inv.ClientID.String(),
			DueDate:     caldate.FromTime(inv.DueDate).String(),
			DaysOverdue: days,
			Outstanding: outstanding.StringFixed(2),
			Status:      inv.Status,
		}
		if inv.Client != nil {
			detail.ClientName = inv.Client.FullName()
		}

		bucket.Invoices = append(bucket.Invoices, detail)
		bucket.Count++
		bucketTotals[bucket] = bucketTotals[bucket].Add(outstanding)
		totalOutstanding = totalOutstanding.Add(outstanding)
	}

	for _, bucket := range []*AgingBucket{&summary.Current, &summary.Days1To30, &summary.Days31To60, &summary.Days61To90, &summary.Over90} {
		bucket.Total = bucketTotals[bucket].StringFixed(2)
	}
	summary.TotalOutstanding = totalOutstanding.StringFixed(2)

	return summary, nil
}
