package service

import (
	"testing"

	"carebill/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgingBucketBoundaries(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	// as-of 2026-06-30; each due date sits exactly on a bucket boundary.
	cases := []struct {
		invoiceNo string
		dueDate   string
	}{
		{"INV-A-00001", "2026-07-10"}, // not yet due
		{"INV-A-00002", "2026-06-30"}, // due today, still current
		{"INV-A-00003", "2026-05-31"}, // 30 days
		{"INV-A-00004", "2026-05-30"}, // 31 days
		{"INV-A-00005", "2026-05-01"}, // 60 days
		{"INV-A-00006", "2026-04-30"}, // 61 days
		{"INV-A-00007", "2026-04-01"}, // 90 days
		{"INV-A-00008", "2026-03-31"}, // 91 days
	}
	for _, c := range cases {
		seedInvoice(t, svc.db, client.ID, c.invoiceNo, "100.00", mustDate(t, c.dueDate))
	}

	summary, err := svc.aging.GetAgingSummary(testCtx(), "2026-06-30")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Current.Count)
	assert.Equal(t, 1, summary.Days1To30.Count)
	assert.Equal(t, 2, summary.Days31To60.Count)
	assert.Equal(t, 2, summary.Days61To90.Count)
	assert.Equal(t, 1, summary.Over90.Count)

	assert.Equal(t, "200.00", summary.Current.Total)
	assert.Equal(t, "100.00", summary.Days1To30.Total)
	assert.Equal(t, "800.00", summary.TotalOutstanding)
}

func TestAgingExcludesPaidAndNetsPartials(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	paid := seedInvoice(t, svc.db, client.ID, "INV-B-00001", "100.00", mustDate(t, "2026-05-01"))
	paid.Status = model.InvoiceStatusPaid
	paid.AmountPaid = decimal.RequireFromString("100.00")
	require.NoError(t, svc.db.Save(paid).Error)

	partial := seedInvoice(t, svc.db, client.ID, "INV-B-00002", "100.00", mustDate(t, "2026-05-01"))
	partial.Status = model.InvoiceStatusPartial
	partial.AmountPaid = decimal.RequireFromString("40.00")
	require.NoError(t, svc.db.Save(partial).Error)

	summary, err := svc.aging.GetAgingSummary(testCtx(), "2026-06-30")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Days31To60.Count, "paid invoice must not appear")
	assert.Equal(t, "60.00", summary.Days31To60.Total, "partial nets collected amount")
	assert.Equal(t, "60.00", summary.TotalOutstanding)

	require.Len(t, summary.Days31To60.Invoices, 1)
	row := summary.Days31To60.Invoices[0]
	assert.Equal(t, partial.ID.String(), row.InvoiceID)
	assert.Equal(t, 60, row.DaysOverdue)
	assert.Equal(t, "60.00", row.Outstanding)
}

func TestAgingRejectsBadAsOf(t *testing.T) {
	svc := newServices(t)
	_, err := svc.aging.GetAgingSummary(testCtx(), "06/30/2026")
	assert.Error(t, err)
}

func TestAgingEmptyLedger(t *testing.T) {
	svc := newServices(t)
	summary, err := svc.aging.GetAgingSummary(testCtx(), "2026-06-30")
	require.NoError(t, err)
	assert.Equal(t, "0.00", summary.TotalOutstanding)
	assert.Equal(t, 0, summary.Current.Count)
}
