package service

import (
	"errors"
	"strings"
	"testing"

	"carebill/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoiceComputesTotalsAndMarksBilled(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	e1 := seedEntry(t, svc.db, client.ID, "2026-06-03", "08:00", "12:15") // 4.25 h
	e2 := seedEntry(t, svc.db, client.ID, "2026-06-05", "13:00", "16:45") // 3.75 h

	inv, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "264.00", inv.Subtotal)
	assert.Equal(t, "264.00", inv.Total)
	assert.Equal(t, "0.00", inv.AmountPaid)
	assert.Equal(t, model.InvoiceStatusPending, inv.Status)
	assert.Equal(t, model.InvoiceSourceAuto, inv.Source)
	assert.True(t, strings.HasPrefix(inv.InvoiceNo, "INV-"), "invoice number %q", inv.InvoiceNo)

	require.Len(t, inv.LineItems, 2)
	amounts := []string{inv.LineItems[0].Amount, inv.LineItems[1].Amount}
	assert.ElementsMatch(t, []string{"140.25", "123.75"}, amounts)

	// Consumed entries are tied to the invoice so a second run can't
	// double-bill them.
	for _, id := range []uuid.UUID{e1.ID, e2.ID} {
		var entry model.TimeEntry
		require.NoError(t, svc.db.First(&entry, "id = ?", id).Error)
		assert.True(t, entry.Billed)
		require.NotNil(t, entry.InvoiceID)
		assert.Equal(t, inv.ID, entry.InvoiceID.String())
	}
}

func TestGenerateInvoiceUsesLockedRate(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	entry := seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "11:00") // 2 h
	locked := mustDecimal(t, "40.00")
	entry.LockedRate = &locked
	require.NoError(t, svc.db.Save(entry).Error)

	inv, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)

	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "80.00", inv.LineItems[0].Amount, "locked rate overrides the card rate")
}

func TestGenerateInvoiceDuplicateGuard(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")
	seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "17:00")

	req := GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}
	_, err := svc.invoice.GenerateInvoice(testCtx(), req, "")
	require.NoError(t, err)

	// Even with fresh unbilled activity for the same window, the second
	// run must refuse.
	seedEntry(t, svc.db, client.ID, "2026-06-10", "09:00", "12:00")
	_, err = svc.invoice.GenerateInvoice(testCtx(), req, "")
	assert.True(t, errors.Is(err, ErrDuplicateInvoice))
}

func TestGenerateInvoiceNoActivity(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	// A draft shift and an out-of-window shift do not count.
	draft := seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "12:00")
	draft.Status = model.EntryStatusDraft
	require.NoError(t, svc.db.Save(draft).Error)
	seedEntry(t, svc.db, client.ID, "2026-07-01", "09:00", "12:00")

	_, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	assert.True(t, errors.Is(err, ErrNoBillableActivity))
}

func TestGenerateInvoiceRejectsInvertedPeriod(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	_, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-15",
		PeriodEnd:   "2026-06-01",
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGenerateInvoiceUnknownClient(t *testing.T) {
	svc := newServices(t)

	_, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    uuid.NewString(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGenerateInvoiceBatch(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	billable := seedClient(t, svc.db, &payer.ID)
	seedEntry(t, svc.db, billable.ID, "2026-06-03", "09:00", "17:00") // 8 h → 264.00

	idle := seedClient(t, svc.db, &payer.ID)

	// Private-pay client with activity but no default rate card: the run
	// records a failure and keeps going.
	unrated := seedClient(t, svc.db, nil)
	seedEntry(t, svc.db, unrated.ID, "2026-06-04", "09:00", "12:00")

	result, err := svc.invoice.GenerateInvoiceBatch(testCtx(), BatchGenerateRequest{
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.GeneratedCount)
	assert.Equal(t, "264.00", result.TotalAmount)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, billable.ID.String(), result.Invoices[0].ClientID)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, idle.ID.String(), result.Skipped[0].ClientID)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, unrated.ID.String(), result.Failures[0].ClientID)
}

func TestGenerateInvoiceBatchSkipsAlreadyInvoiced(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")
	client := seedClient(t, svc.db, &payer.ID)
	seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "17:00")

	req := BatchGenerateRequest{PeriodStart: "2026-06-01", PeriodEnd: "2026-06-15"}
	first, err := svc.invoice.GenerateInvoiceBatch(testCtx(), req, "")
	require.NoError(t, err)
	require.Equal(t, 1, first.GeneratedCount)

	second, err := svc.invoice.GenerateInvoiceBatch(testCtx(), req, "")
	require.NoError(t, err)
	assert.Equal(t, 0, second.GeneratedCount)
	assert.Len(t, second.Skipped, 1)
	assert.Empty(t, second.Failures)
}

func TestCreateManualInvoiceDropsInvalidItems(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	inv, err := svc.invoice.CreateManualInvoice(testCtx(), CreateManualInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-30",
		Items: []ManualInvoiceItem{
			{Description: "Respite coverage", Hours: "4", Rate: "35.00"},
			{Description: "Garbage hours", Hours: "abc", Rate: "35.00"},
			{Description: "Negative hours", Hours: "-2", Rate: "35.00"},
			{Description: "Zero rate", Hours: "3", Rate: "0"},
		},
	}, "")
	require.NoError(t, err)

	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "140.00", inv.LineItems[0].Amount)
	assert.Equal(t, "140.00", inv.Total)
	assert.Equal(t, model.InvoiceSourceManual, inv.Source)
}

func TestCreateManualInvoiceEmptyAfterDrops(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	_, err := svc.invoice.CreateManualInvoice(testCtx(), CreateManualInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-30",
		Items: []ManualInvoiceItem{
			{Description: "Garbage", Hours: "x", Rate: "35.00"},
		},
	}, "")
	assert.True(t, errors.Is(err, ErrEmptyInvoice))
}

func TestCreateManualInvoiceDetailedRequiresServiceDate(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	_, err := svc.invoice.CreateManualInvoice(testCtx(), CreateManualInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-30",
		Detailed:    true,
		Items: []ManualInvoiceItem{
			{Description: "Evening shift", Hours: "4", Rate: "35.00"},
		},
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCreateManualInvoiceBypassesDuplicateGuard(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")
	seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "17:00")

	_, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)

	// A manual invoice for the same window is an operator decision and is
	// never blocked by the auto-generation guard.
	inv, err := svc.invoice.CreateManualInvoice(testCtx(), CreateManualInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
		Items: []ManualInvoiceItem{
			{Description: "Supply surcharge", Hours: "1", Rate: "15.00"},
		},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceSourceManual, inv.Source)
}

func TestCreateManualInvoiceSnapsHoursToQuarters(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	inv, err := svc.invoice.CreateManualInvoice(testCtx(), CreateManualInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-30",
		Items: []ManualInvoiceItem{
			{Description: "Hand-keyed visit", Hours: "1.1", Rate: "40.00"},
			{Description: "Evening top-up", Hours: "2.9", Rate: "40.00"},
			{Description: "Too short to bill", Hours: "0.1", Rate: "40.00"},
		},
	}, "")
	require.NoError(t, err)

	// Manual hours land on the same quarter grid as clock-derived ones;
	// an item that snaps to zero is dropped.
	require.Len(t, inv.LineItems, 2)
	hours := []string{inv.LineItems[0].Hours, inv.LineItems[1].Hours}
	assert.ElementsMatch(t, []string{"1.00", "3.00"}, hours)
	assert.Equal(t, "160.00", inv.Total)
}

func TestInvoiceNumberingSurvivesSameDayDelete(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	gen := func(day string) *InvoiceResponse {
		client := seedClient(t, svc.db, &payer.ID)
		seedEntry(t, svc.db, client.ID, day, "09:00", "17:00")
		inv, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
			ClientID:    client.ID.String(),
			PeriodStart: "2026-06-01",
			PeriodEnd:   "2026-06-15",
		}, "")
		require.NoError(t, err)
		return inv
	}

	first := gen("2026-06-03")
	survivor := gen("2026-06-04")

	// Deleting the earlier invoice must not recycle its sequence number
	// while a later same-day invoice still holds a higher suffix.
	require.NoError(t, svc.ledger.DeleteInvoice(testCtx(), first.ID, ""))

	next := gen("2026-06-05")
	assert.NotEqual(t, survivor.InvoiceNo, next.InvoiceNo)
}
