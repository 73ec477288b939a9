package service

import (
	"errors"
	"testing"
	"time"

	"carebill/internal/model"
	"carebill/pkg/caldate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00001", "100.00", caldate.Today().AddDays(10))

	resp, err := svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "50.00",
		Method: model.PaymentMethodCheck,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "50.00", resp.AmountPaid)
	assert.Equal(t, "50.00", resp.Balance)
	assert.Equal(t, model.InvoiceStatusPartial, resp.Status)

	resp, err = svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "50.00",
		Method: model.PaymentMethodACH,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "100.00", resp.AmountPaid)
	assert.Equal(t, "0.00", resp.Balance)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)
	require.Len(t, resp.Payments, 2)
}

func TestRecordPaymentOverpayment(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00002", "100.00", caldate.Today().AddDays(10))

	resp, err := svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "120.00",
		Method: model.PaymentMethodCash,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)
	assert.Equal(t, "0.00", resp.Balance, "displayed balance clamps at zero")
	assert.Equal(t, "-20.00", resp.RawBalance, "raw balance keeps the credit visible")
}

func TestRecordPaymentSumsEveryRecordedRow(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00008", "100.00", caldate.Today().AddDays(10))

	// A payment row landed by another ledger session whose invoice refresh
	// the service never saw, so the stored amount_paid is stale relative to
	// the payment history.
	require.NoError(t, svc.db.Create(&model.Payment{
		InvoiceID:   inv.ID,
		Amount:      mustDecimal(t, "30.00"),
		PaymentDate: time.Now().UTC(),
		Method:      model.PaymentMethodCheck,
	}).Error)

	resp, err := svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "50.00",
		Method: model.PaymentMethodACH,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "80.00", resp.AmountPaid, "paid amount re-sums the payment table, not the stale stored figure")
	assert.Equal(t, "20.00", resp.Balance)
	assert.Equal(t, model.InvoiceStatusPartial, resp.Status)
	require.Len(t, resp.Payments, 2)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00003", "100.00", caldate.Today().AddDays(10))

	_, err := svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "0",
		Method: model.PaymentMethodCheck,
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.ledger.RecordPayment(testCtx(), uuid.NewString(), RecordPaymentRequest{
		Amount: "10.00",
		Method: model.PaymentMethodCheck,
	}, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordAdjustmentReducesBalanceNotTotal(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00004", "100.00", caldate.Today().AddDays(10))

	resp, err := svc.ledger.RecordAdjustment(testCtx(), inv.ID.String(), RecordAdjustmentRequest{
		Amount: "25.00",
		Type:   model.AdjustmentDiscount,
		Reason: "Veteran discount",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "100.00", resp.Total, "billed total is immutable")
	assert.Equal(t, "75.00", resp.Balance)
	assert.Equal(t, model.InvoiceStatusPartial, resp.Status)
}

func TestAdjustmentCanSettleInvoice(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00005", "100.00", caldate.Today().AddDays(10))

	_, err := svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "60.00",
		Method: model.PaymentMethodCheck,
	}, "")
	require.NoError(t, err)

	resp, err := svc.ledger.RecordAdjustment(testCtx(), inv.ID.String(), RecordAdjustmentRequest{
		Amount: "40.00",
		Type:   model.AdjustmentWriteOff,
		Reason: "Uncollectible remainder",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)
	assert.Equal(t, "0.00", resp.Balance)
}

func TestRecordAdjustmentRequiresReason(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00006", "100.00", caldate.Today().AddDays(10))

	_, err := svc.ledger.RecordAdjustment(testCtx(), inv.ID.String(), RecordAdjustmentRequest{
		Amount: "25.00",
		Type:   model.AdjustmentDiscount,
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMarkPaidSetsOverride(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)
	inv := seedInvoice(t, svc.db, client.ID, "INV-20260601-00007", "100.00", caldate.Today().AddDays(10))

	resp, err := svc.ledger.MarkPaid(testCtx(), inv.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)
	assert.True(t, resp.PaidOverride)
	assert.Equal(t, "0.00", resp.AmountPaid, "mark-paid records no payment")

	// A later ledger recompute must not demote an overridden invoice.
	resp, err = svc.ledger.RecordPayment(testCtx(), inv.ID.String(), RecordPaymentRequest{
		Amount: "10.00",
		Method: model.PaymentMethodCheck,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)
	assert.True(t, resp.PaidOverride)
}

func TestDeleteInvoiceReleasesTimeEntries(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")
	entry := seedEntry(t, svc.db, client.ID, "2026-06-03", "09:00", "17:00")

	inv, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.ledger.DeleteInvoice(testCtx(), inv.ID, ""))

	var reloaded model.TimeEntry
	require.NoError(t, svc.db.First(&reloaded, "id = ?", entry.ID).Error)
	assert.False(t, reloaded.Billed)
	assert.Nil(t, reloaded.InvoiceID)

	_, err = svc.invoice.GetInvoice(testCtx(), inv.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	// The released entry can be billed again.
	regenerated, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    client.ID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-15",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "264.00", regenerated.Total)
}

func TestDeleteInvoiceNotFound(t *testing.T) {
	svc := newServices(t)
	err := svc.ledger.DeleteInvoice(testCtx(), uuid.NewString(), "")
	assert.True(t, errors.Is(err, ErrNotFound))
}
