package service

import (
	"context"
	"errors"
	"fmt"

	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/internal/websocket"
	"carebill/pkg/caldate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	Amount      string `json:"amount" binding:"required"`
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD, defaults to today
	Method      string `json:"method" binding:"required,oneof=CHECK ACH CARD CASH OTHER"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

type RecordAdjustmentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=WRITE_OFF DISCOUNT REFUND ADJUSTMENT"`
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

// --- Interface ---

type LedgerService interface {
	RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest, userID string) (*InvoiceResponse, error)
	RecordAdjustment(ctx context.Context, invoiceID string, req RecordAdjustmentRequest, userID string) (*InvoiceResponse, error)
	MarkPaid(ctx context.Context, invoiceID string, userID string) (*InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, invoiceID string, userID string) error
}

type ledgerService struct {
	invoiceRepo   repository.InvoiceRepository
	timeEntryRepo repository.TimeEntryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *websocket.Hub
}

func NewLedgerService(
	invoiceRepo repository.InvoiceRepository,
	timeEntryRepo repository.TimeEntryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) LedgerService {
	return &ledgerService{
		invoiceRepo:   invoiceRepo,
		timeEntryRepo: timeEntryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

// --- Implementation ---

// RecordPayment appends a payment and recomputes the invoice's paid amount
// and status inside the same transaction. Payments are append-only; there is
// no edit or delete, corrections go through adjustments.
func (s *ledgerService) RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest, userID string) (*InvoiceResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount: %s", ErrValidation, req.Amount)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	paymentDate := caldate.Today()
	if req.PaymentDate != "" {
		paymentDate, err = caldate.Parse(req.PaymentDate)
		if err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, txErr := s.fetchInvoice(txCtx, id)
		if txErr != nil {
			return txErr
		}

		payment := model.Payment{
			InvoiceID:   invoice.ID,
			Amount:      amount,
			PaymentDate: paymentDate.Time(),
			Method:      req.Method,
			Reference:   req.Reference,
			Notes:       req.Notes,
		}
		if txErr := s.invoiceRepo.AddPayment(txCtx, &payment); txErr != nil {
			return fmt.Errorf("failed to record payment: %w", txErr)
		}

		return s.recompute(txCtx, invoice.ID)
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionRecordPayment, invoiceID, resp.InvoiceNo, req)
	s.hub.BroadcastEvent("payment.recorded", resp)
	return resp, nil
}

// RecordAdjustment appends an adjustment and recomputes status. Adjustments
// net against the outstanding balance; the invoice total stays what was
// billed so the write-off history remains visible.
func (s *ledgerService) RecordAdjustment(ctx context.Context, invoiceID string, req RecordAdjustmentRequest, userID string) (*InvoiceResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount: %s", ErrValidation, req.Amount)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: adjustment reason is required", ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, txErr := s.fetchInvoice(txCtx, id)
		if txErr != nil {
			return txErr
		}

		adjustment := model.Adjustment{
			InvoiceID: invoice.ID,
			Amount:    amount,
			Type:      req.Type,
			Reason:    req.Reason,
			Notes:     req.Notes,
		}
		if txErr := s.invoiceRepo.AddAdjustment(txCtx, &adjustment); txErr != nil {
			return fmt.Errorf("failed to record adjustment: %w", txErr)
		}

		return s.recompute(txCtx, invoice.ID)
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionRecordAdjustment, invoiceID, resp.InvoiceNo, req)
	s.hub.BroadcastEvent("adjustment.recorded", resp)
	return resp, nil
}

// MarkPaid settles an invoice without a payment record (bad debt written off
// informally, paid outside the system). The override flag distinguishes
// these from invoices settled through the ledger.
func (s *ledgerService) MarkPaid(ctx context.Context, invoiceID string, userID string) (*InvoiceResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, txErr := s.fetchInvoice(txCtx, id)
		if txErr != nil {
			return txErr
		}

		invoice.Status = model.InvoiceStatusPaid
		invoice.PaidOverride = true
		if txErr := s.invoiceRepo.UpdateFinancials(txCtx, invoice); txErr != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionMarkInvoicePaid, invoiceID, resp.InvoiceNo, nil)
	s.hub.BroadcastEvent("invoice.marked_paid", resp)
	return resp, nil
}

// DeleteInvoice hard-deletes the invoice with its line items, payments, and
// adjustments, and frees the consumed time entries for rebilling.
func (s *ledgerService) DeleteInvoice(ctx context.Context, invoiceID string, userID string) error {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	var invoiceNo string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, txErr := s.fetchInvoice(txCtx, id)
		if txErr != nil {
			return txErr
		}
		invoiceNo = invoice.InvoiceNo

		if txErr := s.timeEntryRepo.UnmarkBilled(txCtx, id); txErr != nil {
			return fmt.Errorf("failed to release time entries: %w", txErr)
		}
		if txErr := s.invoiceRepo.Delete(txCtx, id); txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice %s", ErrNotFound, invoiceID)
			}
			return fmt.Errorf("failed to delete invoice: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteInvoice, invoiceID, invoiceNo, nil)
	s.hub.BroadcastEvent("invoice.deleted", map[string]string{"id": invoiceID, "invoice_no": invoiceNo})
	return nil
}

// --- Helpers ---

func (s *ledgerService) fetchInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return invoice, nil
}

func (s *ledgerService) detail(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDWithDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return toInvoiceResponse(invoice), nil
}

// recompute serializes ledger writes on the invoice row. The amount_paid
// refresh takes the row lock and re-sums the payment rows in the same
// statement, so of two racing payments the loser blocks and then sums both;
// the stored figure can never miss a committed payment. Status derives from
// the re-read row and the adjustment history under that same lock.
func (s *ledgerService) recompute(txCtx context.Context, invoiceID uuid.UUID) error {
	if err := s.invoiceRepo.RefreshAmountPaid(txCtx, invoiceID); err != nil {
		return fmt.Errorf("failed to refresh paid amount: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to reload invoice: %w", err)
	}

	adjustments, err := s.invoiceRepo.ListAdjustments(txCtx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to fetch adjustments: %w", err)
	}
	adjTotal := decimal.Zero
	for _, a := range adjustments {
		adjTotal = adjTotal.Add(a.Amount)
	}

	invoice.Status = deriveStatus(invoice.Total, invoice.AmountPaid, adjTotal, invoice.PaidOverride)

	if err := s.invoiceRepo.UpdateFinancials(txCtx, invoice); err != nil {
		return fmt.Errorf("failed to update invoice financials: %w", err)
	}
	return nil
}

// deriveStatus maps the outstanding balance to an invoice status. A mark-paid
// override pins the status at PAID regardless of later ledger activity.
func deriveStatus(total, amountPaid, adjTotal decimal.Decimal, paidOverride bool) string {
	if paidOverride {
		return model.InvoiceStatusPaid
	}
	balance := total.Sub(amountPaid).Sub(adjTotal)
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return model.InvoiceStatusPaid
	case balance.LessThan(total):
		return model.InvoiceStatusPartial
	default:
		return model.InvoiceStatusPending
	}
}
