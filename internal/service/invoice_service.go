package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/internal/websocket"
	"carebill/pkg/caldate"
	"carebill/pkg/timecalc"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type GenerateInvoiceRequest struct {
	ClientID    string `json:"client_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd   string `json:"period_end" binding:"required"`
	Notes       string `json:"notes"`
}

type BatchGenerateRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	PayerID     string `json:"payer_id"` // optional: restrict the run to one payer's clients
}

type ManualInvoiceItem struct {
	Description string `json:"description" binding:"required"`
	ServiceDate string `json:"service_date"` // required when detailed=true
	CaregiverID string `json:"caregiver_id"`
	ServiceType string `json:"service_type"`
	Hours       string `json:"hours" binding:"required"`
	Rate        string `json:"rate" binding:"required"`
}

type CreateManualInvoiceRequest struct {
	ClientID    string              `json:"client_id" binding:"required"`
	PeriodStart string              `json:"period_start" binding:"required"`
	PeriodEnd   string              `json:"period_end" binding:"required"`
	Detailed    bool                `json:"detailed"` // detailed invoices require a service date per item
	Notes       string              `json:"notes"`
	Items       []ManualInvoiceItem `json:"items" binding:"required"`
}

type LineItemResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	ServiceDate *string `json:"service_date"`
	CaregiverID *string `json:"caregiver_id"`
	ServiceType string  `json:"service_type,omitempty"`
	Hours       string  `json:"hours"`
	Rate        string  `json:"rate"`
	Amount      string  `json:"amount"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Method      string `json:"method"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type AdjustmentResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

type InvoiceResponse struct {
	ID           string               `json:"id"`
	InvoiceNo    string               `json:"invoice_no"`
	ClientID     string               `json:"client_id"`
	ClientName   string               `json:"client_name,omitempty"`
	PayerID      *string              `json:"payer_id"`
	PayerName    string               `json:"payer_name,omitempty"`
	PeriodStart  string               `json:"period_start"`
	PeriodEnd    string               `json:"period_end"`
	IssueDate    string               `json:"issue_date"`
	DueDate      string               `json:"due_date"`
	Subtotal     string               `json:"subtotal"`
	Total        string               `json:"total"`
	AmountPaid   string               `json:"amount_paid"`
	Balance      string               `json:"balance"`     // clamped at zero
	RawBalance   string               `json:"raw_balance"` // signed; negative = overpaid
	Status       string               `json:"status"`
	PaidOverride bool                 `json:"paid_override"`
	Source       string               `json:"source"`
	Notes        string               `json:"notes,omitempty"`
	LineItems    []LineItemResponse   `json:"line_items,omitempty"`
	Payments     []PaymentResponse    `json:"payments,omitempty"`
	Adjustments  []AdjustmentResponse `json:"adjustments,omitempty"`
	CreatedAt    string               `json:"created_at"`
}

type InvoiceSummary struct {
	ID          string `json:"id"`
	InvoiceNo   string `json:"invoice_no"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name,omitempty"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	DueDate     string `json:"due_date"`
	Total       string `json:"total"`
	AmountPaid  string `json:"amount_paid"`
	Outstanding string `json:"outstanding"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	ItemCount   int    `json:"item_count"`
}

type BatchSkip struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	Reason     string `json:"reason"`
}

type BatchFailure struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	Error      string `json:"error"`
}

type BatchGenerateResult struct {
	GeneratedCount int              `json:"generated_count"`
	TotalAmount    string           `json:"total_amount"`
	Invoices       []InvoiceSummary `json:"invoices"`
	Skipped        []BatchSkip      `json:"skipped"`
	Failures       []BatchFailure   `json:"failures"`
}

// --- Interface ---

type InvoiceService interface {
	GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest, userID string) (*InvoiceResponse, error)
	GenerateInvoiceBatch(ctx context.Context, req BatchGenerateRequest, userID string) (*BatchGenerateResult, error)
	CreateManualInvoice(ctx context.Context, req CreateManualInvoiceRequest, userID string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceSummary, int64, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo   repository.InvoiceRepository
	timeEntryRepo repository.TimeEntryRepository
	clientRepo    repository.ClientRepository
	rateService   RateService
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *websocket.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	timeEntryRepo repository.TimeEntryRepository,
	clientRepo repository.ClientRepository,
	rateService RateService,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:   invoiceRepo,
		timeEntryRepo: timeEntryRepo,
		clientRepo:    clientRepo,
		rateService:   rateService,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

// --- Implementation ---

// GenerateInvoice builds an invoice from the client's committed, unbilled
// time entries within the period. Each entry becomes one line item priced at
// its locked rate if present, otherwise at the resolved rate for the entry's
// service date. The source entries are marked billed in the same transaction
// that creates the invoice.
func (s *invoiceService) GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest, userID string) (*InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", ErrValidation)
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	var invoiceID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, txErr := s.generateForClient(txCtx, client, periodStart, periodEnd, req.Notes)
		if txErr != nil {
			return txErr
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.GetInvoice(ctx, invoiceID.String())
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateInvoice, resp.ID, resp.InvoiceNo, req)
	s.hub.BroadcastEvent("invoice.created", resp)
	return resp, nil
}

// GenerateInvoiceBatch runs per-client generation for all billable clients
// (optionally one payer's). Per-client errors never abort the run: duplicate
// and no-activity outcomes land in skipped, everything else in failures.
func (s *invoiceService) GenerateInvoiceBatch(ctx context.Context, req BatchGenerateRequest, userID string) (*BatchGenerateResult, error) {
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	var payerID *uuid.UUID
	if req.PayerID != "" {
		parsed, parseErr := uuid.Parse(req.PayerID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid payer_id", ErrValidation)
		}
		payerID = &parsed
	}

	clients, err := s.clientRepo.ListBillable(ctx, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch billable clients: %w", err)
	}

	result := &BatchGenerateResult{
		Invoices: []InvoiceSummary{},
		Skipped:  []BatchSkip{},
		Failures: []BatchFailure{},
	}
	totalAmount := decimal.Zero

	for i := range clients {
		client := &clients[i]

		var created *model.Invoice
		genErr := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			invoice, txErr := s.generateForClient(txCtx, client, periodStart, periodEnd, "")
			if txErr != nil {
				return txErr
			}
			created = invoice
			return nil
		})
		switch {
		case genErr == nil:
			result.GeneratedCount++
			totalAmount = totalAmount.Add(created.Total)
			result.Invoices = append(result.Invoices, InvoiceSummary{
				ID:          created.ID.String(),
				InvoiceNo:   created.InvoiceNo,
				ClientID:    client.ID.String(),
				ClientName:  client.FullName(),
				PeriodStart: caldate.FromTime(created.PeriodStart).String(),
				PeriodEnd:   caldate.FromTime(created.PeriodEnd).String(),
				DueDate:     caldate.FromTime(created.DueDate).String(),
				Total:       created.Total.StringFixed(2),
				AmountPaid:  "0.00",
				Outstanding: created.Total.StringFixed(2),
				Status:      created.Status,
				Source:      created.Source,
				ItemCount:   len(created.LineItems),
			})
		case errors.Is(genErr, ErrNoBillableActivity), errors.Is(genErr, ErrDuplicateInvoice):
			result.Skipped = append(result.Skipped, BatchSkip{
				ClientID:   client.ID.String(),
				ClientName: client.FullName(),
				Reason:     genErr.Error(),
			})
		default:
			result.Failures = append(result.Failures, BatchFailure{
				ClientID:   client.ID.String(),
				ClientName: client.FullName(),
				Error:      genErr.Error(),
			})
		}
	}

	result.TotalAmount = totalAmount.StringFixed(2)

	writeAudit(ctx, s.auditRepo, userID, model.ActionBatchGenerate, "", fmt.Sprintf("%s to %s", periodStart, periodEnd), map[string]interface{}{
		"generated_count": result.GeneratedCount,
		"total_amount":    result.TotalAmount,
		"skipped":         len(result.Skipped),
		"failures":        len(result.Failures),
	})
	s.hub.BroadcastEvent("invoice.batch_completed", map[string]interface{}{
		"generated_count": result.GeneratedCount,
		"total_amount":    result.TotalAmount,
	})

	return result, nil
}

// CreateManualInvoice builds an invoice from operator-entered items. Items
// that fail to parse or carry non-positive hours or rate are dropped without
// error; if the validated set ends up empty the whole request fails. Manual
// invoices bypass the duplicate-period guard since repeated manual billing
// is an operator decision, not an automation bug.
func (s *invoiceService) CreateManualInvoice(ctx context.Context, req CreateManualInvoiceRequest, userID string) (*InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", ErrValidation)
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	items := make([]model.LineItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		hours, hoursErr := decimal.NewFromString(item.Hours)
		rate, rateErr := decimal.NewFromString(item.Rate)
		if hoursErr != nil || rateErr != nil || !hours.IsPositive() || !rate.IsPositive() {
			continue
		}

		// Manual hours sit on the same quarter grid as clock-derived
		// durations; an item too small to survive the snap is dropped
		// like any other invalid item.
		hours = timecalc.QuarterRound(hours)
		if !hours.IsPositive() {
			continue
		}

		if req.Detailed && item.ServiceDate == "" {
			return nil, fmt.Errorf("%w: detailed invoices require a service date on every item", ErrValidation)
		}

		lineItem := model.LineItem{
			Description: item.Description,
			ServiceType: item.ServiceType,
			Hours:       hours,
			Rate:        rate,
			Amount:      hours.Mul(rate).Round(2),
		}
		if item.ServiceDate != "" {
			serviceDate, dateErr := caldate.Parse(item.ServiceDate)
			if dateErr != nil {
				return nil, dateErr
			}
			t := serviceDate.Time()
			lineItem.ServiceDate = &t
		}
		if item.CaregiverID != "" {
			caregiverID, cgErr := uuid.Parse(item.CaregiverID)
			if cgErr != nil {
				return nil, fmt.Errorf("%w: invalid caregiver_id on item %q", ErrValidation, item.Description)
			}
			lineItem.CaregiverID = &caregiverID
		}

		subtotal = subtotal.Add(lineItem.Amount)
		items = append(items, lineItem)
	}

	if len(items) == 0 {
		return nil, ErrEmptyInvoice
	}

	var invoiceID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, noErr := s.nextInvoiceNo(txCtx)
		if noErr != nil {
			return noErr
		}

		issueDate := caldate.Today()
		invoice := model.Invoice{
			InvoiceNo:   invoiceNo,
			ClientID:    client.ID,
			PayerID:     client.PayerID,
			PeriodStart: periodStart.Time(),
			PeriodEnd:   periodEnd.Time(),
			IssueDate:   issueDate.Time(),
			DueDate:     issueDate.AddDays(30).Time(),
			Subtotal:    subtotal,
			Total:       subtotal,
			AmountPaid:  decimal.Zero,
			Status:      model.InvoiceStatusPending,
			Source:      model.InvoiceSourceManual,
			Notes:       req.Notes,
			LineItems:   items,
		}
		if txErr := s.invoiceRepo.Create(txCtx, &invoice); txErr != nil {
			return fmt.Errorf("failed to create invoice: %w", txErr)
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.GetInvoice(ctx, invoiceID.String())
	if err != nil {
		return nil, err
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateInvoice, resp.ID, resp.InvoiceNo, req)
	s.hub.BroadcastEvent("invoice.created", resp)
	return resp, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceSummary, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	summaries := make([]InvoiceSummary, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		summary := InvoiceSummary{
			ID:          inv.ID.String(),
			InvoiceNo:   inv.InvoiceNo,
			ClientID:    inv.ClientID.String(),
			PeriodStart: caldate.FromTime(inv.PeriodStart).String(),
			PeriodEnd:   caldate.FromTime(inv.PeriodEnd).String(),
			DueDate:     caldate.FromTime(inv.DueDate).String(),
			Total:       inv.Total.StringFixed(2),
			AmountPaid:  inv.AmountPaid.StringFixed(2),
			Outstanding: outstandingOf(inv).StringFixed(2),
			Status:      inv.Status,
			Source:      inv.Source,
			ItemCount:   len(inv.LineItems),
		}
		if inv.Client != nil {
			summary.ClientName = inv.Client.FullName()
		}
		summaries = append(summaries, summary)
	}
	return summaries, total, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByIDWithDetail(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return toInvoiceResponse(invoice), nil
}

// --- Helpers ---

// generateForClient is the transactional core shared by single and batch
// generation. Callers must invoke it inside RunInTx.
func (s *invoiceService) generateForClient(txCtx context.Context, client *model.Client, periodStart, periodEnd caldate.Date, notes string) (*model.Invoice, error) {
	exists, err := s.invoiceRepo.ExistsForPeriod(txCtx, client.ID, periodStart.Time(), periodEnd.Time(), model.InvoiceSourceAuto)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s already invoiced for %s to %s", ErrDuplicateInvoice, client.FullName(), periodStart, periodEnd)
	}

	entries, err := s.timeEntryRepo.ListUnbilledCommitted(txCtx, client.ID, periodStart.Time(), periodEnd.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w for %s between %s and %s", ErrNoBillableActivity, client.FullName(), periodStart, periodEnd)
	}

	items := make([]model.LineItem, 0, len(entries))
	entryIDs := make([]uuid.UUID, 0, len(entries))
	subtotal := decimal.Zero
	for i := range entries {
		entry := &entries[i]

		hours, hErr := timecalc.ComputeHours(entry.StartTime, entry.EndTime)
		if hErr != nil {
			return nil, fmt.Errorf("time entry %s: %w", entry.ID, hErr)
		}
		if hours.IsZero() {
			// Zero-duration shifts produce nothing billable; leave them
			// unbilled rather than attach a zero line item.
			continue
		}

		var rate decimal.Decimal
		if entry.LockedRate != nil {
			rate = *entry.LockedRate
		} else {
			resolved, rErr := s.rateService.ResolveRate(txCtx, client, entry.ServiceType, caldate.FromTime(entry.ServiceDate))
			if rErr != nil {
				return nil, rErr
			}
			rate = resolved.HourlyRate()
		}

		serviceDate := entry.ServiceDate
		items = append(items, model.LineItem{
			Description: fmt.Sprintf("%s, %s (%s to %s)", serviceTypeLabel(entry.ServiceType), caldate.FromTime(entry.ServiceDate), entry.StartTime, entry.EndTime),
			ServiceDate: &serviceDate,
			CaregiverID: entry.CaregiverID,
			ServiceType: entry.ServiceType,
			Hours:       hours,
			Rate:        rate,
			Amount:      hours.Mul(rate).Round(2),
		})
		entryIDs = append(entryIDs, entry.ID)
		subtotal = subtotal.Add(hours.Mul(rate).Round(2))
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w for %s between %s and %s", ErrNoBillableActivity, client.FullName(), periodStart, periodEnd)
	}

	invoiceNo, err := s.nextInvoiceNo(txCtx)
	if err != nil {
		return nil, err
	}

	issueDate := caldate.Today()
	invoice := model.Invoice{
		InvoiceNo:   invoiceNo,
		ClientID:    client.ID,
		PayerID:     client.PayerID,
		PeriodStart: periodStart.Time(),
		PeriodEnd:   periodEnd.Time(),
		IssueDate:   issueDate.Time(),
		DueDate:     issueDate.AddDays(30).Time(),
		Subtotal:    subtotal,
		Total:       subtotal,
		AmountPaid:  decimal.Zero,
		Status:      model.InvoiceStatusPending,
		Source:      model.InvoiceSourceAuto,
		Notes:       notes,
		LineItems:   items,
	}
	if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	if err := s.timeEntryRepo.MarkBilled(txCtx, entryIDs, invoice.ID); err != nil {
		return nil, fmt.Errorf("failed to mark time entries billed: %w", err)
	}

	return &invoice, nil
}

// nextInvoiceNo produces INV-YYYYMMDD-NNNNN, sequenced per issue day off
// the highest existing suffix so a deleted invoice never frees a number a
// surviving one still holds.
func (s *invoiceService) nextInvoiceNo(ctx context.Context) (string, error) {
	prefix := "INV-" + time.Now().UTC().Format("20060102") + "-"
	seq, err := s.invoiceRepo.MaxSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to sequence invoice number: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, seq+1), nil
}

func parsePeriod(start, end string) (caldate.Date, caldate.Date, error) {
	periodStart, err := caldate.Parse(start)
	if err != nil {
		return caldate.Date{}, caldate.Date{}, err
	}
	periodEnd, err := caldate.Parse(end)
	if err != nil {
		return caldate.Date{}, caldate.Date{}, err
	}
	if periodEnd.Before(periodStart) {
		return caldate.Date{}, caldate.Date{}, fmt.Errorf("%w: period end %s precedes period start %s", ErrValidation, periodEnd, periodStart)
	}
	return periodStart, periodEnd, nil
}

func serviceTypeLabel(serviceType string) string {
	switch serviceType {
	case model.ServicePersonalCare:
		return "Personal care"
	case model.ServiceCompanionCare:
		return "Companion care"
	case model.ServiceSkilledNursing:
		return "Skilled nursing"
	case model.ServiceRespite:
		return "Respite care"
	default:
		return "Care services"
	}
}

// outstandingOf reports the aging-relevant exposure: what was billed minus
// what was collected. Adjustments show up in the detailed balance instead.
func outstandingOf(inv *model.Invoice) decimal.Decimal {
	out := inv.Total.Sub(inv.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func toInvoiceResponse(inv *model.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:           inv.ID.String(),
		InvoiceNo:    inv.InvoiceNo,
		ClientID:     inv.ClientID.String(),
		PeriodStart:  caldate.FromTime(inv.PeriodStart).String(),
		PeriodEnd:    caldate.FromTime(inv.PeriodEnd).String(),
		IssueDate:    caldate.FromTime(inv.IssueDate).String(),
		DueDate:      caldate.FromTime(inv.DueDate).String(),
		Subtotal:     inv.Subtotal.StringFixed(2),
		Total:        inv.Total.StringFixed(2),
		AmountPaid:   inv.AmountPaid.StringFixed(2),
		Status:       inv.Status,
		PaidOverride: inv.PaidOverride,
		Source:       inv.Source,
		Notes:        inv.Notes,
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Client != nil {
		resp.ClientName = inv.Client.FullName()
	}
	if inv.PayerID != nil {
		id := inv.PayerID.String()
		resp.PayerID = &id
	}
	if inv.Payer != nil {
		resp.PayerName = inv.Payer.Name
	}

	adjTotal := decimal.Zero
	for _, adj := range inv.Adjustments {
		adjTotal = adjTotal.Add(adj.Amount)
		resp.Adjustments = append(resp.Adjustments, AdjustmentResponse{
			ID:        adj.ID.String(),
			Amount:    adj.Amount.StringFixed(2),
			Type:      adj.Type,
			Reason:    adj.Reason,
			Notes:     adj.Notes,
			CreatedAt: adj.CreatedAt.Format(time.RFC3339),
		})
	}

	rawBalance := inv.Total.Sub(inv.AmountPaid).Sub(adjTotal)
	balance := rawBalance
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	resp.Balance = balance.StringFixed(2)
	resp.RawBalance = rawBalance.StringFixed(2)

	for _, item := range inv.LineItems {
		li := LineItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			ServiceType: item.ServiceType,
			Hours:       item.Hours.StringFixed(2),
			Rate:        item.Rate.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		}
		if item.ServiceDate != nil {
			d := caldate.FromTime(*item.ServiceDate).String()
			li.ServiceDate = &d
		}
		if item.CaregiverID != nil {
			id := item.CaregiverID.String()
			li.CaregiverID = &id
		}
		resp.LineItems = append(resp.LineItems, li)
	}

	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:          p.ID.String(),
			Amount:      p.Amount.StringFixed(2),
			PaymentDate: caldate.FromTime(p.PaymentDate).String(),
			Method:      p.Method,
			Reference:   p.Reference,
			Notes:       p.Notes,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		})
	}

	return resp
}
