package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPartial = "PARTIAL"
	InvoiceStatusPaid    = "PAID"
)

// InvoiceSource enum constants
const (
	InvoiceSourceAuto   = "AUTO"
	InvoiceSourceManual = "MANUAL"
)

// PaymentMethod enum constants
const (
	PaymentMethodCheck = "CHECK"
	PaymentMethodACH   = "ACH"
	PaymentMethodCard  = "CARD"
	PaymentMethodCash  = "CASH"
	PaymentMethodOther = "OTHER"
)

// AdjustmentType enum constants
const (
	AdjustmentWriteOff = "WRITE_OFF"
	AdjustmentDiscount = "DISCOUNT"
	AdjustmentRefund   = "REFUND"
	AdjustmentGeneric  = "ADJUSTMENT"
)

// Invoice is a bill issued to a client (or their payer) for a service
// period. Subtotal/Total are computed from the line items at creation and
// never taken from caller input; line items are immutable once the invoice
// exists; corrections go through adjustments. AmountPaid and Status are
// derived by the ledger from payments and adjustments, except when
// PaidOverride records an off-ledger settlement via mark-paid.
type Invoice struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo    string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client       *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	PayerID      *uuid.UUID      `gorm:"type:uuid;index" json:"payer_id"` // payer at time of billing; nil = private pay
	Payer        *Payer          `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	PeriodStart  time.Time       `gorm:"type:date;not null;index" json:"period_start"`
	PeriodEnd    time.Time       `gorm:"type:date;not null;index" json:"period_end"`
	IssueDate    time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate      time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	Total        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	Status       string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaidOverride bool            `gorm:"default:false" json:"paid_override"` // set only by mark-paid, never by ledger recompute
	Source       string          `gorm:"type:varchar(10);not null;index" json:"source"` // AUTO, MANUAL
	Notes        string          `gorm:"type:text" json:"notes"`
	LineItems    []LineItem      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items"`
	Payments     []Payment       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments"`
	Adjustments  []Adjustment    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"adjustments"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineItem is one billable unit within an invoice: hours × rate = amount.
// Persisted items always satisfy hours > 0 and rate > 0.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	ServiceDate *time.Time      `gorm:"type:date;index" json:"service_date"`
	CaregiverID *uuid.UUID      `gorm:"type:uuid" json:"caregiver_id"`
	Caregiver   *Caregiver      `gorm:"foreignKey:CaregiverID" json:"caregiver,omitempty"`
	ServiceType string          `gorm:"type:varchar(30)" json:"service_type"`
	Hours       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"hours"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (l *LineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Payment is an append-only record of money received against an invoice.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"type:date;not null" json:"payment_date"`
	Method      string          `gorm:"type:varchar(20);not null" json:"method"` // CHECK, ACH, CARD, CASH, OTHER
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Adjustment is an append-only correction against an invoice balance.
// Adjustments net against the balance only; the original Total is never
// rewritten, preserving what was billed.
type Adjustment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Type      string          `gorm:"type:varchar(20);not null" json:"type"` // WRITE_OFF, DISCOUNT, REFUND, ADJUSTMENT
	Reason    string          `gorm:"type:varchar(255);not null" json:"reason"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

func (a *Adjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
