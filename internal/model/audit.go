package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionBatchGenerate     = "BATCH_GENERATE_INVOICES"
	ActionRecordPayment     = "RECORD_PAYMENT"
	ActionRecordAdjustment  = "RECORD_ADJUSTMENT"
	ActionMarkInvoicePaid   = "MARK_INVOICE_PAID"
	ActionDeleteInvoice     = "DELETE_INVOICE"
	ActionCreateRateCard    = "CREATE_RATE_CARD"
	ActionDeleteRateCard    = "DELETE_RATE_CARD"
	ActionCreateAuth        = "CREATE_AUTHORIZATION"
	ActionCommitTimeEntry   = "COMMIT_TIME_ENTRY"
)

// AuditLog tracks Who, What, and When for financial changes. Mark-paid
// overrides get their own action so revenue reports can reconcile invoices
// settled without a matching payment record.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable for system-initiated actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
