package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntryStatus enum constants
const (
	EntryStatusDraft     = "DRAFT"
	EntryStatusCommitted = "COMMITTED"
)

// Caregiver represents a worker delivering shifts. Only identity fields;
// payroll is a separate system.
type Caregiver struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string         `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Caregiver) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TimeEntry is one delivered shift. Only COMMITTED, unbilled entries qualify
// for invoice generation; Billed/InvoiceID are set when an invoice consumes
// the entry and cleared again if that invoice is deleted.
type TimeEntry struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CaregiverID *uuid.UUID       `gorm:"type:uuid;index" json:"caregiver_id"`
	Caregiver   *Caregiver       `gorm:"foreignKey:CaregiverID" json:"caregiver,omitempty"`
	ServiceDate time.Time        `gorm:"type:date;not null;index" json:"service_date"`
	StartTime   string           `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM wall clock
	EndTime     string           `gorm:"type:varchar(5);not null" json:"end_time"`
	ServiceType string           `gorm:"type:varchar(30);not null" json:"service_type"`
	Status      string           `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	LockedRate  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"locked_rate"` // hourly rate frozen at entry time; overrides resolution
	Billed      bool             `gorm:"default:false;index" json:"billed"`
	InvoiceID   *uuid.UUID       `gorm:"type:uuid;index" json:"invoice_id"`
	Notes       string           `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (t *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
