package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitType enum constants
const (
	UnitHourly   = "HOURLY"
	UnitPer15Min = "PER_15_MIN"
)

// RateCard stores a billable unit rate for a payer/service-type pair with
// temporal validity. A nil PayerID marks the private-pay/default rate for
// the service type. Rate resolution picks the most recently effective entry
// not after the billing date.
type RateCard struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PayerID       *uuid.UUID      `gorm:"type:uuid;index" json:"payer_id"` // nil = private-pay default
	Payer         *Payer          `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	ServiceType   string          `gorm:"type:varchar(30);not null;index" json:"service_type"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	UnitType      string          `gorm:"type:varchar(20);not null;default:'HOURLY'" json:"unit_type"` // HOURLY, PER_15_MIN
	EffectiveFrom time.Time       `gorm:"type:date;not null;index" json:"effective_from"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r *RateCard) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
