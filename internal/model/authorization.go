package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AuthorizationUnitType enum constants
const (
	AuthUnitHours  = "HOURS"
	AuthUnitVisits = "VISITS"
	AuthUnitDays   = "DAYS"
)

// AuthorizationStatus enum constants (derived, never stored)
const (
	AuthStatusActive  = "ACTIVE"
	AuthStatusLow     = "LOW"
	AuthStatusExpired = "EXPIRED"
)

// Authorization is a payer-issued cap on units of service it will fund for
// a client over a validity window. Used units are aggregated from billed
// line items on demand; remaining may go negative and is reported as such.
type Authorization struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client          *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	PayerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"payer_id"`
	Payer           *Payer          `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	AuthNumber      string          `gorm:"type:varchar(50);not null" json:"auth_number"`
	ServiceType     string          `gorm:"type:varchar(30);not null" json:"service_type"`
	AuthorizedUnits decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"authorized_units"`
	UnitType        string          `gorm:"type:varchar(10);not null;default:'HOURS'" json:"unit_type"` // HOURS, VISITS, DAYS
	StartDate       time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null;index" json:"end_date"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (a *Authorization) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
