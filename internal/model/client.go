package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceType enum constants
const (
	ServicePersonalCare   = "PERSONAL_CARE"
	ServiceCompanionCare  = "COMPANION_CARE"
	ServiceSkilledNursing = "SKILLED_NURSING"
	ServiceRespite        = "RESPITE"
)

// CareStatus enum constants
const (
	CareStatusActive   = "ACTIVE"
	CareStatusInactive = "INACTIVE"
)

// Client represents a person receiving care. Billing attributes live here;
// clinical data is out of scope. A nil PayerID means private pay.
type Client struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName          string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName           string         `gorm:"type:varchar(100);not null" json:"last_name"`
	Address            string         `gorm:"type:text" json:"address"`
	Phone              string         `gorm:"type:varchar(50)" json:"phone"`
	Email              string         `gorm:"type:varchar(255)" json:"email"`
	PayerID            *uuid.UUID     `gorm:"type:uuid;index" json:"payer_id"`
	Payer              *Payer         `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	DefaultServiceType string         `gorm:"type:varchar(30);not null" json:"default_service_type"`
	CareStatus         string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"care_status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FullName returns "First Last" for display and audit entries.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
