package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayerType enum constants
const (
	PayerTypeInsurance = "INSURANCE"
	PayerTypeAgency    = "AGENCY"
	PayerTypeVeterans  = "VA"
	PayerTypeOther     = "OTHER"
)

// Payer is a referral source that funds some or all of a client's services
// (insurer, county agency, VA program). Clients without a payer bill at the
// private-pay rate.
type Payer struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Type          string         `gorm:"type:varchar(20);not null;index" json:"type"` // INSURANCE, AGENCY, VA, OTHER
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	BillingNotes  string         `gorm:"type:text" json:"billing_notes"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Payer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
