package database

import (
	"log"

	"carebill/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Payer{},
		&model.Client{},
		&model.Caregiver{},
		&model.RateCard{},
		&model.TimeEntry{},
		&model.Invoice{},
		&model.LineItem{},
		&model.Payment{},
		&model.Adjustment{},
		&model.Authorization{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
