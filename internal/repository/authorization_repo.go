package repository

import (
	"context"

	"carebill/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AuthorizationRepository interface {
	Create(ctx context.Context, auth *model.Authorization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Authorization, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Authorization, error)
	UsedUnits(ctx context.Context, auth *model.Authorization) (decimal.Decimal, error)
}

type authorizationRepository struct {
	db *gorm.DB
}

func NewAuthorizationRepository(db *gorm.DB) AuthorizationRepository {
	return &authorizationRepository{db: db}
}

func (r *authorizationRepository) Create(ctx context.Context, auth *model.Authorization) error {
	return GetDB(ctx, r.db).Create(auth).Error
}

func (r *authorizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Authorization, error) {
	var auth model.Authorization
	if err := GetDB(ctx, r.db).Preload("Payer").First(&auth, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *authorizationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Authorization, error) {
	var auths []model.Authorization
	if err := GetDB(ctx, r.db).Preload("Payer").
		Where("client_id = ?", clientID).
		Order("end_date desc").
		Find(&auths).Error; err != nil {
		return nil, err
	}
	return auths, nil
}

// UsedUnits aggregates billed line items matching the authorization's
// client, payer, and service type inside its validity window. The measure
// depends on the unit type: summed hours, line-item count (visits), or
// distinct service days.
func (r *authorizationRepository) UsedUnits(ctx context.Context, auth *model.Authorization) (decimal.Decimal, error) {
	var measure string
	switch auth.UnitType {
	case model.AuthUnitVisits:
		measure = "COUNT(li.id)"
	case model.AuthUnitDays:
		measure = "COUNT(DISTINCT li.service_date)"
	default:
		measure = "COALESCE(SUM(li.hours), 0)"
	}

	query := `
		SELECT ` + measure + `
		FROM line_items li
		INNER JOIN invoices i ON i.id = li.invoice_id
		WHERE i.client_id = ?
		  AND i.payer_id = ?
		  AND li.service_type = ?
		  AND li.service_date >= ?
		  AND li.service_date <= ?
	`

	var used decimal.Decimal
	row := GetDB(ctx, r.db).Raw(query,
		auth.ClientID, auth.PayerID, auth.ServiceType, auth.StartDate, auth.EndDate,
	).Row()
	if err := row.Scan(&used); err != nil {
		return decimal.Zero, err
	}
	return used, nil
}
