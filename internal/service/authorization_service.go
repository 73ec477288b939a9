package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/pkg/caldate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateAuthorizationRequest struct {
	ClientID        string `json:"client_id" binding:"required"`
	PayerID         string `json:"payer_id" binding:"required"`
	AuthNumber      string `json:"auth_number" binding:"required"`
	ServiceType     string `json:"service_type" binding:"required,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"`
	AuthorizedUnits string `json:"authorized_units" binding:"required"`
	UnitType        string `json:"unit_type" binding:"omitempty,oneof=HOURS VISITS DAYS"` // defaults to HOURS
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	Notes           string `json:"notes"`
}

type UtilizationResponse struct {
	AuthorizationID string `json:"authorization_id"`
	AuthNumber      string `json:"auth_number"`
	ClientID        string `json:"client_id"`
	PayerName       string `json:"payer_name,omitempty"`
	ServiceType     string `json:"service_type"`
	UnitType        string `json:"unit_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Used            string `json:"used"`
	Authorized      string `json:"authorized"`
	Remaining       string `json:"remaining"` // signed; negative = over-delivered
	PercentageUsed  string `json:"percentage_used"`
	Status          string `json:"status"` // ACTIVE, LOW, EXPIRED
}

// --- Interface ---

type AuthorizationService interface {
	CreateAuthorization(ctx context.Context, req CreateAuthorizationRequest, userID string) (*UtilizationResponse, error)
	GetUtilization(ctx context.Context, id string) (*UtilizationResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]UtilizationResponse, error)
}

type authorizationService struct {
	authRepo   repository.AuthorizationRepository
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
}

func NewAuthorizationService(
	authRepo repository.AuthorizationRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
) AuthorizationService {
	return &authorizationService{authRepo: authRepo, clientRepo: clientRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *authorizationService) CreateAuthorization(ctx context.Context, req CreateAuthorizationRequest, userID string) (*UtilizationResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", ErrValidation)
	}
	payerID, err := uuid.Parse(req.PayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payer_id", ErrValidation)
	}

	units, err := decimal.NewFromString(req.AuthorizedUnits)
	if err != nil || !units.IsPositive() {
		return nil, fmt.Errorf("%w: authorized units must be a positive number", ErrValidation)
	}

	startDate, err := caldate.Parse(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := caldate.Parse(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date %s precedes start date %s", ErrValidation, endDate, startDate)
	}

	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	unitType := req.UnitType
	if unitType == "" {
		unitType = model.AuthUnitHours
	}

	auth := model.Authorization{
		ClientID:        clientID,
		PayerID:         payerID,
		AuthNumber:      req.AuthNumber,
		ServiceType:     req.ServiceType,
		AuthorizedUnits: units,
		UnitType:        unitType,
		StartDate:       startDate.Time(),
		EndDate:         endDate.Time(),
		Notes:           req.Notes,
	}
	if err := s.authRepo.Create(ctx, &auth); err != nil {
		return nil, fmt.Errorf("failed to create authorization: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateAuth, auth.ID.String(), req.AuthNumber, req)

	return s.GetUtilization(ctx, auth.ID.String())
}

// GetUtilization reports used versus authorized units for one authorization.
// Used units are derived from billed line items at call time, never stored,
// so the figure is always consistent with the invoices that exist right now.
func (s *authorizationService) GetUtilization(ctx context.Context, id string) (*UtilizationResponse, error) {
	authID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid authorization id", ErrValidation)
	}

	auth, err := s.authRepo.FindByID(ctx, authID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: authorization %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch authorization: %w", err)
	}

	return s.buildUtilization(ctx, auth)
}

// ListByClient returns the client's authorizations, newest validity window
// first, each with utilization computed inline.
func (s *authorizationService) ListByClient(ctx context.Context, clientID string) ([]UtilizationResponse, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client id", ErrValidation)
	}

	auths, err := s.authRepo.ListByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authorizations: %w", err)
	}

	res := make([]UtilizationResponse, 0, len(auths))
	for i := range auths {
		util, buildErr := s.buildUtilization(ctx, &auths[i])
		if buildErr != nil {
			return nil, buildErr
		}
		res = append(res, *util)
	}
	return res, nil
}

// --- Helpers ---

func (s *authorizationService) buildUtilization(ctx context.Context, auth *model.Authorization) (*UtilizationResponse, error) {
	used, err := s.authRepo.UsedUnits(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate used units: %w", err)
	}

	remaining := auth.AuthorizedUnits.Sub(used)

	percentage := decimal.Zero
	if auth.AuthorizedUnits.IsPositive() {
		percentage = used.Div(auth.AuthorizedUnits).Mul(decimal.NewFromInt(100)).Round(1)
	}

	resp := &UtilizationResponse{
		AuthorizationID: auth.ID.String(),
		AuthNumber:      auth.AuthNumber,
		ClientID:        auth.ClientID.String(),
		ServiceType:     auth.ServiceType,
		UnitType:        auth.UnitType,
		StartDate:       caldate.FromTime(auth.StartDate).String(),
		EndDate:         caldate.FromTime(auth.EndDate).String(),
		Used:            used.StringFixed(2),
		Authorized:      auth.AuthorizedUnits.StringFixed(2),
		Remaining:       remaining.StringFixed(2),
		PercentageUsed:  percentage.StringFixed(1),
		Status:          utilizationStatus(auth.EndDate, percentage),
	}
	if auth.Payer != nil {
		resp.PayerName = auth.Payer.Name
	}
	return resp, nil
}

// utilizationStatus flags an authorization for attention. Expiry wins over
// the low-units warning; LOW kicks in at 80% consumed.
func utilizationStatus(endDate time.Time, percentage decimal.Decimal) string {
	if caldate.Today().After(caldate.FromTime(endDate)) {
		return model.AuthStatusExpired
	}
	if percentage.GreaterThanOrEqual(decimal.NewFromInt(80)) {
		return model.AuthStatusLow
	}
	return model.AuthStatusActive
}
