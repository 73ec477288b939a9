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

type CreateRateCardRequest struct {
	PayerID       string `json:"payer_id"` // empty = private-pay default rate
	ServiceType   string `json:"service_type" binding:"required,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"`
	Rate          string `json:"rate" binding:"required"`                            // decimal string, e.g. "33.00"
	UnitType      string `json:"unit_type" binding:"omitempty,oneof=HOURLY PER_15_MIN"` // defaults to HOURLY
	EffectiveFrom string `json:"effective_from" binding:"required"`                  // YYYY-MM-DD
	Description   string `json:"description"`
}

type RateCardResponse struct {
	ID            string  `json:"id"`
	PayerID       *string `json:"payer_id"`
	PayerName     string  `json:"payer_name,omitempty"`
	ServiceType   string  `json:"service_type"`
	Rate          string  `json:"rate"`
	UnitType      string  `json:"unit_type"`
	EffectiveFrom string  `json:"effective_from"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"created_at"`
}

// ResolvedRate is the billable unit rate picked for a client/service-type
// pair on a given date.
type ResolvedRate struct {
	Rate       decimal.Decimal
	UnitType   string
	RateCardID uuid.UUID
}

// HourlyRate normalizes the resolved rate to an hourly-equivalent figure so
// line-item amounts are always hours × rate regardless of the unit type a
// payer contracts in (a PER_15_MIN rate bills four units per hour).
func (r ResolvedRate) HourlyRate() decimal.Decimal {
	if r.UnitType == model.UnitPer15Min {
		return r.Rate.Mul(decimal.NewFromInt(4))
	}
	return r.Rate
}

// --- Interface ---

type RateService interface {
	ResolveRate(ctx context.Context, client *model.Client, serviceType string, asOf caldate.Date) (ResolvedRate, error)
	CreateRateCard(ctx context.Context, req CreateRateCardRequest, userID string) (RateCardResponse, error)
	ListRateCards(ctx context.Context, payerID, serviceType string, page, limit int) ([]RateCardResponse, int64, error)
	DeleteRateCard(ctx context.Context, id string, userID string) error
}

type rateService struct {
	rateRepo  repository.RateCardRepository
	auditRepo repository.AuditRepository
}

func NewRateService(rateRepo repository.RateCardRepository, auditRepo repository.AuditRepository) RateService {
	return &rateService{rateRepo: rateRepo, auditRepo: auditRepo}
}

// --- Implementation ---

// ResolveRate looks up the billable rate for a client. Lookup order: the
// assigned payer's rate card for the service type (latest effective entry
// not after asOf), then the private-pay default for the service type. A
// client with no match at either level gets ErrRateNotFound; the manual
// entry flow may override this resolution with an operator-supplied rate.
func (s *rateService) ResolveRate(ctx context.Context, client *model.Client, serviceType string, asOf caldate.Date) (ResolvedRate, error) {
	if client.PayerID != nil {
		rate, err := s.rateRepo.FindEffective(ctx, client.PayerID, serviceType, asOf.Time())
		if err == nil {
			return ResolvedRate{Rate: rate.Rate, UnitType: rate.UnitType, RateCardID: rate.ID}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolvedRate{}, fmt.Errorf("failed to look up payer rate: %w", err)
		}
	}

	rate, err := s.rateRepo.FindEffective(ctx, nil, serviceType, asOf.Time())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolvedRate{}, fmt.Errorf("%w for service type %s", ErrRateNotFound, serviceType)
		}
		return ResolvedRate{}, fmt.Errorf("failed to look up default rate: %w", err)
	}
	return ResolvedRate{Rate: rate.Rate, UnitType: rate.UnitType, RateCardID: rate.ID}, nil
}

func (s *rateService) CreateRateCard(ctx context.Context, req CreateRateCardRequest, userID string) (RateCardResponse, error) {
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return RateCardResponse{}, fmt.Errorf("%w: invalid rate: %s", ErrValidation, req.Rate)
	}
	if !rate.IsPositive() {
		return RateCardResponse{}, fmt.Errorf("%w: rate must be positive", ErrValidation)
	}

	effectiveFrom, err := caldate.Parse(req.EffectiveFrom)
	if err != nil {
		return RateCardResponse{}, err
	}

	var payerID *uuid.UUID
	if req.PayerID != "" {
		parsed, parseErr := uuid.Parse(req.PayerID)
		if parseErr != nil {
			return RateCardResponse{}, fmt.Errorf("%w: invalid payer_id", ErrValidation)
		}
		payerID = &parsed
	}

	unitType := req.UnitType
	if unitType == "" {
		unitType = model.UnitHourly
	}

	// Reject an exact duplicate of (payer, service type, effective date);
	// rate changes are expressed as new entries with later effective dates.
	dupes, err := s.rateRepo.CountDuplicate(ctx, payerID, req.ServiceType, effectiveFrom.Time())
	if err != nil {
		return RateCardResponse{}, fmt.Errorf("failed to check for duplicate rate: %w", err)
	}
	if dupes > 0 {
		return RateCardResponse{}, fmt.Errorf("%w: a rate for this payer/service type already starts on %s", ErrValidation, effectiveFrom)
	}

	card := model.RateCard{
		PayerID:       payerID,
		ServiceType:   req.ServiceType,
		Rate:          rate,
		UnitType:      unitType,
		EffectiveFrom: effectiveFrom.Time(),
		Description:   req.Description,
	}

	if err := s.rateRepo.Create(ctx, &card); err != nil {
		return RateCardResponse{}, fmt.Errorf("failed to create rate card: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCreateRateCard, card.ID.String(), req.ServiceType+" "+rate.StringFixed(2), req)

	return toRateCardResponse(card), nil
}

func (s *rateService) ListRateCards(ctx context.Context, payerID, serviceType string, page, limit int) ([]RateCardResponse, int64, error) {
	cards, total, err := s.rateRepo.List(ctx, payerID, serviceType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rate cards: %w", err)
	}

	res := make([]RateCardResponse, 0, len(cards))
	for _, c := range cards {
		res = append(res, toRateCardResponse(c))
	}
	return res, total, nil
}

func (s *rateService) DeleteRateCard(ctx context.Context, id string, userID string) error {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid rate card id", ErrValidation)
	}

	card, err := s.rateRepo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: rate card %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch rate card: %w", err)
	}

	if err := s.rateRepo.Delete(ctx, cardID); err != nil {
		return fmt.Errorf("failed to delete rate card: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionDeleteRateCard, id, card.ServiceType, nil)
	return nil
}

// --- Helpers ---

func toRateCardResponse(card model.RateCard) RateCardResponse {
	resp := RateCardResponse{
		ID:            card.ID.String(),
		ServiceType:   card.ServiceType,
		Rate:          card.Rate.StringFixed(2),
		UnitType:      card.UnitType,
		EffectiveFrom: card.EffectiveFrom.Format("2006-01-02"),
		Description:   card.Description,
		CreatedAt:     card.CreatedAt.Format(time.RFC3339),
	}
	if card.PayerID != nil {
		id := card.PayerID.String()
		resp.PayerID = &id
	}
	if card.Payer != nil {
		resp.PayerName = card.Payer.Name
	}
	return resp
}
