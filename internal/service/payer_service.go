package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carebill/internal/model"
	"carebill/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePayerRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=INSURANCE AGENCY VA OTHER"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	BillingNotes  string `json:"billing_notes"`
}

type UpdatePayerRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type" binding:"omitempty,oneof=INSURANCE AGENCY VA OTHER"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	BillingNotes  string `json:"billing_notes"`
	IsActive      *bool  `json:"is_active"`
}

type PayerResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	BillingNotes  string `json:"billing_notes,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type PayerService interface {
	CreatePayer(ctx context.Context, req CreatePayerRequest) (*PayerResponse, error)
	UpdatePayer(ctx context.Context, id string, req UpdatePayerRequest) (*PayerResponse, error)
	GetPayerByID(ctx context.Context, id string) (*PayerResponse, error)
	ListPayers(ctx context.Context, payerType, search string, page, limit int) ([]PayerResponse, int64, error)
	DeletePayer(ctx context.Context, id string) error
}

type payerService struct {
	repo repository.PayerRepository
}

func NewPayerService(repo repository.PayerRepository) PayerService {
	return &payerService{repo: repo}
}

// --- Implementation ---

func (s *payerService) CreatePayer(ctx context.Context, req CreatePayerRequest) (*PayerResponse, error) {
	payer := model.Payer{
		Name:          req.Name,
		Type:          req.Type,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		BillingNotes:  req.BillingNotes,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, &payer); err != nil {
		return nil, fmt.Errorf("failed to create payer: %w", err)
	}
	return toPayerResponse(&payer), nil
}

func (s *payerService) UpdatePayer(ctx context.Context, id string, req UpdatePayerRequest) (*PayerResponse, error) {
	payer, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		payer.Name = req.Name
	}
	if req.Type != "" {
		payer.Type = req.Type
	}
	if req.ContactPerson != "" {
		payer.ContactPerson = req.ContactPerson
	}
	if req.Phone != "" {
		payer.Phone = req.Phone
	}
	if req.Email != "" {
		payer.Email = req.Email
	}
	if req.BillingNotes != "" {
		payer.BillingNotes = req.BillingNotes
	}
	if req.IsActive != nil {
		payer.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, payer); err != nil {
		return nil, fmt.Errorf("failed to update payer: %w", err)
	}
	return toPayerResponse(payer), nil
}

func (s *payerService) GetPayerByID(ctx context.Context, id string) (*PayerResponse, error) {
	payer, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPayerResponse(payer), nil
}

func (s *payerService) ListPayers(ctx context.Context, payerType, search string, page, limit int) ([]PayerResponse, int64, error) {
	payers, total, err := s.repo.List(ctx, payerType, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payers: %w", err)
	}

	res := make([]PayerResponse, 0, len(payers))
	for i := range payers {
		res = append(res, *toPayerResponse(&payers[i]))
	}
	return res, total, nil
}

func (s *payerService) DeletePayer(ctx context.Context, id string) error {
	payer, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, payer.ID)
}

// --- Helpers ---

func (s *payerService) fetch(ctx context.Context, id string) (*model.Payer, error) {
	payerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payer id", ErrValidation)
	}
	payer, err := s.repo.FindByID(ctx, payerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payer %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch payer: %w", err)
	}
	return payer, nil
}

func toPayerResponse(payer *model.Payer) *PayerResponse {
	return &PayerResponse{
		ID:            payer.ID.String(),
		Name:          payer.Name,
		Type:          payer.Type,
		ContactPerson: payer.ContactPerson,
		Phone:         payer.Phone,
		Email:         payer.Email,
		BillingNotes:  payer.BillingNotes,
		IsActive:      payer.IsActive,
		CreatedAt:     payer.CreatedAt.Format(time.RFC3339),
	}
}
