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

type CreateClientRequest struct {
	FirstName          string `json:"first_name" binding:"required"`
	LastName           string `json:"last_name" binding:"required"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Email              string `json:"email" binding:"omitempty,email"`
	PayerID            string `json:"payer_id"` // empty = private pay
	DefaultServiceType string `json:"default_service_type" binding:"required,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"`
}

type UpdateClientRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Email              string `json:"email" binding:"omitempty,email"`
	PayerID            *string `json:"payer_id"` // nil = unchanged, "" = clear to private pay
	DefaultServiceType string `json:"default_service_type" binding:"omitempty,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"`
	CareStatus         string `json:"care_status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type ClientResponse struct {
	ID                 string  `json:"id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Address            string  `json:"address,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Email              string  `json:"email,omitempty"`
	PayerID            *string `json:"payer_id"`
	PayerName          string  `json:"payer_name,omitempty"`
	DefaultServiceType string  `json:"default_service_type"`
	CareStatus         string  `json:"care_status"`
	CreatedAt          string  `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*ClientResponse, error)
	GetClientByID(ctx context.Context, id string) (*ClientResponse, error)
	ListClients(ctx context.Context, filter repository.ClientListFilter) ([]ClientResponse, int64, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	payerRepo  repository.PayerRepository
}

func NewClientService(clientRepo repository.ClientRepository, payerRepo repository.PayerRepository) ClientService {
	return &clientService{clientRepo: clientRepo, payerRepo: payerRepo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client := model.Client{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Address:            req.Address,
		Phone:              req.Phone,
		Email:              req.Email,
		DefaultServiceType: req.DefaultServiceType,
		CareStatus:         model.CareStatusActive,
	}

	if req.PayerID != "" {
		payerID, err := s.resolvePayer(ctx, req.PayerID)
		if err != nil {
			return nil, err
		}
		client.PayerID = payerID
	}

	if err := s.clientRepo.Create(ctx, &client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return toClientResponse(&client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client id", ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	if req.FirstName != "" {
		client.FirstName = req.FirstName
	}
	if req.LastName != "" {
		client.LastName = req.LastName
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.DefaultServiceType != "" {
		client.DefaultServiceType = req.DefaultServiceType
	}
	if req.CareStatus != "" {
		client.CareStatus = req.CareStatus
	}
	if req.PayerID != nil {
		if *req.PayerID == "" {
			client.PayerID = nil
			client.Payer = nil
		} else {
			payerID, resolveErr := s.resolvePayer(ctx, *req.PayerID)
			if resolveErr != nil {
				return nil, resolveErr
			}
			client.PayerID = payerID
			client.Payer = nil
		}
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	updated, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return toClientResponse(updated), nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client id", ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) ListClients(ctx context.Context, filter repository.ClientListFilter) ([]ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		res = append(res, *toClientResponse(&clients[i]))
	}
	return res, total, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid client id", ErrValidation)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch client: %w", err)
	}
	return s.clientRepo.Delete(ctx, clientID)
}

// --- Helpers ---

func (s *clientService) resolvePayer(ctx context.Context, raw string) (*uuid.UUID, error) {
	payerID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payer_id", ErrValidation)
	}
	if _, err := s.payerRepo.FindByID(ctx, payerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payer %s", ErrNotFound, raw)
		}
		return nil, fmt.Errorf("failed to fetch payer: %w", err)
	}
	return &payerID, nil
}

func toClientResponse(client *model.Client) *ClientResponse {
	resp := &ClientResponse{
		ID:                 client.ID.String(),
		FirstName:          client.FirstName,
		LastName:           client.LastName,
		Address:            client.Address,
		Phone:              client.Phone,
		Email:              client.Email,
		DefaultServiceType: client.DefaultServiceType,
		CareStatus:         client.CareStatus,
		CreatedAt:          client.CreatedAt.Format(time.RFC3339),
	}
	if client.PayerID != nil {
		id := client.PayerID.String()
		resp.PayerID = &id
	}
	if client.Payer != nil {
		resp.PayerName = client.Payer.Name
	}
	return resp
}
