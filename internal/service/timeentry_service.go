package service

import (
	"context"
	"errors"
	"fmt"

	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/pkg/caldate"
	"carebill/pkg/timecalc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTimeEntryRequest struct {
	ClientID    string `json:"client_id" binding:"required"`
	CaregiverID string `json:"caregiver_id"`
	ServiceDate string `json:"service_date" binding:"required"` // YYYY-MM-DD
	StartTime   string `json:"start_time" binding:"required"`   // HH:MM
	EndTime     string `json:"end_time" binding:"required"`
	ServiceType string `json:"service_type" binding:"omitempty,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"` // defaults to client's
	Notes       string `json:"notes"`
}

type UpdateTimeEntryRequest struct {
	CaregiverID string `json:"caregiver_id"`
	ServiceDate string `json:"service_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ServiceType string `json:"service_type" binding:"omitempty,oneof=PERSONAL_CARE COMPANION_CARE SKILLED_NURSING RESPITE"`
	Notes       string `json:"notes"`
}

type CommitTimeEntryRequest struct {
	LockRate bool `json:"lock_rate"` // freeze today's resolved rate onto the entry
}

type TimeEntryResponse struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"client_id"`
	CaregiverID   *string `json:"caregiver_id"`
	CaregiverName string  `json:"caregiver_name,omitempty"`
	ServiceDate   string  `json:"service_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Hours         string  `json:"hours"`
	ServiceType   string  `json:"service_type"`
	Status        string  `json:"status"`
	LockedRate    *string `json:"locked_rate"`
	Billed        bool    `json:"billed"`
	InvoiceID     *string `json:"invoice_id"`
	Notes         string  `json:"notes,omitempty"`
}

// --- Interface ---

type TimeEntryService interface {
	CreateTimeEntry(ctx context.Context, req CreateTimeEntryRequest) (*TimeEntryResponse, error)
	UpdateTimeEntry(ctx context.Context, id string, req UpdateTimeEntryRequest) (*TimeEntryResponse, error)
	CommitTimeEntry(ctx context.Context, id string, req CommitTimeEntryRequest, userID string) (*TimeEntryResponse, error)
	GetTimeEntryByID(ctx context.Context, id string) (*TimeEntryResponse, error)
	ListTimeEntries(ctx context.Context, filter repository.TimeEntryListFilter) ([]TimeEntryResponse, int64, error)
}

type timeEntryService struct {
	entryRepo   repository.TimeEntryRepository
	clientRepo  repository.ClientRepository
	rateService RateService
	auditRepo   repository.AuditRepository
}

func NewTimeEntryService(
	entryRepo repository.TimeEntryRepository,
	clientRepo repository.ClientRepository,
	rateService RateService,
	auditRepo repository.AuditRepository,
) TimeEntryService {
	return &timeEntryService{
		entryRepo:   entryRepo,
		clientRepo:  clientRepo,
		rateService: rateService,
		auditRepo:   auditRepo,
	}
}

// --- Implementation ---

func (s *timeEntryService) CreateTimeEntry(ctx context.Context, req CreateTimeEntryRequest) (*TimeEntryResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client_id", ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	serviceDate, err := caldate.Parse(req.ServiceDate)
	if err != nil {
		return nil, err
	}
	// Validate the clock strings up front so bad shifts never sit in the
	// queue waiting to fail invoice generation.
	if _, err := timecalc.ComputeHours(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	serviceType := req.ServiceType
	if serviceType == "" {
		serviceType = client.DefaultServiceType
	}

	entry := model.TimeEntry{
		ClientID:    clientID,
		ServiceDate: serviceDate.Time(),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ServiceType: serviceType,
		Status:      model.EntryStatusDraft,
		Notes:       req.Notes,
	}
	if req.CaregiverID != "" {
		caregiverID, cgErr := uuid.Parse(req.CaregiverID)
		if cgErr != nil {
			return nil, fmt.Errorf("%w: invalid caregiver_id", ErrValidation)
		}
		entry.CaregiverID = &caregiverID
	}

	if err := s.entryRepo.Create(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	return toTimeEntryResponse(&entry), nil
}

func (s *timeEntryService) UpdateTimeEntry(ctx context.Context, id string, req UpdateTimeEntryRequest) (*TimeEntryResponse, error) {
	entry, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != model.EntryStatusDraft {
		return nil, fmt.Errorf("%w: committed time entries are immutable", ErrValidation)
	}

	if req.ServiceDate != "" {
		serviceDate, dateErr := caldate.Parse(req.ServiceDate)
		if dateErr != nil {
			return nil, dateErr
		}
		entry.ServiceDate = serviceDate.Time()
	}
	if req.StartTime != "" {
		entry.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		entry.EndTime = req.EndTime
	}
	if _, err := timecalc.ComputeHours(entry.StartTime, entry.EndTime); err != nil {
		return nil, err
	}
	if req.ServiceType != "" {
		entry.ServiceType = req.ServiceType
	}
	if req.Notes != "" {
		entry.Notes = req.Notes
	}
	if req.CaregiverID != "" {
		caregiverID, cgErr := uuid.Parse(req.CaregiverID)
		if cgErr != nil {
			return nil, fmt.Errorf("%w: invalid caregiver_id", ErrValidation)
		}
		entry.CaregiverID = &caregiverID
		entry.Caregiver = nil
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}
	return toTimeEntryResponse(entry), nil
}

// CommitTimeEntry moves a draft entry into the billable pool. With lock_rate
// the currently effective rate is frozen onto the entry so later rate-card
// changes cannot reprice already-approved work.
func (s *timeEntryService) CommitTimeEntry(ctx context.Context, id string, req CommitTimeEntryRequest, userID string) (*TimeEntryResponse, error) {
	entry, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == model.EntryStatusCommitted {
		return nil, fmt.Errorf("%w: time entry already committed", ErrValidation)
	}

	if req.LockRate {
		client, clientErr := s.clientRepo.FindByID(ctx, entry.ClientID)
		if clientErr != nil {
			return nil, fmt.Errorf("failed to fetch client: %w", clientErr)
		}
		resolved, rateErr := s.rateService.ResolveRate(ctx, client, entry.ServiceType, caldate.FromTime(entry.ServiceDate))
		if rateErr != nil {
			return nil, rateErr
		}
		hourly := resolved.HourlyRate()
		entry.LockedRate = &hourly
	}

	entry.Status = model.EntryStatusCommitted
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to commit time entry: %w", err)
	}

	writeAudit(ctx, s.auditRepo, userID, model.ActionCommitTimeEntry, entry.ID.String(), entry.ServiceType, req)
	return toTimeEntryResponse(entry), nil
}

func (s *timeEntryService) GetTimeEntryByID(ctx context.Context, id string) (*TimeEntryResponse, error) {
	entry, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimeEntryResponse(entry), nil
}

func (s *timeEntryService) ListTimeEntries(ctx context.Context, filter repository.TimeEntryListFilter) ([]TimeEntryResponse, int64, error) {
	entries, total, err := s.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch time entries: %w", err)
	}

	res := make([]TimeEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, *toTimeEntryResponse(&entries[i]))
	}
	return res, total, nil
}

// --- Helpers ---

func (s *timeEntryService) fetch(ctx context.Context, id string) (*model.TimeEntry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time entry id", ErrValidation)
	}
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: time entry %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch time entry: %w", err)
	}
	return entry, nil
}

func toTimeEntryResponse(entry *model.TimeEntry) *TimeEntryResponse {
	resp := &TimeEntryResponse{
		ID:          entry.ID.String(),
		ClientID:    entry.ClientID.String(),
		ServiceDate: caldate.FromTime(entry.ServiceDate).String(),
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		ServiceType: entry.ServiceType,
		Status:      entry.Status,
		Billed:      entry.Billed,
		Notes:       entry.Notes,
	}
	if hours, err := timecalc.ComputeHours(entry.StartTime, entry.EndTime); err == nil {
		resp.Hours = hours.StringFixed(2)
	}
	if entry.CaregiverID != nil {
		id := entry.CaregiverID.String()
		resp.CaregiverID = &id
	}
	if entry.Caregiver != nil {
		resp.CaregiverName = entry.Caregiver.FirstName + " " + entry.Caregiver.LastName
	}
	if entry.LockedRate != nil {
		rate := entry.LockedRate.StringFixed(2)
		resp.LockedRate = &rate
	}
	if entry.InvoiceID != nil {
		id := entry.InvoiceID.String()
		resp.InvoiceID = &id
	}
	return resp
}
