package service

import (
	"context"
	"encoding/json"

	"carebill/internal/model"
	"carebill/internal/repository"

	"github.com/google/uuid"
)

// writeAudit records who did what to which entity. Audit write failures are
// swallowed so they never fail the business operation itself.
func writeAudit(ctx context.Context, repo repository.AuditRepository, userID, action, entityID, entityName string, payload interface{}) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		entry.UserID = &parsed
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			entry.Details = string(raw)
		}
	}
	_ = repo.Log(ctx, &entry)
}
