package service

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// Audit serves read access to the audit trail.
type Audit struct {
	store AuditReader
}

// NewAudit creates the audit read service.
func NewAudit(store AuditReader) *Audit {
	return &Audit{store: store}
}

// Query returns audit entries for the actor's workspace matching the filters.
func (s *Audit) Query(ctx context.Context, actor models.Actor, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	if err := requireRead(actor); err != nil {
		return nil, false, err
	}

	return s.store.Query(ctx, actor.WorkspaceID, opts)
}
