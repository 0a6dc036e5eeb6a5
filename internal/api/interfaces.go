package api

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// GovernanceService executes the governed mutations. Implemented by
// service.Governance.
type GovernanceService interface {
	Promote(ctx context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error)
	Rollback(ctx context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error)
}

// SnapshotService serves snapshot reads. Implemented by service.Snapshots.
type SnapshotService interface {
	Get(ctx context.Context, actor models.Actor, snapshotID string) (*models.ProductionSnapshot, error)
	GetActive(ctx context.Context, actor models.Actor, platform, dataset string) (*models.ProductionSnapshot, error)
	List(ctx context.Context, actor models.Actor, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error)
}

// AuditService serves audit trail reads. Implemented by service.Audit.
type AuditService interface {
	Query(ctx context.Context, actor models.Actor, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// ControlService is the operator surface. Implemented by service.Control.
type ControlService interface {
	GetKillSwitch(ctx context.Context, actor models.Actor, scope string) (*models.KillSwitchState, error)
	SetKillSwitch(ctx context.Context, actor models.Actor, enabled bool, reason string) (*models.KillSwitchState, error)
	SetFailureInjection(ctx context.Context, actor models.Actor, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error)
}
