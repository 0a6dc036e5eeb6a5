// Package service composes the stores and the guard chain into the
// governed operations the API exposes.
package service

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// Auditor appends audit entries. Implemented by store.AuditStore.
type Auditor interface {
	Record(ctx context.Context, workspaceID string, rec models.AuditRecord) error
}

// GuardChain evaluates the ordered safety checks for a governed action.
type GuardChain interface {
	Check(ctx context.Context, actor models.Actor, action models.Action) error
}

// SnapshotMutator is the transactional snapshot surface the orchestrator
// mutates through. Implemented by store.SnapshotStore.
type SnapshotMutator interface {
	Promote(ctx context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error)
	Rollback(ctx context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error)
}

// SnapshotReader is the read-only snapshot surface.
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, workspaceID, snapshotID string) (*models.ProductionSnapshot, error)
	GetActiveSnapshot(ctx context.Context, workspaceID, platform, dataset string) (*models.ProductionSnapshot, error)
	ListSnapshots(ctx context.Context, workspaceID, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error)
}

// IngestionReader reads ingestion logs. Implemented by store.IngestionStore.
type IngestionReader interface {
	GetIngestionLog(ctx context.Context, workspaceID, logID string) (*models.IngestionLog, error)
}

// AuditReader queries the audit trail. Implemented by store.AuditStore.
type AuditReader interface {
	Query(ctx context.Context, workspaceID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// ControlStore is the kill-switch / failure-injection admin surface.
// Implemented by store.ControlStore.
type ControlStore interface {
	GetKillSwitch(ctx context.Context, scope, workspaceID string) (*models.KillSwitchState, error)
	SetKillSwitch(ctx context.Context, workspaceID string, state models.KillSwitchState) error
	UpsertFailureInjection(ctx context.Context, workspaceID string, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error)
}
