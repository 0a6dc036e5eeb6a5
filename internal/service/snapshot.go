package service

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// Snapshots serves the read-only snapshot surface that feeds the dashboard.
// Reads are gated on the Read action, which every membership role passes;
// the check still runs so an unknown role is refused.
type Snapshots struct {
	store SnapshotReader
}

// NewSnapshots creates the snapshot read service.
func NewSnapshots(store SnapshotReader) *Snapshots {
	return &Snapshots{store: store}
}

func requireRead(actor models.Actor) error {
	if !models.CanPerform(actor.Role, models.ActionRead) {
		return &models.PermissionDeniedError{Action: models.ActionRead, Role: actor.Role}
	}

	return nil
}

// Get returns one snapshot in the actor's workspace.
func (s *Snapshots) Get(ctx context.Context, actor models.Actor, snapshotID string) (*models.ProductionSnapshot, error) {
	if err := requireRead(actor); err != nil {
		return nil, err
	}

	return s.store.GetSnapshot(ctx, actor.WorkspaceID, snapshotID)
}

// GetActive returns the active snapshot for a key.
func (s *Snapshots) GetActive(ctx context.Context, actor models.Actor, platform, dataset string) (*models.ProductionSnapshot, error) {
	if err := requireRead(actor); err != nil {
		return nil, err
	}

	return s.store.GetActiveSnapshot(ctx, actor.WorkspaceID, platform, dataset)
}

// List returns the snapshot history for the actor's workspace.
func (s *Snapshots) List(ctx context.Context, actor models.Actor, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error) {
	if err := requireRead(actor); err != nil {
		return nil, false, err
	}

	return s.store.ListSnapshots(ctx, actor.WorkspaceID, platform, dataset, limit, offset)
}
