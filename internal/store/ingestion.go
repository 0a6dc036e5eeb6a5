package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adlytics/govern/internal/models"
)

// IngestionStore reads the ingestion pipeline's output. Governance never
// writes ingestion logs except to freeze them during promotion, which
// happens inside SnapshotStore's transaction.
type IngestionStore struct {
	Base
}

// NewIngestionStore creates an IngestionStore.
func NewIngestionStore(base Base) *IngestionStore {
	return &IngestionStore{Base: base}
}

// GetIngestionLog returns an ingestion log by id within the workspace.
func (s *IngestionStore) GetIngestionLog(ctx context.Context, workspaceID, logID string) (*models.IngestionLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var log models.IngestionLog

	err = tx.QueryRow(ctx, `
		SELECT id, workspace_id, platform, dataset, status, valid_rows, frozen, created_at
		FROM ingestion_logs
		WHERE id = $1 AND workspace_id = $2`,
		logID, workspaceID,
	).Scan(&log.ID, &log.WorkspaceID, &log.Platform, &log.Dataset,
		&log.Status, &log.ValidRows, &log.Frozen, &log.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIngestionLogNotFound
		}

		return nil, fmt.Errorf("scanning ingestion log: %w", err)
	}

	return &log, nil
}
