package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adlytics/govern/internal/models"
)

const snapshotColumns = `id, workspace_id, platform, dataset, ingestion_log_id,
	is_active, promoted_at, promoted_by, rolled_back_at, rollback_reason, created_at`

// SnapshotStore owns the production_snapshots table and the two transactions
// that flip production truth: promote and rollback. The at-most-one-active
// invariant is carried by the partial unique index plus an optimistic
// "deactivate exactly the row I read" check; a concurrent writer loses with
// ErrConcurrentFlip.
type SnapshotStore struct {
	Base
}

// NewSnapshotStore creates a SnapshotStore.
func NewSnapshotStore(base Base) *SnapshotStore {
	return &SnapshotStore{Base: base}
}

// scanSnapshot scans one snapshot row.
func scanSnapshot(scan func(...any) error) (*models.ProductionSnapshot, error) {
	var s models.ProductionSnapshot
	var reason *string

	err := scan(&s.ID, &s.WorkspaceID, &s.Platform, &s.Dataset, &s.IngestionLogID,
		&s.IsActive, &s.PromotedAt, &s.PromotedBy, &s.RolledBackAt, &reason, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if reason != nil {
		s.RollbackReason = *reason
	}

	return &s, nil
}

// isUniqueViolation reports a 23505 on any constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Promote atomically creates the new active snapshot for the log's key:
// the source log is locked and re-checked, any current active snapshot for
// the same (workspace, platform, dataset) key is flipped off, the new row is
// inserted active, and the log is frozen. One transaction, commit or nothing.
func (s *SnapshotStore) Promote(ctx context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("promoting snapshot: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Lock the log so two promotions of the same log serialize; the frozen
	// flag is what makes promotion one-shot, so it must be read under lock.
	var log models.IngestionLog

	err = tx.QueryRow(ctx, `
		SELECT id, workspace_id, platform, dataset, status, valid_rows, frozen, created_at
		FROM ingestion_logs
		WHERE id = $1 AND workspace_id = $2
		FOR UPDATE`,
		logID, actor.WorkspaceID,
	).Scan(&log.ID, &log.WorkspaceID, &log.Platform, &log.Dataset,
		&log.Status, &log.ValidRows, &log.Frozen, &log.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrIngestionLogNotFound
		}

		return nil, fmt.Errorf("locking ingestion log: %w", err)
	}

	if err := log.Promotable(); err != nil {
		return nil, err
	}

	// Flip the current active snapshot (if any) off. RowsAffected is 0 or 1
	// by the partial unique index.
	_, err = tx.Exec(ctx, `
		UPDATE production_snapshots
		SET is_active = FALSE
		WHERE workspace_id = $1 AND platform = $2 AND dataset = $3 AND is_active`,
		actor.WorkspaceID, log.Platform, log.Dataset,
	)
	if err != nil {
		return nil, fmt.Errorf("deactivating prior snapshot: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO production_snapshots
			(workspace_id, platform, dataset, ingestion_log_id, is_active, promoted_at, promoted_by)
		VALUES ($1, $2, $3, $4, TRUE, now(), $5)
		RETURNING `+snapshotColumns,
		actor.WorkspaceID, log.Platform, log.Dataset, log.ID, actor.ID,
	)

	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConcurrentFlip
		}

		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE ingestion_logs SET frozen = TRUE WHERE id = $1", log.ID,
	); err != nil {
		return nil, fmt.Errorf("freezing ingestion log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConcurrentFlip
		}

		return nil, fmt.Errorf("committing promote: %w", err)
	}

	s.notify("production.change", actor.WorkspaceID, map[string]any{
		"op":          "promote",
		"snapshot_id": snap.ID,
		"platform":    snap.Platform,
		"dataset":     snap.Dataset,
	})

	return snap, nil
}

// Rollback atomically reactivates an inactive snapshot: the target is locked
// and validated (exists, same workspace, currently inactive), whatever is
// active for the key is flipped off with an optimistic check, and the target
// is flipped on. Returns the previously active snapshot id for audit metadata.
func (s *SnapshotStore) Rollback(ctx context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("rolling back snapshot: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Fetched by bare id so a cross-workspace target reads as Forbidden,
	// not NotFound. This relies on the service connecting as the table
	// owner, which plain ENABLE ROW LEVEL SECURITY does not filter; under a
	// non-owner role the policy hides the row and the error degrades to
	// NotFound, which still denies the operation.
	row := tx.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM production_snapshots
		WHERE id = $1
		FOR UPDATE`,
		snapshotID,
	)

	target, err := scanSnapshot(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("locking rollback target: %w", err)
	}

	if target.WorkspaceID != actor.WorkspaceID {
		return nil, models.ErrWorkspaceMismatch
	}

	if target.IsActive {
		return nil, models.ErrSnapshotAlreadyActive
	}

	// Read the currently active snapshot for the key, locked.
	var previousID string

	err = tx.QueryRow(ctx, `
		SELECT id FROM production_snapshots
		WHERE workspace_id = $1 AND platform = $2 AND dataset = $3 AND is_active
		FOR UPDATE`,
		actor.WorkspaceID, target.Platform, target.Dataset,
	).Scan(&previousID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reading active snapshot: %w", err)
	}

	if previousID != "" {
		// Optimistic check: deactivate exactly the row read above. If a
		// concurrent flip got there first, abort this writer.
		tag, err := tx.Exec(ctx,
			"UPDATE production_snapshots SET is_active = FALSE WHERE id = $1 AND is_active",
			previousID,
		)
		if err != nil {
			return nil, fmt.Errorf("deactivating previous snapshot: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return nil, models.ErrConcurrentFlip
		}
	}

	row = tx.QueryRow(ctx, `
		UPDATE production_snapshots
		SET is_active = TRUE, rolled_back_at = now(), rollback_reason = $2
		WHERE id = $1
		RETURNING `+snapshotColumns,
		target.ID, reason,
	)

	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConcurrentFlip
		}

		return nil, fmt.Errorf("activating rollback target: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConcurrentFlip
		}

		return nil, fmt.Errorf("committing rollback: %w", err)
	}

	s.notify("production.change", actor.WorkspaceID, map[string]any{
		"op":          "rollback",
		"snapshot_id": snap.ID,
		"previous_id": previousID,
		"platform":    snap.Platform,
		"dataset":     snap.Dataset,
	})

	return &models.RollbackResult{Snapshot: snap, PreviousSnapshotID: previousID}, nil
}

// GetSnapshot returns a snapshot by id within the given workspace.
func (s *SnapshotStore) GetSnapshot(ctx context.Context, workspaceID, snapshotID string) (*models.ProductionSnapshot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	row := tx.QueryRow(ctx,
		"SELECT "+snapshotColumns+" FROM production_snapshots WHERE id = $1 AND workspace_id = $2",
		snapshotID, workspaceID,
	)

	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	return snap, nil
}

// GetActiveSnapshot returns the single active snapshot for a key, or
// ErrSnapshotNotFound if the key has none.
func (s *SnapshotStore) GetActiveSnapshot(ctx context.Context, workspaceID, platform, dataset string) (*models.ProductionSnapshot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	row := tx.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM production_snapshots
		WHERE workspace_id = $1 AND platform = $2 AND dataset = $3 AND is_active`,
		workspaceID, platform, dataset,
	)

	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("scanning active snapshot: %w", err)
	}

	return snap, nil
}

// ListSnapshots returns the snapshot history for a workspace, optionally
// narrowed by platform/dataset, newest first. Returns a hasMore flag using
// the limit+1 pattern.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, workspaceID, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + snapshotColumns + " FROM production_snapshots WHERE workspace_id = $1"
	args := []any{workspaceID}

	if platform != "" {
		args = append(args, platform)
		query += fmt.Sprintf(" AND platform = $%d", len(args))
	}

	if dataset != "" {
		args = append(args, dataset)
		query += fmt.Sprintf(" AND dataset = $%d", len(args))
	}

	args = append(args, limit+1, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.ProductionSnapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, false, fmt.Errorf("scanning snapshot row: %w", err)
		}

		snaps = append(snaps, *snap)
	}

	// Next() returns false on mid-iteration failures too; without this check
	// a truncated page would read as a complete one.
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("reading snapshot rows: %w", err)
	}

	hasMore := len(snaps) > limit
	if hasMore {
		snaps = snaps[:limit]
	}

	return snaps, hasMore, nil
}
