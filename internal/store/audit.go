package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/adlytics/govern/internal/models"
)

// AuditStore provides append-only access to the audit_log table. There is
// deliberately no update or delete method.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// Record appends one audit entry.
func (s *AuditStore) Record(ctx context.Context, workspaceID string, rec models.AuditRecord) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var metadataJSON []byte
	if rec.Metadata != nil {
		metadataJSON, err = json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling audit metadata: %w", err)
		}
	}

	var reason *string
	if rec.Reason != "" {
		reason = &rec.Reason
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log
			(workspace_id, action, entity_type, entity_id, actor_id, actor_role, platform, dataset, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`,
		workspaceID, rec.Action, rec.EntityType, rec.EntityID,
		rec.Actor.ID, rec.Actor.Role, rec.Scope.Platform, rec.Scope.Dataset,
		reason, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return tx.Commit(ctx)
}

// buildAuditFilter builds WHERE conditions and args from AuditQueryOpts.
// workspace_id is always the first condition.
func buildAuditFilter(workspaceID string, opts models.AuditQueryOpts) (where string, args []any, nextArg int) {
	conditions := []string{"workspace_id = $1"}
	args = []any{workspaceID}
	argIdx := 2

	if opts.Action != "" {
		conditions = append(conditions, "action = $"+strconv.Itoa(argIdx))
		args = append(args, opts.Action)
		argIdx++
	}
	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = $"+strconv.Itoa(argIdx))
		args = append(args, opts.EntityType)
		argIdx++
	}
	if opts.EntityID != "" {
		conditions = append(conditions, "entity_id = $"+strconv.Itoa(argIdx))
		args = append(args, opts.EntityID)
		argIdx++
	}
	if opts.Since != nil {
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(argIdx))
		args = append(args, *opts.Since)
		argIdx++
	}

	return "WHERE " + strings.Join(conditions, " AND "), args, argIdx
}

// Query returns audit entries matching the given filters, newest first.
// Returns entries, a hasMore flag, and any error.
func (s *AuditStore) Query(ctx context.Context, workspaceID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	where, args, argIdx := buildAuditFilter(workspaceID, opts)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT id, workspace_id, action, entity_type, entity_id, actor_id, actor_role,
		       platform, dataset, reason, metadata, created_at
		FROM audit_log %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1,
	)
	args = append(args, limit+1, opts.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry

	for rows.Next() {
		var e models.AuditEntry
		var platform, dataset, reason *string
		var metadataJSON []byte

		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.Action, &e.EntityType, &e.EntityID,
			&e.ActorID, &e.ActorRole, &platform, &dataset, &reason, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scanning audit entry: %w", err)
		}

		if platform != nil {
			e.Scope.Platform = *platform
		}
		if dataset != nil {
			e.Scope.Dataset = *dataset
		}
		if reason != nil {
			e.Reason = *reason
		}
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				s.Log.WithError(err).Warn("failed to unmarshal audit metadata")
			}
		}

		entries = append(entries, e)
	}

	// Next() returns false on mid-iteration failures too; an unchecked error
	// here would pass off a truncated audit page as complete.
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("reading audit rows: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	return entries, hasMore, nil
}
