// Package store provides focused, single-concern data access stores for the
// governance control plane.
//
// Each store owns one domain (snapshots, ingestion logs, audit, control
// state, sessions) and embeds shared helpers (Pool, logger) via the Base
// struct. Stores never import each other.
//
// Workspace isolation is enforced twice: every query filters on workspace_id
// explicitly, and every transaction sets app.workspace_id so the RLS
// policies apply when the service runs under a non-owner database role.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// setWorkspace sets the workspace context for RLS policies within a transaction.
func setWorkspace(ctx context.Context, tx pgx.Tx, workspaceID string) error {
	if _, err := uuid.Parse(workspaceID); err != nil {
		return fmt.Errorf("invalid workspace ID format: %w", err)
	}

	_, err := tx.Exec(ctx, "SELECT set_config('app.workspace_id', $1, true)", workspaceID)
	if err != nil {
		return fmt.Errorf("setting workspace context: %w", err)
	}

	return nil
}

// beginTx starts a read-write transaction and sets the workspace context.
func (b *Base) beginTx(ctx context.Context, workspaceID string) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	if err := setWorkspace(ctx, tx, workspaceID); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, err
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction and sets the workspace context.
func (b *Base) beginReadTx(ctx context.Context, workspaceID string) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	if err := setWorkspace(ctx, tx, workspaceID); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, err
	}

	return tx, nil
}

// notify sends a pg_notify on the govern_changes channel (best-effort,
// post-commit). The listener bridge fans these out to connected dashboards.
func (b *Base) notify(eventType, workspaceID string, fields map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload := map[string]any{
		"type":         eventType,
		"workspace_id": workspaceID,
	}
	for k, v := range fields {
		payload[k] = v
	}

	body, _ := json.Marshal(payload) //nolint:errcheck // static keys, cannot fail.
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify('govern_changes', $1)", string(body)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + eventType + " notification")
	}
}
