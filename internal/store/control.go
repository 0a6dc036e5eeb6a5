package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adlytics/govern/internal/models"
)

// ControlStore owns the kill_switch and failure_injection configuration
// tables. Both are small, read on every governed request, and written only
// by owner-gated admin operations.
type ControlStore struct {
	Base
}

// NewControlStore creates a ControlStore.
func NewControlStore(base Base) *ControlStore {
	return &ControlStore{Base: base}
}

// ActiveKillSwitch returns the enabled kill-switch state that applies to the
// workspace, checking global scope first. Returns nil when neither is enabled.
func (s *ControlStore) ActiveKillSwitch(ctx context.Context, workspaceID string) (*models.KillSwitchState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	// Global first: an operationally halted system refuses uniformly, so the
	// global row must win over any workspace row.
	rows, err := tx.Query(ctx, `
		SELECT scope, workspace_id, enabled, reason, updated_by, updated_at
		FROM kill_switch
		WHERE enabled AND (scope = 'global' OR workspace_id = $1)
		ORDER BY (scope = 'global') DESC
		LIMIT 1`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying kill switch: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	state, err := scanKillSwitch(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning kill switch: %w", err)
	}

	return state, nil
}

// GetKillSwitch returns the stored state for a scope regardless of enabled.
// workspaceID is ignored for the global scope.
func (s *ControlStore) GetKillSwitch(ctx context.Context, scope, workspaceID string) (*models.KillSwitchState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var row pgx.Row
	if scope == models.ScopeGlobal {
		row = tx.QueryRow(ctx, `
			SELECT scope, workspace_id, enabled, reason, updated_by, updated_at
			FROM kill_switch WHERE scope = 'global'`)
	} else {
		row = tx.QueryRow(ctx, `
			SELECT scope, workspace_id, enabled, reason, updated_by, updated_at
			FROM kill_switch WHERE scope = 'workspace' AND workspace_id = $1`,
			workspaceID)
	}

	state, err := scanKillSwitch(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absent workspace row means "not halted".
			return &models.KillSwitchState{Scope: scope, WorkspaceID: workspaceID}, nil
		}

		return nil, fmt.Errorf("scanning kill switch: %w", err)
	}

	return state, nil
}

// SetKillSwitch upserts the kill-switch row for a scope.
func (s *ControlStore) SetKillSwitch(ctx context.Context, workspaceID string, state models.KillSwitchState) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, workspaceID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if state.Scope == models.ScopeGlobal {
		_, err = tx.Exec(ctx, `
			UPDATE kill_switch
			SET enabled = $1, reason = NULLIF($2, ''), updated_by = $3, updated_at = now()
			WHERE scope = 'global'`,
			state.Enabled, state.Reason, state.UpdatedBy,
		)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO kill_switch (scope, workspace_id, enabled, reason, updated_by, updated_at)
			VALUES ('workspace', $1, $2, NULLIF($3, ''), $4, now())
			ON CONFLICT (scope, COALESCE(workspace_id, '00000000-0000-0000-0000-000000000000'::uuid))
			DO UPDATE SET enabled = EXCLUDED.enabled, reason = EXCLUDED.reason,
			              updated_by = EXCLUDED.updated_by, updated_at = now()`,
			workspaceID, state.Enabled, state.Reason, state.UpdatedBy,
		)
	}

	if err != nil {
		return fmt.Errorf("writing kill switch: %w", err)
	}

	return tx.Commit(ctx)
}

func scanKillSwitch(scan func(...any) error) (*models.KillSwitchState, error) {
	var state models.KillSwitchState
	var wsID, reason, updatedBy *string

	if err := scan(&state.Scope, &wsID, &state.Enabled, &reason, &updatedBy, &state.UpdatedAt); err != nil {
		return nil, err
	}

	if wsID != nil {
		state.WorkspaceID = *wsID
	}
	if reason != nil {
		state.Reason = *reason
	}
	if updatedBy != nil {
		state.UpdatedBy = *updatedBy
	}

	return &state, nil
}

// GetFailureInjection returns the enabled injection config for (workspace,
// action), or nil when none is configured.
func (s *ControlStore) GetFailureInjection(ctx context.Context, workspaceID string, action models.Action) (*models.FailureInjectionConfig, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var cfg models.FailureInjectionConfig

	err = tx.QueryRow(ctx, `
		SELECT id, workspace_id, action, failure_type, probability, enabled, created_at, updated_at
		FROM failure_injection
		WHERE workspace_id = $1 AND action = $2 AND enabled`,
		workspaceID, action,
	).Scan(&cfg.ID, &cfg.WorkspaceID, &cfg.Action, &cfg.FailureType,
		&cfg.Probability, &cfg.Enabled, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("scanning failure injection config: %w", err)
	}

	return &cfg, nil
}

// UpsertFailureInjection writes the injection config for (workspace, action).
func (s *ControlStore) UpsertFailureInjection(ctx context.Context, workspaceID string, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var out models.FailureInjectionConfig

	err = tx.QueryRow(ctx, `
		INSERT INTO failure_injection (workspace_id, action, failure_type, probability, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, action)
		DO UPDATE SET failure_type = EXCLUDED.failure_type, probability = EXCLUDED.probability,
		              enabled = EXCLUDED.enabled, updated_at = now()
		RETURNING id, workspace_id, action, failure_type, probability, enabled, created_at, updated_at`,
		workspaceID, cfg.Action, cfg.FailureType, cfg.Probability, cfg.Enabled,
	).Scan(&out.ID, &out.WorkspaceID, &out.Action, &out.FailureType,
		&out.Probability, &out.Enabled, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting failure injection config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing failure injection config: %w", err)
	}

	return &out, nil
}
