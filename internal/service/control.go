package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/metrics"
	"github.com/adlytics/govern/internal/models"
)

// Control serves the operator surface: kill-switch state and failure
// injection config. Mutations are owner-gated through the permission table
// directly rather than the guard chain, since an enabled kill switch must
// not block its own disable path. They carry the same
// audit-required-for-success policy as promote/rollback.
type Control struct {
	store ControlStore
	audit Auditor
	log   *logrus.Logger
}

// NewControl creates the control service.
func NewControl(store ControlStore, audit Auditor, log *logrus.Logger) *Control {
	return &Control{store: store, audit: audit, log: log}
}

func requireControl(actor models.Actor) error {
	if !models.CanPerform(actor.Role, models.ActionControl) {
		return &models.PermissionDeniedError{Action: models.ActionControl, Role: actor.Role}
	}

	return nil
}

// GetKillSwitch returns the stored kill-switch state for a scope.
func (s *Control) GetKillSwitch(ctx context.Context, actor models.Actor, scope string) (*models.KillSwitchState, error) {
	if err := requireRead(actor); err != nil {
		return nil, err
	}

	return s.store.GetKillSwitch(ctx, scope, actor.WorkspaceID)
}

// SetKillSwitch flips the halt flag for a scope and audits the change.
// Only the workspace scope is writable through the API; the global switch
// belongs to platform operations tooling.
func (s *Control) SetKillSwitch(ctx context.Context, actor models.Actor, enabled bool, reason string) (*models.KillSwitchState, error) {
	if err := requireControl(actor); err != nil {
		return nil, err
	}

	state := models.KillSwitchState{
		Scope:       models.ScopeWorkspace,
		WorkspaceID: actor.WorkspaceID,
		Enabled:     enabled,
		Reason:      reason,
		UpdatedBy:   actor.ID,
	}

	if err := s.store.SetKillSwitch(ctx, actor.WorkspaceID, state); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": actor.WorkspaceID,
		"enabled":      enabled,
		"actor_id":     actor.ID,
	}).Info("control.kill_switch")

	auditErr := s.audit.Record(ctx, actor.WorkspaceID, models.AuditRecord{
		Action:     models.AuditActionKillSwitchUpdate,
		EntityType: models.EntityKillSwitch,
		EntityID:   models.ScopeWorkspace,
		Actor:      actor,
		Reason:     reason,
		Metadata:   map[string]any{"enabled": enabled},
	})
	if auditErr != nil {
		metrics.AuditWriteFailuresTotal.Inc()

		return nil, &models.AuditWriteError{
			Action: models.AuditActionKillSwitchUpdate, EntityID: models.ScopeWorkspace, Err: auditErr,
		}
	}

	return &state, nil
}

// SetFailureInjection writes the chaos config for (workspace, action) and
// audits the change.
func (s *Control) SetFailureInjection(ctx context.Context, actor models.Actor, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error) {
	if err := requireControl(actor); err != nil {
		return nil, err
	}

	out, err := s.store.UpsertFailureInjection(ctx, actor.WorkspaceID, cfg)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": actor.WorkspaceID,
		"action":       cfg.Action,
		"failure_type": cfg.FailureType,
		"probability":  cfg.Probability,
		"enabled":      cfg.Enabled,
	}).Info("control.failure_injection")

	auditErr := s.audit.Record(ctx, actor.WorkspaceID, models.AuditRecord{
		Action:     models.AuditActionFailureInjectionSet,
		EntityType: models.EntityFailureInjection,
		EntityID:   out.ID,
		Actor:      actor,
		Metadata: map[string]any{
			"action":       string(cfg.Action),
			"failure_type": cfg.FailureType,
			"probability":  cfg.Probability,
			"enabled":      cfg.Enabled,
		},
	})
	if auditErr != nil {
		metrics.AuditWriteFailuresTotal.Inc()

		return out, &models.AuditWriteError{
			Action: models.AuditActionFailureInjectionSet, EntityID: out.ID, Err: auditErr,
		}
	}

	return out, nil
}
