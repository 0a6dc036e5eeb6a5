package guard

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// DenialRecorder records a denied attempt, best-effort, so permission
// probing is itself observable.
type DenialRecorder interface {
	RecordDenial(actor models.Actor, action models.Action)
}

// Permission enforces the role-to-minimum-role table. It runs last in the
// chain so that neither halts nor chaos faults depend on who is calling.
type Permission struct {
	denials DenialRecorder // optional
}

// NewPermission creates the permission guard. denials may be nil.
func NewPermission(denials DenialRecorder) *Permission {
	return &Permission{denials: denials}
}

// Name implements Guard.
func (g *Permission) Name() string { return "permission" }

// Check fails with PermissionDeniedError when the actor's role is below the
// action's minimum. Denials are recorded asynchronously when a recorder is
// configured; the denial itself never depends on that write.
func (g *Permission) Check(_ context.Context, actor models.Actor, action models.Action) error {
	if models.CanPerform(actor.Role, action) {
		return nil
	}

	if g.denials != nil {
		g.denials.RecordDenial(actor, action)
	}

	return &models.PermissionDeniedError{Action: action, Role: actor.Role}
}
