package guard

import (
	"context"
	"fmt"

	"github.com/adlytics/govern/internal/models"
)

// KillSwitchReader reads the effective kill-switch state for a workspace.
type KillSwitchReader interface {
	ActiveKillSwitch(ctx context.Context, workspaceID string) (*models.KillSwitchState, error)
}

// KillSwitch refuses every governed action while an operator halt is in
// effect. It runs first in the chain: a blocked system must refuse uniformly
// for every caller, and a permission lookup during an incident is wasted work.
type KillSwitch struct {
	store KillSwitchReader
}

// NewKillSwitch creates the kill-switch guard.
func NewKillSwitch(store KillSwitchReader) *KillSwitch {
	return &KillSwitch{store: store}
}

// Name implements Guard.
func (g *KillSwitch) Name() string { return "kill_switch" }

// Check fails with KillSwitchActiveError when the global or workspace switch
// is enabled. Global state supersedes workspace state.
func (g *KillSwitch) Check(ctx context.Context, actor models.Actor, _ models.Action) error {
	state, err := g.store.ActiveKillSwitch(ctx, actor.WorkspaceID)
	if err != nil {
		return fmt.Errorf("reading kill switch: %w", err)
	}

	if state != nil {
		return &models.KillSwitchActiveError{Scope: state.Scope, Reason: state.Reason}
	}

	return nil
}
