package models

import "time"

// Kill-switch scopes. Global state supersedes workspace state.
const (
	ScopeGlobal    = "global"
	ScopeWorkspace = "workspace"
)

// KillSwitchState is the operator-controlled halt flag. While enabled, every
// governed mutation in its scope is refused before any other check runs.
type KillSwitchState struct {
	Scope       string    `json:"scope"`
	WorkspaceID string    `json:"-"`
	Enabled     bool      `json:"enabled"`
	Reason      string    `json:"reason,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FailureInjectionConfig configures deliberate, probabilistic faults for
// chaos testing. Never consulted outside the failure-injection guard.
type FailureInjectionConfig struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"-"`
	Action      Action    `json:"action"`
	FailureType string    `json:"failure_type"`
	Probability float64   `json:"probability"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks config bounds before persisting.
func (c *FailureInjectionConfig) Validate() error {
	if c.Probability < 0 || c.Probability > 1 {
		return ErrProbabilityRange
	}
	if c.Action == "" || c.FailureType == "" {
		return ErrInjectionIncomplete
	}
	return nil
}
