package client

import (
	"context"
	"net/url"
)

// ControlService manages the operator surface: kill switch and failure
// injection. Writes require the owner role.
type ControlService struct {
	c *Client
}

type killSwitchRequest struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

type failureInjectionRequest struct {
	Action      string  `json:"action"`
	FailureType string  `json:"failure_type"`
	Probability float64 `json:"probability"`
	Enabled     bool    `json:"enabled"`
}

// GetKillSwitch returns the kill-switch state for the given scope
// ("global" or "workspace").
func (s *ControlService) GetKillSwitch(ctx context.Context, scope string) (*KillSwitchState, error) {
	params := url.Values{}
	if scope != "" {
		params.Set("scope", scope)
	}
	var state KillSwitchState
	if err := s.c.get(ctx, "/api/v1/controls/kill-switch", params, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SetKillSwitch flips the workspace kill switch.
func (s *ControlService) SetKillSwitch(ctx context.Context, enabled bool, reason string) (*KillSwitchState, error) {
	var state KillSwitchState
	if err := s.c.put(ctx, "/api/v1/controls/kill-switch", killSwitchRequest{Enabled: enabled, Reason: reason}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SetFailureInjection writes the chaos-test fault config for one action.
func (s *ControlService) SetFailureInjection(ctx context.Context, action, failureType string, probability float64, enabled bool) (*FailureInjection, error) {
	req := failureInjectionRequest{
		Action:      action,
		FailureType: failureType,
		Probability: probability,
		Enabled:     enabled,
	}
	var out FailureInjection
	if err := s.c.put(ctx, "/api/v1/controls/failure-injection", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
