package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/adlytics/govern/internal/api"
	"github.com/adlytics/govern/internal/models"
)

func TestSetKillSwitch_OK(t *testing.T) {
	t.Parallel()

	svc := &mockControlSvc{
		setKillSwitchFn: func(_ context.Context, actor models.Actor, enabled bool, reason string) (*models.KillSwitchState, error) {
			return &models.KillSwitchState{
				Scope:       models.ScopeWorkspace,
				WorkspaceID: actor.WorkspaceID,
				Enabled:     enabled,
				Reason:      reason,
				UpdatedBy:   actor.ID,
			}, nil
		},
	}

	r := newTestRouter(models.RoleOwner)
	h := api.NewControlHandler(svc, testLogger())
	r.PUT("/controls/kill-switch", h.SetKillSwitch)

	w := doRequest(r, http.MethodPut, "/controls/kill-switch", `{"enabled":true,"reason":"incident 42"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var state models.KillSwitchState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !state.Enabled || state.Reason != "incident 42" {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestSetKillSwitch_Denied(t *testing.T) {
	t.Parallel()

	svc := &mockControlSvc{
		setKillSwitchFn: func(_ context.Context, _ models.Actor, _ bool, _ string) (*models.KillSwitchState, error) {
			return nil, &models.PermissionDeniedError{Action: models.ActionControl, Role: models.RoleAdmin}
		},
	}

	r := newTestRouter(models.RoleAdmin)
	h := api.NewControlHandler(svc, testLogger())
	r.PUT("/controls/kill-switch", h.SetKillSwitch)

	w := doRequest(r, http.MethodPut, "/controls/kill-switch", `{"enabled":true}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetKillSwitch_BadScope(t *testing.T) {
	t.Parallel()

	r := newTestRouter(models.RoleViewer)
	h := api.NewControlHandler(&mockControlSvc{}, testLogger())
	r.GET("/controls/kill-switch", h.GetKillSwitch)

	w := doRequest(r, http.MethodGet, "/controls/kill-switch?scope=planet", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetFailureInjection_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"probability too high", `{"action":"promote","failure_type":"db_timeout","probability":1.5}`, http.StatusUnprocessableEntity},
		{"missing failure type", `{"action":"promote","probability":0.5}`, http.StatusUnprocessableEntity},
		{"malformed body", `{"probability":"half"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(models.RoleOwner)
			h := api.NewControlHandler(&mockControlSvc{}, testLogger())
			r.PUT("/controls/failure-injection", h.SetFailureInjection)

			w := doRequest(r, http.MethodPut, "/controls/failure-injection", tt.body)

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestSetFailureInjection_OK(t *testing.T) {
	t.Parallel()

	svc := &mockControlSvc{
		setFailureInjectionFn: func(_ context.Context, _ models.Actor, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error) {
			out := cfg
			out.ID = "fi-1"
			return &out, nil
		},
	}

	r := newTestRouter(models.RoleOwner)
	h := api.NewControlHandler(svc, testLogger())
	r.PUT("/controls/failure-injection", h.SetFailureInjection)

	w := doRequest(r, http.MethodPut, "/controls/failure-injection",
		`{"action":"promote","failure_type":"db_timeout","probability":0.25,"enabled":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var cfg models.FailureInjectionConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if cfg.ID != "fi-1" || cfg.Probability != 0.25 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
