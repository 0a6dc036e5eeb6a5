package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/models"
)

// ControlHandler serves the operator control endpoints: kill switch and
// failure injection. Writes are owner-gated in the service layer.
type ControlHandler struct {
	svc ControlService
	log *logrus.Logger
}

// NewControlHandler creates a ControlHandler.
func NewControlHandler(svc ControlService, log *logrus.Logger) *ControlHandler {
	return &ControlHandler{svc: svc, log: log}
}

type killSwitchRequest struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}

type failureInjectionRequest struct {
	Action      string  `json:"action"`
	FailureType string  `json:"failure_type"`
	Probability float64 `json:"probability"`
	Enabled     bool    `json:"enabled"`
}

// GetKillSwitch handles GET /api/v1/controls/kill-switch. The scope query
// parameter selects global or workspace state; workspace is the default.
func (h *ControlHandler) GetKillSwitch(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	scope := c.DefaultQuery("scope", models.ScopeWorkspace)
	if scope != models.ScopeGlobal && scope != models.ScopeWorkspace {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "scope must be global or workspace")

		return
	}

	state, err := h.svc.GetKillSwitch(c.Request.Context(), actor, scope)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, state)
}

// SetKillSwitch handles PUT /api/v1/controls/kill-switch. Only the actor's
// workspace scope is writable over HTTP.
func (h *ControlHandler) SetKillSwitch(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req killSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	state, err := h.svc.SetKillSwitch(c.Request.Context(), actor, req.Enabled, req.Reason)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, state)
}

// SetFailureInjection handles PUT /api/v1/controls/failure-injection.
func (h *ControlHandler) SetFailureInjection(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req failureInjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	cfg := models.FailureInjectionConfig{
		Action:      models.Action(req.Action),
		FailureType: req.FailureType,
		Probability: req.Probability,
		Enabled:     req.Enabled,
	}
	if err := cfg.Validate(); err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	out, err := h.svc.SetFailureInjection(c.Request.Context(), actor, cfg)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, out)
}
