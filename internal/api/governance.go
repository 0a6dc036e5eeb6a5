package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GovernanceHandler serves the promote and rollback endpoints.
type GovernanceHandler struct {
	svc GovernanceService
	log *logrus.Logger
}

// NewGovernanceHandler creates a GovernanceHandler.
func NewGovernanceHandler(svc GovernanceService, log *logrus.Logger) *GovernanceHandler {
	return &GovernanceHandler{svc: svc, log: log}
}

type promoteRequest struct {
	IngestionLogID string `json:"ingestion_log_id"`
}

type rollbackRequest struct {
	SnapshotID string `json:"snapshot_id"`
	Reason     string `json:"reason"`
}

// Promote handles POST /api/v1/governance/promote.
func (h *GovernanceHandler) Promote(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if req.IngestionLogID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "ingestion_log_id is required")

		return
	}

	snap, err := h.svc.Promote(c.Request.Context(), actor, req.IngestionLogID)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"snapshot_id": snap.ID,
		"snapshot":    snap,
	})
}

// Rollback handles POST /api/v1/governance/rollback.
func (h *GovernanceHandler) Rollback(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req rollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if req.SnapshotID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "snapshot_id is required")

		return
	}

	res, err := h.svc.Rollback(c.Request.Context(), actor, req.SnapshotID, req.Reason)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_active_snapshot_id": res.Snapshot.ID,
		"previous_snapshot_id":   res.PreviousSnapshotID,
		"snapshot":               res.Snapshot,
	})
}
