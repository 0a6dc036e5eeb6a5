package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SnapshotHandler serves read-only snapshot endpoints for the dashboard.
type SnapshotHandler struct {
	svc SnapshotService
	log *logrus.Logger
}

// NewSnapshotHandler creates a SnapshotHandler.
func NewSnapshotHandler(svc SnapshotService, log *logrus.Logger) *SnapshotHandler {
	return &SnapshotHandler{svc: svc, log: log}
}

// List handles GET /api/v1/snapshots.
func (h *SnapshotHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	platform := c.Query("platform")
	dataset := c.Query("dataset")
	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	snapshots, hasMore, err := h.svc.List(c.Request.Context(), actor, platform, dataset, limit, offset)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "has_more": hasMore})
}

// Get handles GET /api/v1/snapshots/:id.
func (h *SnapshotHandler) Get(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	snapshotID := c.Param("id")
	if snapshotID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "id must not be empty")

		return
	}

	snap, err := h.svc.Get(c.Request.Context(), actor, snapshotID)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetActive handles GET /api/v1/snapshots/active. platform and dataset are
// required query parameters because the active pointer is per key.
func (h *SnapshotHandler) GetActive(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	platform := c.Query("platform")
	dataset := c.Query("dataset")
	if platform == "" || dataset == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "platform and dataset are required")

		return
	}

	snap, err := h.svc.GetActive(c.Request.Context(), actor, platform, dataset)
	if err != nil {
		respondDomainError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, snap)
}
