package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/httputil"
	"github.com/adlytics/govern/internal/metrics"
	"github.com/adlytics/govern/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternalError    = "internal_error"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeForbidden        = "forbidden"
	ErrCodeConflict         = "conflict"
	ErrCodeValidationError  = "validation_error"
	ErrCodeKillSwitch       = "kill_switch_active"
	ErrCodeAuditWriteFailed = "audit_write_failed"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondDomainError maps a domain error from the service layer to an HTTP
// response. Every error path of the governed operations funnels through here
// so the status mapping stays in one place.
func respondDomainError(c *gin.Context, log *logrus.Logger, err error) { //nolint:gocognit,cyclop // one switch over the whole error taxonomy.
	var (
		pd *models.PermissionDeniedError
		ks *models.KillSwitchActiveError
		fi *models.InjectedFailureError
		aw *models.AuditWriteError
	)

	switch {
	case errors.As(err, &pd):
		respondError(c, http.StatusForbidden, ErrCodePermissionDenied, pd.Error())

	case errors.As(err, &ks):
		// Temporary operational halt: 503 tells clients to retry later.
		respondError(c, http.StatusServiceUnavailable, ErrCodeKillSwitch, ks.Error())

	case errors.As(err, &fi):
		// Injected faults surface as a generic operational failure.
		// The distinction lives in metrics and logs, not the response.
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "operation failed")

	case errors.As(err, &aw):
		respondError(c, http.StatusInternalServerError, ErrCodeAuditWriteFailed,
			"mutation committed but audit write failed; contact an operator")

	case errors.Is(err, models.ErrSnapshotNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "snapshot not found")

	case errors.Is(err, models.ErrIngestionLogNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "ingestion log not found")

	case errors.Is(err, models.ErrWorkspaceMismatch):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, "entity belongs to a different workspace")

	case errors.Is(err, models.ErrLogFrozen),
		errors.Is(err, models.ErrLogFailed),
		errors.Is(err, models.ErrLogEmpty),
		errors.Is(err, models.ErrRollbackReasonRequired),
		errors.Is(err, models.ErrProbabilityRange),
		errors.Is(err, models.ErrInjectionIncomplete):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeValidationError, err.Error())

	case errors.Is(err, models.ErrSnapshotAlreadyActive),
		errors.Is(err, models.ErrConcurrentFlip):
		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())

	default:
		log.WithError(err).Error("unhandled domain error")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
