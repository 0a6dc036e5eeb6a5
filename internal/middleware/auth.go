package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/models"
)

// ActorKey is the gin context key holding the resolved models.Actor.
const ActorKey = "actor"

// authTimingFloor is the minimum response time for failed auth to prevent
// timing oracles distinguishing valid from invalid session tokens.
const authTimingFloor = 50 * time.Millisecond

// ActorLookup resolves a session token to the acting identity.
type ActorLookup interface {
	ResolveActor(ctx context.Context, token string) (models.Actor, error)
}

// truncateToken returns at most the first 4 characters of token followed by "...".
func truncateToken(token string) string {
	if len(token) > 4 {
		return token[:4] + "..."
	}
	return token
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware returns Gin middleware that resolves the actor from the
// Bearer session token. The actor (id, role, workspace) comes entirely from
// server-side session state; nothing identity-bearing is read from the
// request body.
func AuthMiddleware(lookup ActorLookup, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "not_authenticated", "missing or invalid authorization header")
			return
		}

		actor, err := lookup.ResolveActor(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNoMembership):
				respondError(c, http.StatusForbidden, "no_membership", "no active role in workspace")
			case errors.Is(err, models.ErrNotAuthenticated):
				logAuthFailure(log, c, token)
				respondError(c, http.StatusUnauthorized, "not_authenticated", "invalid or expired session")
			default:
				log.WithError(err).Error("actor resolution failed")
				respondError(c, http.StatusInternalServerError, "internal_error", "failed to resolve session")
			}
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// ExtractBearerToken extracts the session token from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, token string) {
	log.WithFields(logrus.Fields{
		"client_ip":    c.ClientIP(),
		"method":       c.Request.Method,
		"path":         c.Request.URL.Path,
		"user_agent":   c.Request.UserAgent(),
		"request_id":   c.GetString(RequestIDKey),
		"token_prefix": truncateToken(token),
	}).Warn("authentication failed: invalid session token")
}
