package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/dbpool"
	"github.com/adlytics/govern/internal/middleware"
	"github.com/adlytics/govern/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Governance  GovernanceService
	Snapshots   SnapshotService
	Audit       AuditService
	Control     ControlService
	ActorLookup middleware.ActorLookup
	CORSOrigins []string
	Version     string
	RateLimit   int // requests per second per IP
	RateBurst   int // token bucket burst size
}

// maxBodySize bounds request bodies. Governance requests are tiny JSON
// documents; 1 MB leaves generous headroom.
const maxBodySize = 1 << 20

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, deps.RateLimit, deps.RateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version)
	governance := NewGovernanceHandler(deps.Governance, log)
	snapshots := NewSnapshotHandler(deps.Snapshots, log)
	audit := NewAuditHandler(deps.Audit, log)
	control := NewControlHandler(deps.Control, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require an authenticated actor. The cached
	// lookup also re-validates WebSocket sessions.
	cachedLookup := middleware.NewCachedActorLookup(ctx, deps.ActorLookup)
	api.Use(middleware.AuthMiddleware(cachedLookup, log))

	// Governed mutations.
	api.POST("/governance/promote", governance.Promote)
	api.POST("/governance/rollback", governance.Rollback)

	// Snapshot reads. The static active route takes priority over :id.
	api.GET("/snapshots", snapshots.List)
	api.GET("/snapshots/active", snapshots.GetActive)
	api.GET("/snapshots/:id", snapshots.Get)

	// Audit trail.
	api.GET("/audit", audit.Query)

	// Operator controls.
	api.GET("/controls/kill-switch", control.GetKillSwitch)
	api.PUT("/controls/kill-switch", control.SetKillSwitch)
	api.PUT("/controls/failure-injection", control.SetFailureInjection)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, cachedLookup))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
