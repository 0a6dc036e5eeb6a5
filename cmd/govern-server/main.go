// Command govern-server runs the production governance control plane:
// promote/rollback of production snapshots, the ordered guard chain, and the
// append-only audit trail behind the marketing dashboard.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/api"
	"github.com/adlytics/govern/internal/config"
	"github.com/adlytics/govern/internal/db"
	"github.com/adlytics/govern/internal/db/migrations"
	"github.com/adlytics/govern/internal/dbpool"
	"github.com/adlytics/govern/internal/guard"
	"github.com/adlytics/govern/internal/service"
	"github.com/adlytics/govern/internal/store"
	"github.com/adlytics/govern/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	snapshots := store.NewSnapshotStore(base)
	ingestion := store.NewIngestionStore(base)
	audit := store.NewAuditStore(base)
	controls := store.NewControlStore(base)
	sessions := store.NewSessionStore(base)

	// Best-effort audit writes (permission denials) go through a single
	// background worker; the writes that gate operation success stay
	// synchronous inside the services.
	auditWorker := service.NewAuditWorker(audit, log, cfg.AuditQueueSize)
	go auditWorker.Run(ctx)

	chain := guard.NewChain(
		guard.NewKillSwitch(controls),
		guard.NewFailureInjection(controls, rand.Float64, log),
		guard.NewPermission(auditWorker),
	)
	log.WithField("guards", chain.Names()).Info("guard chain assembled")

	governanceSvc := service.NewGovernance(snapshots, ingestion, audit, chain, log)
	snapshotSvc := service.NewSnapshots(snapshots)
	auditSvc := service.NewAudit(audit)
	controlSvc := service.NewControl(controls, audit, log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	bridge := db.NewNotifyBridge(log, pool, hub)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Governance:  governanceSvc,
		Snapshots:   snapshotSvc,
		Audit:       auditSvc,
		Control:     controlSvc,
		ActorLookup: sessions,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		RateLimit:   cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("govern-server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete")
	}

	hub.Shutdown()

	return nil
}
