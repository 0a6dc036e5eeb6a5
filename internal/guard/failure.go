package guard

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/models"
)

// InjectionReader looks up the enabled failure-injection config for an
// (action, workspace) pair.
type InjectionReader interface {
	GetFailureInjection(ctx context.Context, workspaceID string, action models.Action) (*models.FailureInjectionConfig, error)
}

// Rand yields a value in [0, 1). Injected so probability-based faults are
// reproducible in tests; production wires math/rand/v2.Float64.
type Rand func() float64

// FailureInjection fires configured chaos-test faults. It runs after the
// kill-switch (a real outage must be reported as a real outage, not masked
// as an injected one) and before permission (chaos tests must not depend on
// the caller's role).
type FailureInjection struct {
	store InjectionReader
	rand  Rand
	log   *logrus.Logger
}

// NewFailureInjection creates the failure-injection guard.
func NewFailureInjection(store InjectionReader, random Rand, log *logrus.Logger) *FailureInjection {
	return &FailureInjection{store: store, rand: random, log: log}
}

// Name implements Guard.
func (g *FailureInjection) Name() string { return "failure_injection" }

// Check rolls against the configured probability and fails with
// InjectedFailureError when the fault fires.
func (g *FailureInjection) Check(ctx context.Context, actor models.Actor, action models.Action) error {
	cfg, err := g.store.GetFailureInjection(ctx, actor.WorkspaceID, action)
	if err != nil {
		return fmt.Errorf("reading failure injection config: %w", err)
	}

	if cfg == nil {
		return nil
	}

	if g.rand() < cfg.Probability {
		g.log.WithFields(logrus.Fields{
			"workspace_id": actor.WorkspaceID,
			"action":       action,
			"failure_type": cfg.FailureType,
		}).Warn("injected failure fired")

		return &models.InjectedFailureError{FailureType: cfg.FailureType}
	}

	return nil
}
