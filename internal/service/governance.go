package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/metrics"
	"github.com/adlytics/govern/internal/models"
)

// Governance is the orchestrator for the two governed mutations. Each
// request moves through a fixed sequence (guard chain, target validation,
// atomic mutation, synchronous audit write) and either completes fully or
// terminates with a typed error naming the stage that rejected it.
type Governance struct {
	snapshots SnapshotMutator
	ingestion IngestionReader
	audit     Auditor
	chain     GuardChain
	log       *logrus.Logger
}

// NewGovernance creates the governance orchestrator.
func NewGovernance(snapshots SnapshotMutator, ingestion IngestionReader, audit Auditor, chain GuardChain, log *logrus.Logger) *Governance {
	return &Governance{
		snapshots: snapshots,
		ingestion: ingestion,
		audit:     audit,
		chain:     chain,
		log:       log,
	}
}

// guardName maps a guard rejection to its metric label, or "" for
// non-guard errors.
func guardName(err error) string {
	var (
		ks  *models.KillSwitchActiveError
		inj *models.InjectedFailureError
		pd  *models.PermissionDeniedError
	)

	switch {
	case errors.As(err, &ks):
		return "kill_switch"
	case errors.As(err, &inj):
		return "failure_injection"
	case errors.As(err, &pd):
		return "permission"
	}

	return ""
}

// observe records the operation outcome metrics.
func observe(action models.Action, err error) {
	outcome := "success"

	switch {
	case err == nil:
	case guardName(err) != "":
		outcome = "rejected"
		metrics.GuardRejectionsTotal.WithLabelValues(guardName(err)).Inc()
	default:
		outcome = "failed"

		var aw *models.AuditWriteError
		if errors.As(err, &aw) {
			outcome = "audit_failed"
		}
	}

	metrics.GovernedOpsTotal.WithLabelValues(string(action), outcome).Inc()
}

// Promote turns a validated ingestion log into the new active snapshot for
// its key. The returned snapshot is non-nil alongside an AuditWriteError:
// in that one failure mode the mutation has already taken effect.
func (g *Governance) Promote(ctx context.Context, actor models.Actor, logID string) (snap *models.ProductionSnapshot, err error) {
	defer func() { observe(models.ActionPromote, err) }()

	if err = g.chain.Check(ctx, actor, models.ActionPromote); err != nil {
		return nil, err
	}

	// Target validation before the transaction; the store re-checks the
	// frozen flag under lock, so this is a fast-fail, not the enforcement.
	log, err := g.ingestion.GetIngestionLog(ctx, actor.WorkspaceID, logID)
	if err != nil {
		return nil, err
	}

	if err = log.Promotable(); err != nil {
		return nil, err
	}

	snap, err = g.snapshots.Promote(ctx, actor, logID)
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"workspace_id": actor.WorkspaceID,
		"snapshot_id":  snap.ID,
		"platform":     snap.Platform,
		"dataset":      snap.Dataset,
		"actor_id":     actor.ID,
	}).Info("governance.promote")

	// The audit record is required for success. If it fails, the committed
	// mutation stands, but the operation is reported as failed so operators
	// investigate.
	auditErr := g.audit.Record(ctx, actor.WorkspaceID, models.AuditRecord{
		Action:     models.AuditActionPromote,
		EntityType: models.EntitySnapshot,
		EntityID:   snap.ID,
		Actor:      actor,
		Scope:      models.AuditScope{Platform: snap.Platform, Dataset: snap.Dataset},
		Metadata: map[string]any{
			"ingestion_log_id": log.ID,
			"valid_rows":       log.ValidRows,
		},
	})
	if auditErr != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		g.log.WithError(auditErr).WithField("snapshot_id", snap.ID).
			Error("promote committed but audit write failed")

		err = &models.AuditWriteError{Action: models.AuditActionPromote, EntityID: snap.ID, Err: auditErr}

		return snap, err
	}

	return snap, nil
}

// Rollback reactivates a previously inactive snapshot, deactivating
// whatever was active for its key. reason is mandatory. As with Promote,
// an AuditWriteError means the flip already committed.
func (g *Governance) Rollback(ctx context.Context, actor models.Actor, snapshotID, reason string) (res *models.RollbackResult, err error) {
	defer func() { observe(models.ActionRollback, err) }()

	if err = g.chain.Check(ctx, actor, models.ActionRollback); err != nil {
		return nil, err
	}

	if reason == "" {
		return nil, models.ErrRollbackReasonRequired
	}

	res, err = g.snapshots.Rollback(ctx, actor, snapshotID, reason)
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"workspace_id": actor.WorkspaceID,
		"snapshot_id":  res.Snapshot.ID,
		"previous_id":  res.PreviousSnapshotID,
		"reason":       reason,
		"actor_id":     actor.ID,
	}).Info("governance.rollback")

	auditErr := g.audit.Record(ctx, actor.WorkspaceID, models.AuditRecord{
		Action:     models.AuditActionRollback,
		EntityType: models.EntitySnapshot,
		EntityID:   res.Snapshot.ID,
		Actor:      actor,
		Scope:      models.AuditScope{Platform: res.Snapshot.Platform, Dataset: res.Snapshot.Dataset},
		Reason:     reason,
		Metadata: map[string]any{
			"previous_snapshot_id": res.PreviousSnapshotID,
		},
	})
	if auditErr != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		g.log.WithError(auditErr).WithField("snapshot_id", res.Snapshot.ID).
			Error("rollback committed but audit write failed")

		err = &models.AuditWriteError{Action: models.AuditActionRollback, EntityID: res.Snapshot.ID, Err: auditErr}

		return res, err
	}

	return res, nil
}
