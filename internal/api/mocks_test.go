package api_test

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

type mockGovernance struct {
	promoteFn  func(ctx context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error)
	rollbackFn func(ctx context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error)
}

func (m *mockGovernance) Promote(ctx context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error) {
	return m.promoteFn(ctx, actor, logID)
}

func (m *mockGovernance) Rollback(ctx context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error) {
	return m.rollbackFn(ctx, actor, snapshotID, reason)
}

type mockSnapshots struct {
	getFn       func(ctx context.Context, actor models.Actor, snapshotID string) (*models.ProductionSnapshot, error)
	getActiveFn func(ctx context.Context, actor models.Actor, platform, dataset string) (*models.ProductionSnapshot, error)
	listFn      func(ctx context.Context, actor models.Actor, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error)
}

func (m *mockSnapshots) Get(ctx context.Context, actor models.Actor, snapshotID string) (*models.ProductionSnapshot, error) {
	return m.getFn(ctx, actor, snapshotID)
}

func (m *mockSnapshots) GetActive(ctx context.Context, actor models.Actor, platform, dataset string) (*models.ProductionSnapshot, error) {
	return m.getActiveFn(ctx, actor, platform, dataset)
}

func (m *mockSnapshots) List(ctx context.Context, actor models.Actor, platform, dataset string, limit, offset int) ([]models.ProductionSnapshot, bool, error) {
	return m.listFn(ctx, actor, platform, dataset, limit, offset)
}

type mockAuditSvc struct {
	queryFn func(ctx context.Context, actor models.Actor, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

func (m *mockAuditSvc) Query(ctx context.Context, actor models.Actor, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return m.queryFn(ctx, actor, opts)
}

type mockControlSvc struct {
	getKillSwitchFn       func(ctx context.Context, actor models.Actor, scope string) (*models.KillSwitchState, error)
	setKillSwitchFn       func(ctx context.Context, actor models.Actor, enabled bool, reason string) (*models.KillSwitchState, error)
	setFailureInjectionFn func(ctx context.Context, actor models.Actor, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error)
}

func (m *mockControlSvc) GetKillSwitch(ctx context.Context, actor models.Actor, scope string) (*models.KillSwitchState, error) {
	return m.getKillSwitchFn(ctx, actor, scope)
}

func (m *mockControlSvc) SetKillSwitch(ctx context.Context, actor models.Actor, enabled bool, reason string) (*models.KillSwitchState, error) {
	return m.setKillSwitchFn(ctx, actor, enabled, reason)
}

func (m *mockControlSvc) SetFailureInjection(ctx context.Context, actor models.Actor, cfg models.FailureInjectionConfig) (*models.FailureInjectionConfig, error) {
	return m.setFailureInjectionFn(ctx, actor, cfg)
}
