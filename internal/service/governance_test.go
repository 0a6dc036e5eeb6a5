package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func adminActor() models.Actor {
	return models.Actor{ID: "user-admin", Role: models.RoleAdmin, WorkspaceID: "ws-1"}
}

func ownerActor() models.Actor {
	return models.Actor{ID: "user-owner", Role: models.RoleOwner, WorkspaceID: "ws-1"}
}

func passLog(id string) models.IngestionLog {
	return models.IngestionLog{
		ID:          id,
		WorkspaceID: "ws-1",
		Platform:    "meta",
		Dataset:     "campaigns",
		Status:      models.IngestionPass,
		ValidRows:   120,
	}
}

func newGovernance(state *memState, auditor *mockAuditor, chain GuardChain) *Governance {
	return NewGovernance(state, state, auditor, chain, testLogger())
}

func TestGovernance_Promote(t *testing.T) {
	state := newMemState()
	state.addLog(passLog("log-1"))
	auditor := &mockAuditor{}
	svc := newGovernance(state, auditor, &mockChain{})

	snap, err := svc.Promote(context.Background(), adminActor(), "log-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.IsActive {
		t.Error("promoted snapshot should be active")
	}
	if snap.PromotedBy != "user-admin" {
		t.Errorf("promoted_by = %q, want %q", snap.PromotedBy, "user-admin")
	}

	records := auditor.getRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(records))
	}
	if records[0].Action != models.AuditActionPromote || records[0].EntityID != snap.ID {
		t.Errorf("unexpected audit record: %+v", records[0])
	}
	if records[0].Scope.Platform != "meta" || records[0].Scope.Dataset != "campaigns" {
		t.Errorf("audit scope = %+v", records[0].Scope)
	}
}

func TestGovernance_Promote_GuardRejection(t *testing.T) {
	state := newMemState()
	state.addLog(passLog("log-1"))
	auditor := &mockAuditor{}
	chain := &mockChain{err: &models.KillSwitchActiveError{Scope: models.ScopeGlobal}}
	svc := newGovernance(state, auditor, chain)

	_, err := svc.Promote(context.Background(), ownerActor(), "log-1")

	var ksErr *models.KillSwitchActiveError
	if !errors.As(err, &ksErr) {
		t.Fatalf("got %v, want KillSwitchActiveError", err)
	}
	if got, _ := state.GetIngestionLog(context.Background(), "ws-1", "log-1"); got.Frozen {
		t.Error("rejected promote must not freeze the log")
	}
	if len(auditor.getRecords()) != 0 {
		t.Error("rejected promote must not write an audit entry")
	}
}

func TestGovernance_Promote_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.IngestionLog)
		wantErr error
	}{
		{"failed log", func(l *models.IngestionLog) { l.Status = models.IngestionFail }, models.ErrLogFailed},
		{"no rows", func(l *models.IngestionLog) { l.ValidRows = 0 }, models.ErrLogEmpty},
		{"frozen log", func(l *models.IngestionLog) { l.Frozen = true }, models.ErrLogFrozen},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := passLog("log-1")
			tc.mutate(&log)

			state := newMemState()
			state.addLog(log)
			auditor := &mockAuditor{}
			svc := newGovernance(state, auditor, &mockChain{})

			_, err := svc.Promote(context.Background(), adminActor(), "log-1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
			if len(auditor.getRecords()) != 0 {
				t.Error("failed validation must not write an audit entry")
			}
		})
	}
}

func TestGovernance_Promote_NotFound(t *testing.T) {
	svc := newGovernance(newMemState(), &mockAuditor{}, &mockChain{})

	_, err := svc.Promote(context.Background(), adminActor(), "log-missing")
	if !errors.Is(err, models.ErrIngestionLogNotFound) {
		t.Fatalf("got %v, want ErrIngestionLogNotFound", err)
	}
}

func TestGovernance_NoDoublePromotion(t *testing.T) {
	state := newMemState()
	state.addLog(passLog("log-1"))
	svc := newGovernance(state, &mockAuditor{}, &mockChain{})

	if _, err := svc.Promote(context.Background(), adminActor(), "log-1"); err != nil {
		t.Fatalf("first promote: %v", err)
	}

	_, err := svc.Promote(context.Background(), adminActor(), "log-1")
	if !errors.Is(err, models.ErrLogFrozen) {
		t.Fatalf("second promote: got %v, want ErrLogFrozen", err)
	}
}

func TestGovernance_Promote_AuditWriteFailure(t *testing.T) {
	state := newMemState()
	state.addLog(passLog("log-1"))
	auditor := &mockAuditor{err: errors.New("audit db down")}
	svc := newGovernance(state, auditor, &mockChain{})

	snap, err := svc.Promote(context.Background(), adminActor(), "log-1")

	var awErr *models.AuditWriteError
	if !errors.As(err, &awErr) {
		t.Fatalf("got %v, want AuditWriteError", err)
	}
	if snap == nil {
		t.Fatal("snapshot should be returned: the mutation committed")
	}
	if awErr.EntityID != snap.ID {
		t.Errorf("error entity = %q, want %q", awErr.EntityID, snap.ID)
	}

	// The mutation is not reverted: the snapshot is active and the log frozen.
	key := models.SnapshotKey{WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns"}
	if state.activeCount(key) != 1 {
		t.Error("mutation should stand despite audit failure")
	}
	if got, _ := state.GetIngestionLog(context.Background(), "ws-1", "log-1"); !got.Frozen {
		t.Error("log should stay frozen despite audit failure")
	}
}

func TestGovernance_Rollback_ReasonRequired(t *testing.T) {
	state := newMemState()
	state.addSnapshot(models.ProductionSnapshot{
		ID: "snap-old", WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns",
	})
	svc := newGovernance(state, &mockAuditor{}, &mockChain{})

	_, err := svc.Rollback(context.Background(), ownerActor(), "snap-old", "")
	if !errors.Is(err, models.ErrRollbackReasonRequired) {
		t.Fatalf("got %v, want ErrRollbackReasonRequired", err)
	}
}

func TestGovernance_Rollback_AlreadyActive(t *testing.T) {
	state := newMemState()
	state.addSnapshot(models.ProductionSnapshot{
		ID: "snap-1", WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns", IsActive: true,
	})
	auditor := &mockAuditor{}
	svc := newGovernance(state, auditor, &mockChain{})

	_, err := svc.Rollback(context.Background(), ownerActor(), "snap-1", "revert")
	if !errors.Is(err, models.ErrSnapshotAlreadyActive) {
		t.Fatalf("got %v, want ErrSnapshotAlreadyActive", err)
	}
	if len(auditor.getRecords()) != 0 {
		t.Error("rejected rollback must not write an audit entry")
	}
}

func TestGovernance_Rollback_CrossWorkspace(t *testing.T) {
	state := newMemState()
	state.addSnapshot(models.ProductionSnapshot{
		ID: "snap-other", WorkspaceID: "ws-2", Platform: "meta", Dataset: "campaigns",
	})
	svc := newGovernance(state, &mockAuditor{}, &mockChain{})

	_, err := svc.Rollback(context.Background(), ownerActor(), "snap-other", "revert")
	if !errors.Is(err, models.ErrWorkspaceMismatch) {
		t.Fatalf("got %v, want ErrWorkspaceMismatch", err)
	}
}

func TestGovernance_Rollback_NotFound(t *testing.T) {
	svc := newGovernance(newMemState(), &mockAuditor{}, &mockChain{})

	_, err := svc.Rollback(context.Background(), ownerActor(), "snap-missing", "revert")
	if !errors.Is(err, models.ErrSnapshotNotFound) {
		t.Fatalf("got %v, want ErrSnapshotNotFound", err)
	}
}

// TestGovernance_EndToEnd replays the canonical scenario: S1 is active,
// promoting L2 yields S2 active, then an owner rolls back to S1 with a
// reason. The audit trail must read [PROMOTE(S2), ROLLBACK(S1)] in order,
// and the rollback response must name S2 as the previous snapshot.
func TestGovernance_EndToEnd(t *testing.T) {
	state := newMemState()
	state.addSnapshot(models.ProductionSnapshot{
		ID: "s1", WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns", IsActive: true,
	})
	state.addLog(passLog("l2"))

	auditor := &mockAuditor{}
	svc := newGovernance(state, auditor, &mockChain{})
	key := models.SnapshotKey{WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns"}

	s2, err := svc.Promote(context.Background(), adminActor(), "l2")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if state.activeCount(key) != 1 {
		t.Fatalf("active count = %d, want 1", state.activeCount(key))
	}

	res, err := svc.Rollback(context.Background(), ownerActor(), "s1", "bad data")
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if res.Snapshot.ID != "s1" || !res.Snapshot.IsActive {
		t.Errorf("rollback target = %+v, want s1 active", res.Snapshot)
	}
	if res.PreviousSnapshotID != s2.ID {
		t.Errorf("previous snapshot = %q, want %q", res.PreviousSnapshotID, s2.ID)
	}
	if state.activeCount(key) != 1 {
		t.Errorf("active count = %d, want 1", state.activeCount(key))
	}

	records := auditor.getRecords()
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(records))
	}
	if records[0].Action != models.AuditActionPromote || records[0].EntityID != s2.ID {
		t.Errorf("first audit record = %+v, want PROMOTE(%s)", records[0], s2.ID)
	}
	if records[1].Action != models.AuditActionRollback || records[1].EntityID != "s1" {
		t.Errorf("second audit record = %+v, want ROLLBACK(s1)", records[1])
	}
	if records[1].Reason != "bad data" {
		t.Errorf("rollback reason = %q, want %q", records[1].Reason, "bad data")
	}
	if records[1].Metadata["previous_snapshot_id"] != s2.ID {
		t.Errorf("rollback metadata = %+v", records[1].Metadata)
	}
}

func TestGovernance_Rollback_AuditWriteFailure(t *testing.T) {
	state := newMemState()
	state.addSnapshot(models.ProductionSnapshot{
		ID: "s1", WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns",
	})
	state.addSnapshot(models.ProductionSnapshot{
		ID: "s2", WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns", IsActive: true,
	})

	auditor := &mockAuditor{err: errors.New("audit db down")}
	svc := newGovernance(state, auditor, &mockChain{})

	res, err := svc.Rollback(context.Background(), ownerActor(), "s1", "bad data")

	var awErr *models.AuditWriteError
	if !errors.As(err, &awErr) {
		t.Fatalf("got %v, want AuditWriteError", err)
	}
	if res == nil || res.Snapshot.ID != "s1" {
		t.Fatal("rollback result should carry the committed flip")
	}

	key := models.SnapshotKey{WorkspaceID: "ws-1", Platform: "meta", Dataset: "campaigns"}
	if state.activeCount(key) != 1 {
		t.Error("flip should stand despite audit failure")
	}
}
