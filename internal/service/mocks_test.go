package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/adlytics/govern/internal/models"
)

// mockAuditor records audit entries in order and returns a configurable error.
type mockAuditor struct {
	mu      sync.Mutex
	records []models.AuditRecord
	err     error
}

func (m *mockAuditor) Record(_ context.Context, _ string, rec models.AuditRecord) error {
	if m.err != nil {
		return m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAuditor) getRecords() []models.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.AuditRecord, len(m.records))
	copy(cp, m.records)
	return cp
}

// mockChain returns a fixed guard outcome.
type mockChain struct {
	err   error
	calls int
}

func (m *mockChain) Check(_ context.Context, _ models.Actor, _ models.Action) error {
	m.calls++
	return m.err
}

// memState is an in-memory snapshot/ingestion store honoring the flip
// semantics of the real transactions, for exercising the orchestrator
// end to end without a database.
type memState struct {
	mu    sync.Mutex
	logs  map[string]*models.IngestionLog
	snaps map[string]*models.ProductionSnapshot
	next  int
}

func newMemState() *memState {
	return &memState{
		logs:  make(map[string]*models.IngestionLog),
		snaps: make(map[string]*models.ProductionSnapshot),
	}
}

func (m *memState) addLog(log models.IngestionLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := log
	m.logs[log.ID] = &cp
}

func (m *memState) addSnapshot(snap models.ProductionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := snap
	m.snaps[snap.ID] = &cp
}

func (m *memState) activeFor(key models.SnapshotKey) *models.ProductionSnapshot {
	for _, s := range m.snaps {
		if s.Key() == key && s.IsActive {
			return s
		}
	}
	return nil
}

// activeCount reports how many snapshots are active for a key; the invariant
// requires this never exceeds 1.
func (m *memState) activeCount(key models.SnapshotKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.snaps {
		if s.Key() == key && s.IsActive {
			n++
		}
	}
	return n
}

func (m *memState) GetIngestionLog(_ context.Context, workspaceID, logID string) (*models.IngestionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log, ok := m.logs[logID]
	if !ok || log.WorkspaceID != workspaceID {
		return nil, models.ErrIngestionLogNotFound
	}

	cp := *log
	return &cp, nil
}

func (m *memState) Promote(_ context.Context, actor models.Actor, logID string) (*models.ProductionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log, ok := m.logs[logID]
	if !ok || log.WorkspaceID != actor.WorkspaceID {
		return nil, models.ErrIngestionLogNotFound
	}

	if err := log.Promotable(); err != nil {
		return nil, err
	}

	key := models.SnapshotKey{WorkspaceID: actor.WorkspaceID, Platform: log.Platform, Dataset: log.Dataset}
	if prev := m.activeFor(key); prev != nil {
		prev.IsActive = false
	}

	m.next++
	snap := &models.ProductionSnapshot{
		ID:             fmt.Sprintf("snap-%d", m.next),
		WorkspaceID:    actor.WorkspaceID,
		Platform:       log.Platform,
		Dataset:        log.Dataset,
		IngestionLogID: log.ID,
		IsActive:       true,
		PromotedBy:     actor.ID,
	}
	m.snaps[snap.ID] = snap
	log.Frozen = true

	cp := *snap
	return &cp, nil
}

func (m *memState) Rollback(_ context.Context, actor models.Actor, snapshotID, reason string) (*models.RollbackResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.snaps[snapshotID]
	if !ok {
		return nil, models.ErrSnapshotNotFound
	}

	if target.WorkspaceID != actor.WorkspaceID {
		return nil, models.ErrWorkspaceMismatch
	}

	if target.IsActive {
		return nil, models.ErrSnapshotAlreadyActive
	}

	var previousID string
	if prev := m.activeFor(target.Key()); prev != nil {
		previousID = prev.ID
		prev.IsActive = false
	}

	target.IsActive = true
	target.RollbackReason = reason

	cp := *target
	return &models.RollbackResult{Snapshot: &cp, PreviousSnapshotID: previousID}, nil
}
