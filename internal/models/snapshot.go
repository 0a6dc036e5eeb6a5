package models

import "time"

// IngestionStatus is the outcome of upstream row validation.
type IngestionStatus string

// Ingestion log statuses.
const (
	IngestionPass IngestionStatus = "pass"
	IngestionWarn IngestionStatus = "warn"
	IngestionFail IngestionStatus = "fail"
)

// IngestionLog is the validated output of the ingestion pipeline. Governance
// only consumes these: a log with Frozen=true has already been promoted once
// and can never be promoted again.
type IngestionLog struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"-"`
	Platform    string          `json:"platform"`
	Dataset     string          `json:"dataset"`
	Status      IngestionStatus `json:"status"`
	ValidRows   int             `json:"valid_rows"`
	Frozen      bool            `json:"frozen"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Promotable returns nil if the log can be promoted, or the specific
// validation error otherwise.
func (l *IngestionLog) Promotable() error {
	switch {
	case l.Frozen:
		return ErrLogFrozen
	case l.Status == IngestionFail:
		return ErrLogFailed
	case l.ValidRows <= 0:
		return ErrLogEmpty
	}
	return nil
}

// ProductionSnapshot is one point-in-time binding of production truth for a
// (workspace, platform, dataset) key. Rows are never deleted; history is
// append-and-flip. Only IsActive, RolledBackAt, and RollbackReason ever
// change after insert.
type ProductionSnapshot struct {
	ID             string     `json:"id"`
	WorkspaceID    string     `json:"-"`
	Platform       string     `json:"platform"`
	Dataset        string     `json:"dataset"`
	IngestionLogID string     `json:"ingestion_log_id"`
	IsActive       bool       `json:"is_active"`
	PromotedAt     time.Time  `json:"promoted_at"`
	PromotedBy     string     `json:"promoted_by"`
	RolledBackAt   *time.Time `json:"rolled_back_at,omitempty"`
	RollbackReason string     `json:"rollback_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SnapshotKey identifies the (workspace, platform, dataset) triple that the
// at-most-one-active invariant is scoped to.
type SnapshotKey struct {
	WorkspaceID string
	Platform    string
	Dataset     string
}

// Key returns the snapshot's invariant key.
func (s *ProductionSnapshot) Key() SnapshotKey {
	return SnapshotKey{WorkspaceID: s.WorkspaceID, Platform: s.Platform, Dataset: s.Dataset}
}

// RollbackResult is the outcome of a successful rollback: the newly active
// snapshot plus the id of whichever snapshot was active before the flip
// (empty when the key had no active snapshot).
type RollbackResult struct {
	Snapshot           *ProductionSnapshot
	PreviousSnapshotID string
}
