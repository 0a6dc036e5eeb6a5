package client

import "time"

// Snapshot is one point-in-time binding of production truth for a
// (platform, dataset) pair in the caller's workspace.
type Snapshot struct {
	ID             string     `json:"id"`
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

// PromoteResponse is returned by a successful promote.
type PromoteResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	Snapshot   *Snapshot `json:"snapshot"`
}

// RollbackResponse is returned by a successful rollback.
type RollbackResponse struct {
	NewActiveSnapshotID string    `json:"new_active_snapshot_id"`
	PreviousSnapshotID  string    `json:"previous_snapshot_id"`
	Snapshot            *Snapshot `json:"snapshot"`
}

// AuditScope narrows an audit entry to a platform/dataset pair.
type AuditScope struct {
	Platform string `json:"platform,omitempty"`
	Dataset  string `json:"dataset,omitempty"`
}

// AuditEntry is a single append-only audit record.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	ActorRole  string         `json:"actor_role"`
	Scope      AuditScope     `json:"scope"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditQueryOptions filters audit trail reads.
type AuditQueryOptions struct {
	Action     string
	EntityType string
	EntityID   string
	Since      *time.Time
	Limit      int
	Offset     int
}

// KillSwitchState is the operator halt flag for a scope.
type KillSwitchState struct {
	Scope     string    `json:"scope"`
	Enabled   bool      `json:"enabled"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FailureInjection is the chaos-test fault config for one action.
type FailureInjection struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	FailureType string    `json:"failure_type"`
	Probability float64   `json:"probability"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
