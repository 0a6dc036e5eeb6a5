package models

import "time"

// Audit actions recorded by the control plane. The audit log is append-only:
// no update or delete path exists anywhere in the system.
const (
	AuditActionPromote              = "PROMOTE"
	AuditActionRollback             = "ROLLBACK"
	AuditActionPermissionDenied     = "PERMISSION_DENIED"
	AuditActionKillSwitchUpdate     = "KILL_SWITCH_UPDATE"
	AuditActionFailureInjectionSet  = "FAILURE_INJECTION_SET"
)

// Audited entity types.
const (
	EntitySnapshot         = "production_snapshot"
	EntityKillSwitch       = "kill_switch"
	EntityFailureInjection = "failure_injection"
)

// AuditScope narrows an audit entry to a platform/dataset pair within the
// workspace. Either field may be empty for workspace-wide actions.
type AuditScope struct {
	Platform string `json:"platform,omitempty"`
	Dataset  string `json:"dataset,omitempty"`
}

// AuditEntry is a single append-only audit record. Every ROLLBACK entry
// carries a non-empty Reason.
type AuditEntry struct {
	ID          int64          `json:"id"`
	WorkspaceID string         `json:"-"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	ActorID     string         `json:"actor_id"`
	ActorRole   Role           `json:"actor_role"`
	Scope       AuditScope     `json:"scope"`
	Reason      string         `json:"reason,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditRecord is the caller-supplied portion of an audit entry.
type AuditRecord struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      Actor
	Scope      AuditScope
	Reason     string
	Metadata   map[string]any
}

// AuditQueryOpts holds filters for reading the audit trail.
type AuditQueryOpts struct {
	Action     string
	EntityType string
	EntityID   string
	Since      *time.Time
	Limit      int
	Offset     int
}
