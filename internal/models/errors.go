package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for actor resolution.
var (
	ErrNotAuthenticated = errors.New("no authenticated actor")
	ErrNoMembership     = errors.New("actor has no active membership in workspace")
)

// Sentinel errors for entity lookups and cross-workspace access.
var (
	ErrSnapshotNotFound     = errors.New("snapshot not found")
	ErrIngestionLogNotFound = errors.New("ingestion log not found")
	ErrWorkspaceMismatch    = errors.New("entity belongs to a different workspace")
)

// Sentinel errors for domain preconditions.
var (
	ErrLogFrozen              = errors.New("ingestion log already promoted")
	ErrLogFailed              = errors.New("ingestion log failed validation")
	ErrLogEmpty               = errors.New("ingestion log has no valid rows")
	ErrSnapshotAlreadyActive  = errors.New("snapshot is already active")
	ErrRollbackReasonRequired = errors.New("rollback reason is required")
	ErrProbabilityRange       = errors.New("probability must be within [0, 1]")
	ErrInjectionIncomplete    = errors.New("failure injection requires action and failure type")
)

// ErrConcurrentFlip indicates a concurrent Promote/Rollback won the race for
// the same (workspace, platform, dataset) key. The losing transaction is
// aborted; callers may retry.
var ErrConcurrentFlip = errors.New("concurrent active-snapshot change detected")

// PermissionDeniedError reports a resolved role below the action's minimum.
type PermissionDeniedError struct {
	Action Action
	Role   Role
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %q may not perform %q", e.Role, e.Action)
}

// KillSwitchActiveError reports a global or workspace operational halt.
// Treated as temporary unavailability; callers may retry later.
type KillSwitchActiveError struct {
	Scope  string
	Reason string
}

func (e *KillSwitchActiveError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s kill switch active: %s", e.Scope, e.Reason)
	}
	return fmt.Sprintf("%s kill switch active", e.Scope)
}

// InjectedFailureError is a deliberate chaos-test fault. Clients see it as a
// generic operational failure; the type only matters to operators.
type InjectedFailureError struct {
	FailureType string
}

func (e *InjectedFailureError) Error() string {
	return fmt.Sprintf("injected failure: %s", e.FailureType)
}

// AuditWriteError reports that a mutation committed but its audit record did
// not. The mutation is not reverted; the operation is still reported as
// failed because the record of what happened is as load-bearing as the
// change itself.
type AuditWriteError struct {
	Action   string
	EntityID string
	Err      error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("mutation %s(%s) committed but audit write failed: %v", e.Action, e.EntityID, e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }
