// Package models defines the domain types and error taxonomy for the
// governance control plane: actors and roles, production snapshots,
// ingestion logs, audit entries, and operational control state.
package models

// Role is a closed, ordered workspace role. The zero value is invalid.
type Role string

// Workspace roles, lowest to highest.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// roleRank orders roles for comparison. Unknown roles rank below viewer.
var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Action is a governed action subject to role gating.
type Action string

// Governed actions.
const (
	ActionPromote  Action = "promote"
	ActionRollback Action = "rollback"
	ActionIngest   Action = "ingest"
	ActionRead     Action = "read"
	ActionControl  Action = "control" // kill-switch / failure-injection admin
)

// minRole maps each action to the minimum role allowed to perform it.
// Rollback changes what "production" means without creating new data, so it
// is restricted to the single highest role.
var minRole = map[Action]Role{
	ActionPromote:  RoleAdmin,
	ActionRollback: RoleOwner,
	ActionIngest:   RoleEditor,
	ActionRead:     RoleViewer,
	ActionControl:  RoleOwner,
}

// MinRole returns the minimum role required for action. The second return
// is false for unknown actions, which no role may perform.
func MinRole(action Action) (Role, bool) {
	r, ok := minRole[action]
	return r, ok
}

// CanPerform reports whether role may perform action. Pure function over
// the action table; unknown actions are always denied.
func CanPerform(role Role, action Action) bool {
	min, ok := minRole[action]
	if !ok {
		return false
	}
	return role.AtLeast(min)
}

// Actor is the server-resolved identity performing a governed action.
// It is resolved once per request from session state and is never populated
// from client-supplied fields.
type Actor struct {
	ID          string
	Role        Role
	WorkspaceID string
}
