package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adlytics/govern/internal/models"
)

// SessionStore resolves session tokens to actors. Only token hashes are
// persisted, never raw tokens.
type SessionStore struct {
	Base
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(base Base) *SessionStore {
	return &SessionStore{Base: base}
}

// ResolveActor maps a session token to the acting identity: session row →
// user → active membership role in the session's workspace. The actor is
// built entirely from server state; client-supplied identity fields are
// never consulted.
func (s *SessionStore) ResolveActor(ctx context.Context, token string) (models.Actor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	hash := sha256.Sum256([]byte(token))
	tokenHash := hex.EncodeToString(hash[:])

	var (
		actor  models.Actor
		role   *string
		active *bool
	)

	err := s.Pool.QueryRow(ctx, `
		SELECT s.user_id, s.workspace_id, m.role, m.active
		FROM sessions s
		LEFT JOIN memberships m
		       ON m.user_id = s.user_id AND m.workspace_id = s.workspace_id
		WHERE s.token_hash = $1 AND s.expires_at > now()`,
		tokenHash,
	).Scan(&actor.ID, &actor.WorkspaceID, &role, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Actor{}, models.ErrNotAuthenticated
		}

		return models.Actor{}, fmt.Errorf("resolving session: %w", err)
	}

	if role == nil || active == nil || !*active {
		return models.Actor{}, models.ErrNoMembership
	}

	actor.Role = models.Role(*role)
	if !actor.Role.Valid() {
		return models.Actor{}, models.ErrNoMembership
	}

	return actor, nil
}
