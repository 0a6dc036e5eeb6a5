package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/dbpool"
	"github.com/adlytics/govern/internal/models"
	"github.com/adlytics/govern/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base plus a fresh workspace and owner actor,
// cleaned up after the test.
func setupTestBase(t *testing.T) (store.Base, models.Actor) {
	t.Helper()

	env := getTestEnv(t)
	ctx := context.Background()

	workspaceID := uuid.New().String()
	userID := uuid.New().String()

	_, err := env.pool.Exec(ctx,
		"INSERT INTO workspaces (id, name) VALUES ($1, $2)",
		workspaceID, fmt.Sprintf("test-workspace-%s", workspaceID[:8]),
	)
	if err != nil {
		t.Fatalf("creating test workspace: %v", err)
	}

	_, err = env.pool.Exec(ctx,
		"INSERT INTO users (id, email) VALUES ($1, $2)",
		userID, fmt.Sprintf("%s@test.invalid", userID[:8]),
	)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	_, err = env.pool.Exec(ctx,
		"INSERT INTO memberships (user_id, workspace_id, role) VALUES ($1, $2, 'owner')",
		userID, workspaceID,
	)
	if err != nil {
		t.Fatalf("creating test membership: %v", err)
	}

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order.
		env.pool.Exec(cleanCtx, "DELETE FROM failure_injection WHERE workspace_id = $1", workspaceID)    //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM kill_switch WHERE workspace_id = $1", workspaceID)          //nolint:errcheck // best-effort cleanup
		// The migration revokes DELETE from PUBLIC only; the test role owns
		// the table, so cleanup still works.
		env.pool.Exec(cleanCtx, "DELETE FROM audit_log WHERE workspace_id = $1", workspaceID)            //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM production_snapshots WHERE workspace_id = $1", workspaceID) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM ingestion_logs WHERE workspace_id = $1", workspaceID)       //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM sessions WHERE workspace_id = $1", workspaceID)             //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM memberships WHERE workspace_id = $1", workspaceID)          //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM users WHERE id = $1", userID)                               //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM workspaces WHERE id = $1", workspaceID)                     //nolint:errcheck // best-effort cleanup
	})

	base := store.Base{Pool: env.pool, Log: env.log}
	actor := models.Actor{ID: userID, Role: models.RoleOwner, WorkspaceID: workspaceID}

	return base, actor
}

// insertIngestionLog creates an ingestion log fixture and returns its id.
func insertIngestionLog(t *testing.T, base store.Base, workspaceID string, status models.IngestionStatus, validRows int) string {
	t.Helper()

	var id string
	err := base.Pool.QueryRow(context.Background(),
		`INSERT INTO ingestion_logs (workspace_id, platform, dataset, status, valid_rows)
		 VALUES ($1, 'google_ads', 'campaign_performance', $2, $3)
		 RETURNING id`,
		workspaceID, string(status), validRows,
	).Scan(&id)
	if err != nil {
		t.Fatalf("creating ingestion log: %v", err)
	}

	return id
}
