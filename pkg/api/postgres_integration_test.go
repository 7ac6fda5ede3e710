//go:build integration

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/platinummonkey/workboard/pkg/projects"
	"github.com/platinummonkey/workboard/pkg/storage"
	"github.com/platinummonkey/workboard/pkg/storage/migrations"
	"github.com/platinummonkey/workboard/pkg/storage/storagetest"
	"github.com/platinummonkey/workboard/pkg/tasks"
	"github.com/platinummonkey/workboard/pkg/workspaces"
)

// setupPostgres starts a PostgreSQL container with every migration applied
func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("workboard_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := storage.DefaultConfig()
	cfg.Driver = storage.DriverPostgres
	cfg.DSN = dsn
	db, err := storage.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := migrations.NewMigrator(ctx, db, nil)
	require.NoError(t, err)
	_, err = m.Up(ctx, 0)
	require.NoError(t, err)
	return db
}

func TestPostgres_WorkspaceLifecycle(t *testing.T) {
	db := setupPostgres(t)
	ts := newTestServerWithDB(t, db, nil)

	alice := ts.register("alice")
	bob := ts.register("bob")

	var ws workspaces.Workspace
	ts.ok(http.MethodPost, "/api/v1/workspaces", alice.token, map[string]string{"name": "Acme"}, http.StatusCreated, &ws)
	ts.ok(http.MethodPost, "/api/v1/workspaces/join/"+ws.InviteCode, bob.token, nil, http.StatusOK, nil)

	var p projects.Project
	ts.ok(http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/projects", alice.token,
		map[string]string{"name": "Launch"}, http.StatusCreated, &p)

	var task tasks.Task
	ts.ok(http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/projects/"+p.ID+"/tasks", alice.token,
		map[string]interface{}{"title": "Write copy", "assignedTo": bob.user.ID}, http.StatusCreated, &task)
	assert.Regexp(t, `^task-[a-z0-9]{4}$`, task.TaskCode)

	var list tasks.List
	ts.ok(http.MethodGet, "/api/v1/workspaces/"+ws.ID+"/tasks?keyword=COPY", bob.token, nil, http.StatusOK, &list)
	assert.Len(t, list.Tasks, 1)

	var count unreadCountResponse
	ts.ok(http.MethodGet, "/api/v1/notifications/unread-count", bob.token, nil, http.StatusOK, &count)
	assert.Equal(t, 2, count.Count)

	ts.ok(http.MethodDelete, "/api/v1/workspaces/"+ws.ID, alice.token, nil, http.StatusOK, nil)
	for _, table := range []string{"members", "projects", "tasks"} {
		assert.Zero(t, storagetest.Count(t, db, table, "workspace_id = ?", ws.ID), table)
	}
	assert.Equal(t, 1, storagetest.Count(t, db, "users", "id = ? AND current_workspace_id IS NOT NULL", bob.user.ID))
}
