package migrations

import "github.com/jmoiron/sqlx"

func init() {
	addMigration(&migration{
		version: "20260105090200",
		up:      projectsTasksUp,
		down:    projectsTasksDown,
	})
}

func projectsTasksUp(tx *sqlx.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(36) PRIMARY KEY,
			workspace_id VARCHAR(36) NOT NULL REFERENCES workspaces(id),
			emoji VARCHAR(16) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by VARCHAR(36) NOT NULL REFERENCES users(id),
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_id)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id VARCHAR(36) PRIMARY KEY,
			task_code VARCHAR(32) NOT NULL UNIQUE,
			workspace_id VARCHAR(36) NOT NULL REFERENCES workspaces(id),
			project_id VARCHAR(36) NOT NULL REFERENCES projects(id),
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority VARCHAR(16) NOT NULL CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH')),
			status VARCHAR(16) NOT NULL CHECK (status IN ('BACKLOG', 'TODO', 'IN_PROGRESS', 'IN_REVIEW', 'DONE')),
			assigned_to VARCHAR(36) REFERENCES users(id),
			due_date {{timestamp}},
			created_by VARCHAR(36) NOT NULL REFERENCES users(id),
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_workspace ON tasks(workspace_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assigned_to)`,
	)
}

func projectsTasksDown(tx *sqlx.Tx) error {
	return execAll(tx,
		`DROP TABLE IF EXISTS tasks`,
		`DROP TABLE IF EXISTS projects`,
	)
}
