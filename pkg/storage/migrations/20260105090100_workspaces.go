package migrations

import "github.com/jmoiron/sqlx"

func init() {
	addMigration(&migration{
		version: "20260105090100",
		up:      workspacesUp,
		down:    workspacesDown,
	})
}

func workspacesUp(tx *sqlx.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS workspaces (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id VARCHAR(36) NOT NULL REFERENCES users(id),
			invite_code VARCHAR(16) NOT NULL UNIQUE,
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workspaces_owner ON workspaces(owner_id)`,
		`CREATE TABLE IF NOT EXISTS members (
			id VARCHAR(36) PRIMARY KEY,
			workspace_id VARCHAR(36) NOT NULL REFERENCES workspaces(id),
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			role VARCHAR(16) NOT NULL CHECK (role IN ('OWNER', 'ADMIN', 'MEMBER')),
			joined_at {{timestamp}} NOT NULL,
			UNIQUE (workspace_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_user ON members(user_id)`,
	)
}

func workspacesDown(tx *sqlx.Tx) error {
	return execAll(tx,
		`DROP TABLE IF EXISTS members`,
		`DROP TABLE IF EXISTS workspaces`,
	)
}
