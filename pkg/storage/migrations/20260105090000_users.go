package migrations

import "github.com/jmoiron/sqlx"

func init() {
	addMigration(&migration{
		version: "20260105090000",
		up:      usersUp,
		down:    usersDown,
	})
}

func usersUp(tx *sqlx.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar_url TEXT,
			current_workspace_id VARCHAR(36),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_login_at {{timestamp}},
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_current_workspace ON users(current_workspace_id)`,
	)
}

func usersDown(tx *sqlx.Tx) error {
	return execAll(tx, `DROP TABLE IF EXISTS users`)
}
