package migrations

import "github.com/jmoiron/sqlx"

func init() {
	addMigration(&migration{
		version: "20260105090300",
		up:      notificationsUp,
		down:    notificationsDown,
	})
}

// workspace_id carries no foreign key: notifications outlive the workspace
// they describe.
func notificationsUp(tx *sqlx.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			workspace_id VARCHAR(36) NOT NULL,
			actor_id VARCHAR(36) NOT NULL,
			type VARCHAR(64) NOT NULL,
			payload {{json}} NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at {{timestamp}},
			created_at {{timestamp}} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, is_read)`,
	)
}

func notificationsDown(tx *sqlx.Tx) error {
	return execAll(tx, `DROP TABLE IF EXISTS notifications`)
}
