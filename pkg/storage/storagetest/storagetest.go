// Package storagetest provides a migrated in-memory SQLite database for
// package tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/workboard/pkg/storage"
	"github.com/platinummonkey/workboard/pkg/storage/migrations"
)

// NewDB opens a private in-memory SQLite database with every migration
// applied. It is closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := migrations.NewMigrator(ctx, db, nil)
	require.NoError(t, err)
	_, err = m.Up(ctx, 0)
	require.NoError(t, err)

	return db
}

// SeedUser inserts a bare user row and returns its ID
func SeedUser(t testing.TB, db *sqlx.DB, id, name, email string) string {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := db.Exec(db.Rebind(`INSERT INTO users (id, name, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`), id, name, email, "x", true, now, now)
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table matching where (which may be empty)
func Count(t testing.TB, db *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(q), args...))
	return n
}
