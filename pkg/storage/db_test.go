package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestWithTx_Commit(t *testing.T) {
	db := openMemory(t)

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM items`))
	assert.Equal(t, 1, n)
}

func TestWithTx_RollbackReturnsOriginalError(t *testing.T) {
	db := openMemory(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	assert.Same(t, boom, err)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM items`))
	assert.Zero(t, n)
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	db := openMemory(t)
	_, err := db.Exec(`INSERT INTO items (name) VALUES ('a')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO items (name) VALUES ('a')`)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, EscapeLike("50% off_now"))
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
}

func TestIn(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, DriverPostgres)

	q, args, err := In(db, "SELECT * FROM tasks WHERE status IN (?) AND workspace_id = ?", []string{"TODO", "DONE"}, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM tasks WHERE status IN ($1, $2) AND workspace_id = $3", q)
	assert.Equal(t, []interface{}{"TODO", "DONE", "ws-1"}, args)
}
