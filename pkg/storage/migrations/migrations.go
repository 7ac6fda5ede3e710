// Package migrations holds the versioned database schema and the migrator
// that applies it. Each migration registers itself from an init function in
// its own file, named after its version.
package migrations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/storage"
)

type migration struct {
	version string
	up      func(*sqlx.Tx) error
	down    func(*sqlx.Tx) error
}

var (
	registry = map[string]*migration{}
	versions []string
)

func addMigration(mg *migration) {
	if _, dup := registry[mg.version]; dup {
		panic(fmt.Sprintf("migrations: duplicate version %s", mg.version))
	}
	registry[mg.version] = mg
	versions = append(versions, mg.version)
	sort.Strings(versions)
}

// Status describes one known migration
type Status struct {
	Version string
	Applied bool
}

// Migrator applies and reverts registered migrations, tracking them in the
// schema_migrations table
type Migrator struct {
	db     *sqlx.DB
	logger *observability.Logger
	done   map[string]bool
}

// NewMigrator ensures the tracking table exists and loads applied versions
func NewMigrator(ctx context.Context, db *sqlx.DB, logger *observability.Logger) (*Migrator, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	m := &Migrator{db: db, logger: logger, done: map[string]bool{}}

	if _, err := db.ExecContext(ctx, expand(db.DriverName(), `CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at {{timestamp}} NOT NULL
	)`)); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("failed to fetch completed migrations: %w", err)
	}
	for _, v := range applied {
		m.done[v] = true
	}

	return m, nil
}

// Status lists every registered migration in version order
func (m *Migrator) Status() []Status {
	out := make([]Status, 0, len(versions))
	for _, v := range versions {
		out = append(out, Status{Version: v, Applied: m.done[v]})
	}
	return out
}

// Pending returns the number of registered migrations not yet applied
func (m *Migrator) Pending() int {
	n := 0
	for _, v := range versions {
		if !m.done[v] {
			n++
		}
	}
	return n
}

// Up applies pending migrations in version order inside one transaction.
// step limits how many are applied; zero or less applies all.
func (m *Migrator) Up(ctx context.Context, step int) (int, error) {
	var todo []*migration
	for _, v := range versions {
		if !m.done[v] {
			todo = append(todo, registry[v])
		}
	}
	if step > 0 && len(todo) > step {
		todo = todo[:step]
	}

	err := storage.WithTx(ctx, m.db, func(tx *sqlx.Tx) error {
		for _, mg := range todo {
			l := m.logger.WithField("version", mg.version)
			l.Info("running up migration")

			if err := mg.up(tx); err != nil {
				return fmt.Errorf("migration %s up: %w", mg.version, err)
			}
			if _, err := tx.ExecContext(ctx,
				tx.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
				mg.version, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mg.version, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, mg := range todo {
		m.done[mg.version] = true
	}
	return len(todo), nil
}

// Down reverts applied migrations newest first inside one transaction.
// step limits how many are reverted; zero or less reverts all.
func (m *Migrator) Down(ctx context.Context, step int) (int, error) {
	var todo []*migration
	for i := len(versions) - 1; i >= 0; i-- {
		if m.done[versions[i]] {
			todo = append(todo, registry[versions[i]])
		}
	}
	if step > 0 && len(todo) > step {
		todo = todo[:step]
	}

	err := storage.WithTx(ctx, m.db, func(tx *sqlx.Tx) error {
		for _, mg := range todo {
			l := m.logger.WithField("version", mg.version)
			l.Info("running down migration")

			if err := mg.down(tx); err != nil {
				return fmt.Errorf("migration %s down: %w", mg.version, err)
			}
			if _, err := tx.ExecContext(ctx,
				tx.Rebind("DELETE FROM schema_migrations WHERE version = ?"),
				mg.version); err != nil {
				return fmt.Errorf("failed to remove migration %s: %w", mg.version, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, mg := range todo {
		delete(m.done, mg.version)
	}
	return len(todo), nil
}

// expand substitutes dialect specific column types into a DDL statement
func expand(driver, ddl string) string {
	ts, js := "TIMESTAMP", "TEXT"
	if driver == storage.DriverPostgres {
		ts, js = "TIMESTAMPTZ", "JSONB"
	}
	return strings.NewReplacer("{{timestamp}}", ts, "{{json}}", js).Replace(ddl)
}

// execAll runs each statement in order, expanded for the tx's driver
func execAll(tx *sqlx.Tx, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(expand(tx.DriverName(), stmt)); err != nil {
			return err
		}
	}
	return nil
}
