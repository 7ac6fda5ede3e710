package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/workboard/pkg/config"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/storage"
	"github.com/platinummonkey/workboard/pkg/storage/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run up migrations",
	Long:  "Run all pending migrations by default.\nIf step is provided, it will run `N` 'up' migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return err
		}
		return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
			n, err := m.Up(cmd.Context(), step)
			if err != nil {
				return fmt.Errorf("unable to run up migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Run down migrations",
	Long:  "Revert the latest migration by default.\nIf step is provided, it will revert `N` migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return err
		}
		return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
			n, err := m.Down(cmd.Context(), step)
			if err != nil {
				return fmt.Errorf("unable to run down migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d migration(s)\n", n)
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
			return printStatus(cmd.OutOrStdout(), m.Status())
		})
	},
}

func withMigrator(ctx context.Context, fn func(m *migrations.Migrator) error) error {
	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)

	db, err := storage.Open(ctx, config.LoadStorageConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(ctx, db, logger)
	if err != nil {
		return err
	}
	return fn(m)
}

func newMigrator(ctx context.Context, db *sqlx.DB, logger *observability.Logger) (*migrations.Migrator, error) {
	m, err := migrations.NewMigrator(ctx, db, logger)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize migrator: %w", err)
	}
	return m, nil
}

func printStatus(w io.Writer, statuses []migrations.Status) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATUS")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.Version, state)
	}
	return tw.Flush()
}

func init() {
	migrateUpCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateUpCmd)

	migrateDownCmd.Flags().IntP("step", "s", 1, "Number of migrations to revert")
	migrateCmd.AddCommand(migrateDownCmd)

	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(migrateCmd)
}
