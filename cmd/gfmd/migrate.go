package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the contact database schema to the latest version.

Use --backup to snapshot the database first, and --status to report the
schema version without changing anything.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")
	cmd.Flags().Bool("backup", false, "Snapshot the database before migrating")
	cmd.Flags().Bool("list-backups", false, "List existing database snapshots")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	backup, _ := cmd.Flags().GetBool("backup")
	listBackups, _ := cmd.Flags().GetBool("list-backups")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.LoadOutreachConfig()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", cfg.DatabasePath,
		"backup", backup,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, common.SystemClock{})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if listBackups {
		backups, listErr := store.ListBackups()
		if listErr != nil {
			return fmt.Errorf("failed to list backups: %w", listErr)
		}
		if len(backups) == 0 {
			fmt.Fprintln(out, cli.FormatInfo("No backups in "+store.BackupDir()))
			return nil
		}
		for _, b := range backups {
			fmt.Fprintf(out, "%s  %s  schema v%d  %d contacts  %s\n",
				b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.ID, b.SchemaVersion, b.Contacts, b.Path)
		}
		return nil
	}

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if status {
		fmt.Fprintln(out, cli.FormatTitle("Database Migration Status"))
		fmt.Fprintf(out, "  Database: %s\n", cfg.DatabasePath)
		fmt.Fprintf(out, "  Current version: %d\n", current)
		fmt.Fprintf(out, "  Latest version: %d\n", storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("Migrations pending. Run 'gfmd migrate' to apply them."))
		}
		return nil
	}

	if backup {
		info, backupErr := store.Backup(ctx, "")
		if backupErr != nil {
			return fmt.Errorf("backup failed: %w", backupErr)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Backup written to "+info.Path))
	}

	if current >= storage.ExpectedSchemaVersion {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is already at version %d", current)))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database migrated from version %d to %d", current, storage.ExpectedSchemaVersion)))
	return nil
}
