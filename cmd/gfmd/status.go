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

func statusCmd() *cobra.Command {
	var recentErrors int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show contact totals, today's sends and recent failures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := config.LoadOutreachConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read contact stats: %w", err)
			}

			counter := storage.NewFileCounter(cfg.CounterPath, cfg.DailyLimit, common.SystemClock{})
			sent, err := counter.Count()
			if err != nil {
				return fmt.Errorf("failed to read daily count: %w", err)
			}

			fmt.Fprintln(out, cli.RenderStatus(stats, sent, counter.Limit()))

			if recentErrors <= 0 {
				return nil
			}

			entries, err := storage.NewErrorLog(cfg.ErrorLogPath, cfg.ErrorLogSize).Entries()
			if err != nil {
				return fmt.Errorf("failed to read error log: %w", err)
			}
			if len(entries) == 0 {
				return nil
			}
			if len(entries) > recentErrors {
				entries = entries[len(entries)-recentErrors:]
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatTitle("Recent send failures"))
			for _, e := range entries {
				fmt.Fprintf(out, "  %s  %s  %s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					e.Email,
					cli.ErrorStyle.Render(e.Error))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recentErrors, "errors", 5, "number of recent send failures to show")

	return cmd
}
