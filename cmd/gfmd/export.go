package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

func exportCmd() *cobra.Command {
	var (
		status string
		limit  int
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export contacts to a CSV file",
		Example: `  gfmd export contacts.csv
  gfmd export contacted.csv --status contacted --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter, err := exportFilter(status, limit)
			if err != nil {
				return err
			}

			cfg, err := config.LoadOutreachConfig()
			if err != nil {
				return err
			}
			if !all {
				filter.Campaign = cfg.Campaign
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

			contacts, err := store.ListContacts(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}

			path := config.ExpandPath(args[0])
			if err := storage.ExportCSV(path, contacts); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d contacts to %s", len(contacts), path)))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only contacts with this status (new, contacted, error)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum contacts to export")
	cmd.Flags().BoolVar(&all, "all", false, "include every campaign")

	return cmd
}

func exportFilter(status string, limit int) (service.ContactFilter, error) {
	filter := service.ContactFilter{Limit: limit}
	if status == "" {
		return filter, nil
	}

	s := model.ContactStatus(status)
	switch s {
	case model.ContactNew, model.ContactContacted, model.ContactError:
		filter.Status = s
		return filter, nil
	default:
		return filter, common.NewUserError(fmt.Sprintf("unknown status %q", status), common.ErrInvalidConfig)
	}
}
