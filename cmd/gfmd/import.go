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

func importCmd() *cobra.Command {
	var skipDuplicates bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import prospects from a CSV file",
		Long: `Import prospects into the contact database.

Columns are matched by header name. Contacts that already exist keep their
outreach history. Imported leads are recorded for deduplication so generated
leads never repeat them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := config.LoadOutreachConfig()
			if err != nil {
				return err
			}

			imported, err := storage.ImportCSV(config.ExpandPath(args[0]), cfg.Campaign)
			if err != nil {
				return common.NewUserError("could not read "+args[0], err)
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

			engine, releaseDedup, err := initDedup(ctx, nil)
			if err != nil {
				return err
			}
			defer releaseDedup()

			prospects := imported.Prospects
			dupes := 0
			if skipDuplicates {
				if prospects, dupes, err = filterDuplicates(ctx, engine, prospects); err != nil {
					return err
				}
			}

			saved, err := store.SaveContacts(ctx, prospects)
			if err != nil {
				return fmt.Errorf("failed to save contacts: %w", err)
			}

			for _, p := range prospects {
				if err := engine.Add(ctx, p); err != nil {
					return fmt.Errorf("failed to record lead: %w", err)
				}
			}
			if err := engine.Save(ctx); err != nil {
				return fmt.Errorf("failed to save dedup cache: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d contacts from %s", saved, args[0])))
			if imported.Skipped > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %d rows without an email", imported.Skipped)))
			}
			if dupes > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d previously seen leads", dupes)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "leave out leads seen before")

	return cmd
}
