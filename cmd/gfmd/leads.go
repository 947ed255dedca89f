package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

func leadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Generate and deduplicate leads",
	}

	cmd.AddCommand(leadsGenerateCmd())
	cmd.AddCommand(leadsCheckCmd())
	cmd.AddCommand(leadsStatsCmd())

	return cmd
}

func leadsGenerateCmd() *cobra.Command {
	var (
		seed    int64
		outPath string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "generate <count>",
		Short: "Generate synthetic leads that have never been seen before",
		Example: `  gfmd leads generate 25 --out leads.csv
  gfmd leads generate 10 --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			count, err := strconv.Atoi(args[0])
			if err != nil || count <= 0 {
				return common.NewUserError(fmt.Sprintf("count must be a positive number, got %q", args[0]), common.ErrInvalidConfig)
			}

			cfg, err := config.LoadOutreachConfig()
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			gen, err := dedup.NewSyntheticGenerator(cfg.Campaign, seed, common.SystemClock{})
			if err != nil {
				return err
			}

			exporter, err := initExporter(ctx)
			if err != nil {
				return err
			}
			engine, releaseDedup, err := initDedup(ctx, exporter)
			if err != nil {
				return err
			}
			defer releaseDedup()

			leads, err := engine.GenerateUnique(ctx, count, gen)
			if err != nil {
				return fmt.Errorf("failed to generate leads: %w", err)
			}

			if save {
				store, storeErr := initStorage(ctx, cfg.DatabasePath)
				if storeErr != nil {
					return storeErr
				}
				defer func() {
					if closeErr := store.Close(); closeErr != nil {
						slog.Error("Failed to close database", "error", closeErr)
					}
				}()
				if _, err := store.SaveContacts(ctx, leads); err != nil {
					return fmt.Errorf("failed to save leads: %w", err)
				}
			}

			if outPath != "" {
				if err := storage.ExportCSV(config.ExpandPath(outPath), leads); err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
			} else if !save {
				if err := storage.WriteProspectsCSV(out, leads); err != nil {
					return err
				}
			}

			if len(leads) < count {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("Only %d of %d leads were unique", len(leads), count)))
			}
			if save || outPath != "" {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Generated %d unique leads", len(leads))))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write leads to a CSV file")
	cmd.Flags().BoolVar(&save, "save", false, "add leads to the contact database")

	return cmd
}

func leadsCheckCmd() *cobra.Command {
	var (
		name string
		org  string
	)

	cmd := &cobra.Command{
		Use:   "check <email>",
		Short: "Check whether a lead has been seen before",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			exporter, err := initExporter(ctx)
			if err != nil {
				return err
			}
			engine, releaseDedup, err := initDedup(ctx, exporter)
			if err != nil {
				return err
			}
			defer releaseDedup()

			p := model.Prospect{ContactName: name, Email: args[0], Organization: org}
			dup, err := engine.IsDuplicate(ctx, p)
			if err != nil {
				return err
			}

			if dup {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(args[0]+" has been seen before"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(args[0]+" is new"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&org, "org", "", "organization")

	return cmd
}

func leadsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many leads the dedup cache holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			engine, releaseDedup, err := initDedup(ctx, nil)
			if err != nil {
				return err
			}
			defer releaseDedup()

			hashes, patterns, err := engine.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Lead fingerprints: %d\nOrganization patterns: %d\n", hashes, patterns)
			return nil
		},
	}
}
