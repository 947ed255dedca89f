package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/outreach"
	"github.com/mlynnf123/gfmd-outreach/internal/pipeline"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

type runOptions struct {
	csvPath  string
	generate int
	seed     int64
	limit    int
	minScore int
	send     bool
	dryRun   bool
	yes      bool
	verbose  bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Research, qualify and email a batch of prospects",
		Long: `Run prospects through the research, qualification and composition agents.

Prospects come from a CSV file (--csv), from freshly generated synthetic
leads (--generate), or by default from contacts in the database that are due
for outreach. Prospects scoring below the minimum are skipped. With --send
the composed emails are delivered, subject to the daily limit.`,
		Example: `  # Compose emails for the next 10 contacts due for outreach
  gfmd run --limit 10

  # Import a list and send to qualified prospects
  gfmd run --csv hospitals.csv --send

  # Try the whole pipeline without delivering anything
  gfmd run --generate 5 --send --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "import prospects from a CSV file")
	cmd.Flags().IntVar(&opts.generate, "generate", 0, "generate this many unique synthetic prospects")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed for --generate (default: current time)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum prospects to process")
	cmd.Flags().IntVar(&opts.minScore, "min-score", 0, "minimum qualification score to compose an email (default: outreach.min_score)")
	cmd.Flags().BoolVar(&opts.send, "send", false, "deliver composed emails")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log emails instead of delivering them")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation before sending")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print a line per prospect")
	cmd.MarkFlagsMutuallyExclusive("csv", "generate")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts runOptions) error {
	out := cmd.OutOrStdout()
	interrupts := cli.NewInterruptHandler(out, "gfmd run --send")
	ctx := interrupts.HandleInterrupts(cmd.Context(), opts.send && !opts.dryRun)

	cfg, err := config.LoadOutreachConfig()
	if err != nil {
		return err
	}
	if opts.minScore > 0 {
		if opts.minScore > model.MaxTotalScore {
			return common.NewUserError(fmt.Sprintf("--min-score must be at most %d", model.MaxTotalScore), common.ErrInvalidConfig)
		}
		cfg.MinScore = opts.minScore
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

	exporter, err := initExporter(ctx)
	if err != nil {
		return err
	}

	engine, releaseDedup, err := initDedup(ctx, exporter)
	if err != nil {
		return err
	}
	defer releaseDedup()

	prospects, err := selectProspects(ctx, opts, cfg.Campaign, store, engine)
	if err != nil {
		return err
	}
	if len(prospects) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No prospects to process."))
		return nil
	}

	if opts.send && !opts.dryRun && !opts.yes {
		question := fmt.Sprintf("Process %d prospects and send emails to those scoring %d or more?", len(prospects), cfg.MinScore)
		ok, confirmErr := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, question)
		if confirmErr != nil {
			return confirmErr
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Canceled."))
			return nil
		}
	}

	client, err := initLLM(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	roles, err := initAgents(client, cfg)
	if err != nil {
		return err
	}

	var sender *outreach.Sender
	if opts.send {
		if sender, err = initSender(ctx, cfg, store, exporter, opts.dryRun); err != nil {
			return err
		}
	}

	progress := cli.NewBatchProgress(progressWriter(out), len(prospects), "Processing prospects...", opts.verbose)
	coordOpts := coordinatorOptions(roles, cfg, store, exporter, sender)
	coordOpts.OnResult = progress.Update

	coordinator, err := pipeline.New(coordOpts)
	if err != nil {
		return err
	}

	summary, runErr := coordinator.ProcessBatch(ctx, prospects, cfg.MinScore)
	progress.Finish()

	// Remember everything that went through so later runs skip it.
	for _, r := range summary.Results {
		if err := engine.Add(context.WithoutCancel(ctx), r.Prospect); err != nil {
			slog.Warn("Failed to record lead", "email", r.Prospect.Email, "error", err)
		}
	}
	if err := engine.Save(context.WithoutCancel(ctx)); err != nil {
		common.LogError(slog.Default(), err, "failed to save dedup cache", common.Fields{})
	}

	fmt.Fprintln(out, cli.RenderBatchSummary(summary))

	if runErr != nil && (interrupts.WasInterrupted() || errors.Is(runErr, context.Canceled)) {
		return nil
	}
	return runErr
}

// selectProspects picks the batch: a CSV import, generated leads, or
// contacts due for outreach. Imported and generated prospects are saved to
// the store first so the pipeline can record research and sends on them.
func selectProspects(ctx context.Context, opts runOptions, campaign model.Campaign, store service.ContactStore, engine *dedup.Engine) ([]model.Prospect, error) {
	var prospects []model.Prospect

	switch {
	case opts.csvPath != "":
		imported, err := storage.ImportCSV(config.ExpandPath(opts.csvPath), campaign)
		if err != nil {
			return nil, common.NewUserError("could not read "+opts.csvPath, err)
		}
		if imported.Skipped > 0 {
			slog.Warn("Skipped CSV rows without an email", "count", imported.Skipped)
		}

		fresh, dupes, err := filterDuplicates(ctx, engine, imported.Prospects)
		if err != nil {
			return nil, err
		}
		if dupes > 0 {
			slog.Info("Skipped previously seen prospects", "count", dupes)
		}
		prospects = fresh

	case opts.generate > 0:
		seed := opts.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen, err := dedup.NewSyntheticGenerator(campaign, seed, common.SystemClock{})
		if err != nil {
			return nil, err
		}
		if prospects, err = engine.GenerateUnique(ctx, opts.generate, gen); err != nil {
			return nil, err
		}

	default:
		contacts, err := store.GetContactsForOutreach(ctx, opts.limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load contacts: %w", err)
		}
		return contacts, nil
	}

	if opts.limit > 0 && len(prospects) > opts.limit {
		prospects = prospects[:opts.limit]
	}
	if len(prospects) > 0 {
		if _, err := store.SaveContacts(ctx, prospects); err != nil {
			return nil, fmt.Errorf("failed to save prospects: %w", err)
		}
	}
	return prospects, nil
}

func filterDuplicates(ctx context.Context, engine *dedup.Engine, prospects []model.Prospect) ([]model.Prospect, int, error) {
	fresh := make([]model.Prospect, 0, len(prospects))
	dupes := 0
	for _, p := range prospects {
		dup, err := engine.IsDuplicate(ctx, p)
		if err != nil {
			return nil, 0, err
		}
		if dup {
			dupes++
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, dupes, nil
}

// progressWriter moves the bar to stderr when out is stdout.
func progressWriter(out io.Writer) io.Writer {
	if out == os.Stdout {
		return os.Stderr
	}
	return out
}
