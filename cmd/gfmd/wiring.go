package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mlynnf123/gfmd-outreach/internal/agent"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/llm"
	"github.com/mlynnf123/gfmd-outreach/internal/mail"
	"github.com/mlynnf123/gfmd-outreach/internal/outreach"
	"github.com/mlynnf123/gfmd-outreach/internal/pipeline"
	"github.com/mlynnf123/gfmd-outreach/internal/qualify"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
	"github.com/mlynnf123/gfmd-outreach/internal/sheets"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
	"github.com/mlynnf123/gfmd-outreach/internal/verify"
)

// initStorage opens the contact store and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath, common.SystemClock{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initExporter returns the Sheets exporter, or nil when Google credentials
// are not configured.
func initExporter(ctx context.Context) (*sheets.Exporter, error) {
	if !config.SheetsEnabled() {
		slog.Info("Google Sheets export disabled: no credentials configured")
		return nil, nil
	}

	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, common.NewUserError("Google Sheets is misconfigured", err)
	}

	api, err := sheets.NewGoogleValues(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return sheets.NewExporter(ctx, api, *cfg, common.SystemClock{}, slog.Default())
}

// initDedup loads the dedup engine, reading past leads from the Prospects
// worksheet when exporter is set. The returned func releases the Redis
// connection when one is configured.
func initDedup(ctx context.Context, exporter *sheets.Exporter) (*dedup.Engine, func(), error) {
	cfg := config.LoadDedupConfig()
	opts := dedup.Options{
		CachePath:      cfg.CachePath,
		Fuzzy:          cfg.Fuzzy,
		FuzzyThreshold: cfg.FuzzyThreshold,
		Logger:         slog.Default(),
	}
	if exporter != nil {
		opts.Remote = exporter
	}

	cleanup := func() {}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		set := dedup.NewRedisSet(client, cfg.RedisKey)
		if err := set.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		opts.Set = set
		cleanup = func() { _ = client.Close() }
	}

	engine := dedup.NewEngine(opts)
	if err := engine.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load dedup state: %w", err)
	}
	return engine, cleanup, nil
}

// initLLM creates the shared, retrying, rate-limited model client.
func initLLM(ctx context.Context) (*llm.Managed, error) {
	cfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, common.NewUserError("LLM provider is not configured", err)
	}

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return llm.NewManaged(client, cfg, slog.Default()), nil
}

type agents struct {
	research      *agent.Agent
	qualification *agent.Agent
	composition   *agent.Agent
}

func initAgents(client llm.Client, out config.Outreach) (agents, error) {
	var a agents
	var err error
	logger := slog.Default()

	if a.research, err = agent.New(client, agent.RoleResearch, out.Campaign, out.Sender, logger); err != nil {
		return a, err
	}
	if a.qualification, err = agent.New(client, agent.RoleQualification, out.Campaign, out.Sender, logger); err != nil {
		return a, err
	}
	if a.composition, err = agent.New(client, agent.RoleComposition, out.Campaign, out.Sender, logger); err != nil {
		return a, err
	}
	return a, nil
}

// initSender builds the send gate. dryRun swaps in a mailer that only logs.
func initSender(ctx context.Context, out config.Outreach, store service.ContactStore, exporter *sheets.Exporter, dryRun bool) (*outreach.Sender, error) {
	var mailer service.Mailer
	if dryRun {
		mailer = mail.NewDryRunMailer(slog.Default())
	} else {
		mailCfg, err := config.LoadMailConfig()
		if err != nil {
			return nil, common.NewUserError("mail provider is not configured", err)
		}
		if mailer, err = mail.New(ctx, mailCfg, slog.Default()); err != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", err)
		}
	}

	opts := outreach.Options{
		Mailer:   mailer,
		Verifier: verify.New(config.LoadVerifyOptions(out.Campaign)),
		Counter:  storage.NewFileCounter(out.CounterPath, out.DailyLimit, common.SystemClock{}),
		Store:    store,
		Errors:   storage.NewErrorLog(out.ErrorLogPath, out.ErrorLogSize),
		Logger:   slog.Default(),
	}
	if exporter != nil {
		opts.Exporter = exporter
	}
	return outreach.NewSender(opts)
}

// coordinatorOptions wires agents and the optional collaborators.
func coordinatorOptions(a agents, out config.Outreach, store pipeline.ResearchStore, exporter *sheets.Exporter, sender *outreach.Sender) pipeline.Options {
	opts := pipeline.Options{
		Research:  a.research,
		Qualifier: qualify.NewScorer(a.qualification, out.MinScore, slog.Default()),
		Composer:  a.composition,
		Store:     store,
		Logger:    slog.Default(),
		Signature: out.Sender.Signature,
	}
	if exporter != nil {
		opts.Outputs = exporter
		opts.Prospects = exporter
	}
	if sender != nil {
		opts.Sender = sender
	}
	return opts
}
