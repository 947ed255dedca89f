// Package pipeline sequences research, qualification, composition and sending
// for each prospect and aggregates batch results.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mlynnf123/gfmd-outreach/internal/agent"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/style"
)

// Stage names used in results and recorded agent output.
const (
	StageResearch      = "research"
	StageQualification = "qualification"
	StageComposition   = "composition"
	StageSend          = "send"
)

// Runner is an agent for one role.
type Runner interface {
	Run(ctx context.Context, task agent.Task, out any) (agent.Result, error)
}

// Qualifier scores researched prospects.
type Qualifier interface {
	Score(ctx context.Context, p model.Prospect, findings model.ResearchFindings) (model.QualificationResult, agent.Result)
	MinScore() int
}

// EmailSender delivers a composed email.
type EmailSender interface {
	Send(ctx context.Context, p model.Prospect, email model.ComposedEmail) model.SendResult
}

// OutputRecorder keeps each stage's raw agent output for review.
type OutputRecorder interface {
	ExportAgentOutput(ctx context.Context, output model.AgentOutput) error
}

// ProspectRecorder records qualified prospects.
type ProspectRecorder interface {
	ExportProspect(ctx context.Context, p model.Prospect, qual *model.QualificationResult) error
}

// ResearchStore keeps research notes on the contact record.
type ResearchStore interface {
	UpdateContactResearch(ctx context.Context, email string, notes string) error
}

// Options configures a Coordinator. Research, Qualifier and Composer are
// required. Without a Sender the pipeline stops at COMPOSED.
type Options struct {
	Research  Runner
	Qualifier Qualifier
	Composer  Runner
	Sender    EmailSender
	Outputs   OutputRecorder
	Prospects ProspectRecorder
	Store     ResearchStore
	Clock     common.Clock
	Logger    *slog.Logger
	// OnResult is called after each prospect in a batch.
	OnResult  func(done, total int, result model.ProspectResult)
	Signature string
}

// Coordinator runs prospects through the pipeline. It does not retry; the
// LLM client and the Sheets writer retry their own calls.
type Coordinator struct {
	research  Runner
	qualifier Qualifier
	composer  Runner
	sender    EmailSender
	outputs   OutputRecorder
	prospects ProspectRecorder
	store     ResearchStore
	clock     common.Clock
	logger    *slog.Logger
	onResult  func(done, total int, result model.ProspectResult)
	signature string
}

// New creates a coordinator.
func New(opts Options) (*Coordinator, error) {
	switch {
	case opts.Research == nil:
		return nil, fmt.Errorf("%w: research agent", common.ErrMissingConfig)
	case opts.Qualifier == nil:
		return nil, fmt.Errorf("%w: qualifier", common.ErrMissingConfig)
	case opts.Composer == nil:
		return nil, fmt.Errorf("%w: composition agent", common.ErrMissingConfig)
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Coordinator{
		research:  opts.Research,
		qualifier: opts.Qualifier,
		composer:  opts.Composer,
		sender:    opts.Sender,
		outputs:   opts.Outputs,
		prospects: opts.Prospects,
		store:     opts.Store,
		clock:     opts.Clock,
		logger:    opts.Logger,
		onResult:  opts.OnResult,
		signature: opts.Signature,
	}, nil
}

// ProcessSingle runs one prospect. minScore <= 0 uses the qualifier's
// threshold. Research or qualification failure ends in FAILED; a score below
// minScore ends in SKIPPED without composing.
func (c *Coordinator) ProcessSingle(ctx context.Context, p model.Prospect, minScore int) model.ProspectResult {
	start := c.clock.Now()
	if minScore <= 0 {
		minScore = c.qualifier.MinScore()
	}

	result := model.ProspectResult{Prospect: p, State: model.StatePending}
	logger := c.logger.With("organization", p.Organization, "email", p.Email)

	finish := func() model.ProspectResult {
		result.Duration = c.clock.Now().Sub(start)
		return result
	}
	fail := func(stage string, err error) model.ProspectResult {
		result.State = model.StateFailed
		result.FailedStage = stage
		result.Error = err.Error()
		result.Success = false
		common.LogError(logger, err, "pipeline stage failed", common.Fields{"stage": stage})
		return finish()
	}

	// Research.
	var findings model.ResearchFindings
	res, err := c.research.Run(ctx, agent.Task{Prospect: p}, &findings)
	if err != nil {
		return fail(StageResearch, err)
	}
	findings.Fallback = findings.Fallback || res.Fallback
	result.Research = &findings
	result.Tokens += res.Tokens.Total()
	result.State = model.StateResearched
	c.recordOutput(ctx, p, StageResearch, res, findings)
	c.saveResearch(ctx, logger, p, findings)

	// Qualification. The scorer falls back instead of failing, so only a
	// cancelled run fails here.
	qual, res := c.qualifier.Score(ctx, p, findings)
	if err := ctx.Err(); err != nil {
		return fail(StageQualification, err)
	}
	// The run's threshold decides the action, whatever the scorer was built with.
	qual.RecommendedAction = model.ActionFor(qual.TotalScore, minScore)
	result.Qualification = &qual
	result.Tokens += res.Tokens.Total()
	result.State = model.StateQualified
	c.recordOutput(ctx, p, StageQualification, res, qual)

	p.Priority = string(qual.Priority)
	result.Prospect = p
	if c.prospects != nil {
		if err := c.prospects.ExportProspect(ctx, p, &qual); err != nil {
			common.LogError(logger, err, "failed to export prospect", common.Fields{})
		}
	}

	if qual.TotalScore < minScore {
		logger.Info("below email threshold, skipping composition",
			"score", qual.TotalScore,
			"min_score", minScore)
		result.State = model.StateSkipped
		result.ShouldSendEmail = false
		result.Success = true
		return finish()
	}

	// Composition.
	var draft agent.Composition
	res, err = c.composer.Run(ctx, agent.Task{Prospect: p, Research: &findings, Qualification: &qual}, &draft)
	if err != nil {
		return fail(StageComposition, err)
	}
	result.Tokens += res.Tokens.Total()
	c.recordOutput(ctx, p, StageComposition, res, draft)

	email := model.ComposedEmail{
		To:      p.Email,
		Subject: style.CleanSubject(draft.Subject, p.Organization),
		Body:    style.ComposeEmail(p, draft.Body, c.signature),
	}
	result.Email = &email
	result.State = model.StateComposed
	result.ShouldSendEmail = true
	result.Success = true

	if c.sender == nil {
		return finish()
	}

	// Send.
	sent := c.sender.Send(ctx, p, email)
	result.Send = &sent
	if !sent.Success {
		result.State = model.StateFailed
		result.FailedStage = StageSend
		result.Error = sent.Reason
		if sent.Message != "" {
			result.Error += ": " + sent.Message
		}
		result.Success = false
		logger.Warn("email not sent", "reason", sent.Reason, "message", sent.Message)
		return finish()
	}
	result.State = model.StateSent
	return finish()
}

// ProcessBatch runs prospects one at a time. A failed prospect never stops
// the batch; a cancelled context stops it before the next prospect and the
// partial summary is returned with the context error.
func (c *Coordinator) ProcessBatch(ctx context.Context, prospects []model.Prospect, minScore int) (model.BatchSummary, error) {
	start := c.clock.Now()
	summary := model.BatchSummary{Results: make([]model.ProspectResult, 0, len(prospects))}

	var runErr error
	for i, p := range prospects {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		r := c.ProcessSingle(ctx, p, minScore)
		summary.Add(r)

		if c.onResult != nil {
			c.onResult(i+1, len(prospects), r)
		}
	}

	summary.Duration = c.clock.Now().Sub(start)
	c.logger.Info("batch complete",
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"emails_generated", summary.EmailsGenerated,
		"emails_sent", summary.EmailsSent,
		"high_priority", summary.HighPriority,
		"tokens", summary.TotalTokens,
		"duration", summary.Duration)
	return summary, runErr
}

func (c *Coordinator) recordOutput(ctx context.Context, p model.Prospect, stage string, res agent.Result, decoded any) {
	if c.outputs == nil {
		return
	}

	output := res.Raw
	if output == "" || res.Fallback {
		if data, err := json.Marshal(decoded); err == nil {
			output = string(data)
		}
	}

	err := c.outputs.ExportAgentOutput(ctx, model.AgentOutput{
		Timestamp:    c.clock.Now(),
		Email:        p.Email,
		Organization: p.Organization,
		Stage:        stage,
		Output:       output,
		Tokens:       res.Tokens.Total(),
		Fallback:     res.Fallback,
	})
	if err != nil {
		common.LogError(c.logger, err, "failed to record agent output", common.Fields{"stage": stage})
	}
}

func (c *Coordinator) saveResearch(ctx context.Context, logger *slog.Logger, p model.Prospect, findings model.ResearchFindings) {
	if c.store == nil || findings.OrganizationProfile == "" {
		return
	}
	if err := c.store.UpdateContactResearch(ctx, p.Email, findings.OrganizationProfile); err != nil {
		logger.Debug("research notes not stored", "error", err)
	}
}
