package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/llm"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Task is everything a role may need about one prospect. Each role only
// serializes the parts it uses.
type Task struct {
	Research      *model.ResearchFindings
	Qualification *model.QualificationResult
	Prospect      model.Prospect
}

// QualificationReply is the qualification role's raw verdict.
type QualificationReply struct {
	Reasoning           string   `json:"reasoning"`
	TalkingPoints       []string `json:"key_talking_points"`
	FacilityFit         float64  `json:"facility_fit"`
	PainPointMatch      float64  `json:"pain_point_match"`
	BuyingSignals       float64  `json:"buying_signals"`
	DecisionMakerAccess float64  `json:"decision_maker_access"`
	TotalScore          float64  `json:"total_score"`
}

// Composition is the composition role's draft.
type Composition struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Result describes one agent call.
type Result struct {
	ParseErr error
	Raw      string
	Tokens   model.TokenUsage
	Fallback bool
}

// Agent runs one role for one campaign.
type Agent struct {
	client  llm.Client
	logger  *slog.Logger
	sender  Sender
	profile Profile
	role    Role
}

// New creates an agent. The client is normally an *llm.Managed shared by all
// roles in a run.
func New(client llm.Client, role Role, campaign model.Campaign, sender Sender, logger *slog.Logger) (*Agent, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client is required", common.ErrMissingConfig)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	profile, err := ProfileFor(campaign)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		client:  client,
		logger:  logger.With("agent", string(role)),
		sender:  sender,
		profile: profile,
		role:    role,
	}, nil
}

// Role returns the agent's role.
func (a *Agent) Role() Role { return a.role }

// Campaign returns the agent's campaign.
func (a *Agent) Campaign() model.Campaign { return a.profile.Campaign }

// Run sends the task to the model and decodes the reply into out, which must
// be the role's output type: *model.ResearchFindings, *QualificationReply or
// *Composition. A failed call returns an error wrapping common.ErrAgentFailed.
// A reply that cannot be parsed or fails the role schema is replaced by the
// role's default and reported through Result.Fallback.
func (a *Agent) Run(ctx context.Context, task Task, out any) (Result, error) {
	if err := a.checkOutput(out); err != nil {
		return Result{}, err
	}

	prompt, err := a.buildPrompt(task)
	if err != nil {
		return Result{}, err
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		System:      a.profile.systemPrompt(a.role, a.sender),
		Prompt:      prompt,
		Temperature: a.role.temperature(),
		MaxTokens:   a.role.maxTokens(),
		JSONMode:    true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", common.ErrAgentFailed, a.role, err)
	}

	result := Result{Raw: resp.Content, Tokens: resp.Usage}
	if err := llm.DecodeJSON(resp.Content, a.role.schema(), out); err != nil {
		a.logger.Warn("unusable model reply, using default",
			"organization", task.Prospect.Organization,
			"error", err)
		a.applyDefault(task, out)
		result.Fallback = true
		result.ParseErr = err
	}

	return result, nil
}

func (a *Agent) checkOutput(out any) error {
	var ok bool
	switch a.role {
	case RoleResearch:
		_, ok = out.(*model.ResearchFindings)
	case RoleQualification:
		_, ok = out.(*QualificationReply)
	case RoleComposition:
		_, ok = out.(*Composition)
	}
	if !ok {
		return fmt.Errorf("%s agent cannot decode into %T", a.role, out)
	}
	return nil
}

func (a *Agent) applyDefault(task Task, out any) {
	switch v := out.(type) {
	case *model.ResearchFindings:
		*v = DefaultResearch(task.Prospect, a.profile)
	case *QualificationReply:
		*v = DefaultQualification(a.profile)
	case *Composition:
		*v = DefaultComposition(task.Prospect, a.profile)
	}
}
