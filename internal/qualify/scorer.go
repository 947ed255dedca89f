// Package qualify turns research findings into a bounded qualification score,
// a priority tier and a recommended action.
package qualify

import (
	"context"
	"log/slog"
	"math"

	"github.com/mlynnf123/gfmd-outreach/internal/agent"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// DefaultMinScore is the email threshold when none is configured.
const DefaultMinScore = 50

// Fallback totals.
var (
	normalFallback   = model.SubScores{FacilityFit: 18, PainPointMatch: 15, BuyingSignals: 15, DecisionMakerAccess: 12}
	degradedFallback = model.SubScores{FacilityFit: 12, PainPointMatch: 10, BuyingSignals: 10, DecisionMakerAccess: 8}
)

// Runner is the part of agent.Agent the scorer needs.
type Runner interface {
	Run(ctx context.Context, task agent.Task, out any) (agent.Result, error)
	Campaign() model.Campaign
}

// Scorer qualifies prospects with the qualification agent.
type Scorer struct {
	agent    Runner
	logger   *slog.Logger
	minScore int
}

// NewScorer creates a scorer. minScore is the single threshold that decides
// whether a prospect gets an email; it is also what the coordinator uses.
func NewScorer(a Runner, minScore int, logger *slog.Logger) *Scorer {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{agent: a, minScore: minScore, logger: logger}
}

// MinScore returns the configured email threshold.
func (s *Scorer) MinScore() int { return s.minScore }

// Score qualifies a prospect. It never fails: an agent error or an unusable
// reply produces the fallback result, degraded when the research itself was a
// fallback. The returned agent.Result carries token usage and the raw reply.
func (s *Scorer) Score(ctx context.Context, p model.Prospect, findings model.ResearchFindings) (model.QualificationResult, agent.Result) {
	var reply agent.QualificationReply
	res, err := s.agent.Run(ctx, agent.Task{Prospect: p, Research: &findings}, &reply)
	if err != nil || res.Fallback {
		if err != nil {
			s.logger.Warn("qualification agent failed, using fallback score",
				"organization", p.Organization,
				"error", err)
		}
		return s.Fallback(findings.Fallback), res
	}

	return s.fromReply(p, reply), res
}

// Fallback returns the deterministic default result.
func (s *Scorer) Fallback(degraded bool) model.QualificationResult {
	scores := normalFallback
	reasoning := "Default qualification applied: the model reply was unavailable."
	if degraded {
		scores = degradedFallback
		reasoning = "Degraded default qualification applied: research and qualification replies were unavailable."
	}
	return s.build(scores, reasoning, s.defaultTalkingPoints(), true)
}

func (s *Scorer) fromReply(p model.Prospect, reply agent.QualificationReply) model.QualificationResult {
	scores := model.SubScores{
		FacilityFit:         round(reply.FacilityFit),
		PainPointMatch:      round(reply.PainPointMatch),
		BuyingSignals:       round(reply.BuyingSignals),
		DecisionMakerAccess: round(reply.DecisionMakerAccess),
	}.Clamp()

	if reported := round(reply.TotalScore); reported != 0 && reported != scores.Total() {
		s.logger.Debug("model total disagrees with sub-scores",
			"organization", p.Organization,
			"reported", reported,
			"computed", scores.Total())
	}

	talking := reply.TalkingPoints
	if len(talking) == 0 {
		talking = s.defaultTalkingPoints()
	}
	return s.build(scores, reply.Reasoning, talking, false)
}

func (s *Scorer) build(scores model.SubScores, reasoning string, talking []string, fallback bool) model.QualificationResult {
	total := scores.Total()
	return model.QualificationResult{
		Reasoning:         reasoning,
		Priority:          model.PriorityFor(total),
		RecommendedAction: model.ActionFor(total, s.minScore),
		TalkingPoints:     talking,
		Scores:            scores,
		TotalScore:        total,
		Fallback:          fallback,
	}
}

func (s *Scorer) defaultTalkingPoints() []string {
	profile, err := agent.ProfileFor(s.agent.Campaign())
	if err != nil {
		return []string{"Faster turnaround", "Predictable pricing", "Local support"}
	}
	return append([]string(nil), profile.TalkingPoints...)
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
