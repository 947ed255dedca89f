package model

import "time"

// State is a prospect's position in the pipeline.
type State string

// Pipeline states. SENT, FAILED and SKIPPED are terminal; COMPOSED is terminal
// for runs without a sender.
const (
	StatePending    State = "PENDING"
	StateResearched State = "RESEARCHED"
	StateQualified  State = "QUALIFIED"
	StateComposed   State = "COMPOSED"
	StateSkipped    State = "SKIPPED"
	StateSent       State = "SENT"
	StateFailed     State = "FAILED"
)

// Terminal reports whether no further stage runs after s.
func (s State) Terminal() bool {
	switch s {
	case StateSent, StateFailed, StateSkipped:
		return true
	default:
		return false
	}
}

// TokenUsage counts model tokens for one agent call.
type TokenUsage struct {
	Prompt     int
	Completion int
}

// Total returns prompt plus completion tokens.
func (u TokenUsage) Total() int {
	return u.Prompt + u.Completion
}

// ProspectResult is the outcome of running one prospect through the pipeline.
type ProspectResult struct {
	Research        *ResearchFindings
	Qualification   *QualificationResult
	Email           *ComposedEmail
	Send            *SendResult
	Prospect        Prospect
	State           State
	FailedStage     string
	Error           string
	Tokens          int
	Duration        time.Duration
	Success         bool
	ShouldSendEmail bool
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Results         []ProspectResult
	Total           int
	Successful      int
	Failed          int
	Skipped         int
	EmailsGenerated int
	EmailsSent      int
	HighPriority    int
	TotalTokens     int
	Duration        time.Duration
}

// AgentOutput is one stage's raw output, recorded for review.
type AgentOutput struct {
	Timestamp    time.Time
	Email        string
	Organization string
	Stage        string
	Output       string
	Tokens       int
	Fallback     bool
}

// Add folds one prospect result into the summary.
func (s *BatchSummary) Add(r ProspectResult) {
	s.Results = append(s.Results, r)
	s.Total++
	s.TotalTokens += r.Tokens

	switch {
	case r.State == StateSkipped:
		s.Skipped++
		s.Successful++
	case r.Success:
		s.Successful++
	default:
		s.Failed++
	}
	if r.Email != nil {
		s.EmailsGenerated++
	}
	if r.Send != nil && r.Send.Success {
		s.EmailsSent++
	}
	if r.Qualification != nil && r.Qualification.Priority == PriorityHigh {
		s.HighPriority++
	}
}
