package model

// Priority is the HIGH/MEDIUM/LOW bucket derived from a qualification score.
type Priority string

// Priority constants.
const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Action is the recommended next step for a qualified prospect.
type Action string

// Action constants.
const (
	ActionSendEmail Action = "send_email"
	ActionNurture   Action = "nurture"
	ActionSkip      Action = "skip"
)

// Sub-score bounds. The total is the sum and so never exceeds MaxTotalScore.
const (
	MaxFacilityFit          = 30
	MaxPainPointMatch       = 25
	MaxBuyingSignals        = 25
	MaxDecisionMakerAccess  = 20
	MaxTotalScore           = MaxFacilityFit + MaxPainPointMatch + MaxBuyingSignals + MaxDecisionMakerAccess
	HighPriorityThreshold   = 70
	MediumPriorityThreshold = 50
)

// SubScores holds the four weighted qualification criteria.
type SubScores struct {
	FacilityFit         int `json:"facility_fit"`
	PainPointMatch      int `json:"pain_point_match"`
	BuyingSignals       int `json:"buying_signals"`
	DecisionMakerAccess int `json:"decision_maker_access"`
}

// Clamp bounds each sub-score to its range.
func (s SubScores) Clamp() SubScores {
	return SubScores{
		FacilityFit:         clamp(s.FacilityFit, MaxFacilityFit),
		PainPointMatch:      clamp(s.PainPointMatch, MaxPainPointMatch),
		BuyingSignals:       clamp(s.BuyingSignals, MaxBuyingSignals),
		DecisionMakerAccess: clamp(s.DecisionMakerAccess, MaxDecisionMakerAccess),
	}
}

// Total sums the sub-scores.
func (s SubScores) Total() int {
	return s.FacilityFit + s.PainPointMatch + s.BuyingSignals + s.DecisionMakerAccess
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// QualificationResult is the scored verdict on a prospect.
type QualificationResult struct {
	Reasoning         string
	Priority          Priority
	RecommendedAction Action
	TalkingPoints     []string
	Scores            SubScores
	TotalScore        int
	Fallback          bool
}

// PriorityFor derives the tier from a total score.
func PriorityFor(total int) Priority {
	switch {
	case total >= HighPriorityThreshold:
		return PriorityHigh
	case total >= MediumPriorityThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ActionFor derives the recommended action from a total and the run's minimum
// score for email. Below the minimum, medium-tier prospects are nurtured.
func ActionFor(total, minScore int) Action {
	switch {
	case total >= minScore:
		return ActionSendEmail
	case total >= MediumPriorityThreshold:
		return ActionNurture
	default:
		return ActionSkip
	}
}
