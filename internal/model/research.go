package model

// ResearchFindings is what the research agent learned about a prospect.
type ResearchFindings struct {
	OrganizationProfile string   `json:"organization_profile"`
	PainPoints          []string `json:"pain_points"`
	BuyingSignals       []string `json:"buying_signals"`
	DecisionMaker       string   `json:"decision_maker"`
	Confidence          string   `json:"confidence"`
	Fallback            bool     `json:"-"`
}
