package agent

import (
	"fmt"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Sender describes who the outreach is from.
type Sender struct {
	Name      string
	Title     string
	Company   string
	Signature string
}

// Profile carries the campaign-specific wording for every role.
type Profile struct {
	Campaign        model.Campaign
	Audience        string
	Offering        string
	DecisionMaker   string
	PainPoints      []string
	TalkingPoints   []string
	DefaultSubject  string
	DefaultOpening  string
	DefaultValueAdd string
}

var profiles = map[model.Campaign]Profile{
	model.CampaignHealthcare: {
		Campaign:      model.CampaignHealthcare,
		Audience:      "hospital laboratories, clinics and diagnostic centers",
		Offering:      "GC-MS and toxicology testing services with fast turnaround and local support",
		DecisionMaker: "Laboratory Director",
		PainPoints: []string{
			"Long turnaround times on send-out testing",
			"Rising per-test costs from reference labs",
			"Staffing shortages in the laboratory",
		},
		TalkingPoints: []string{
			"Faster turnaround on confirmatory testing",
			"Predictable per-test pricing",
			"Local technical support",
		},
		DefaultSubject:  "Faster confirmatory testing for %s",
		DefaultOpening:  "I work with laboratory teams that want quicker confirmatory results without adding staff.",
		DefaultValueAdd: "We run GC-MS confirmation with short turnaround and flat pricing, and we handle the logistics end to end.",
	},
	model.CampaignLawEnforcement: {
		Campaign:      model.CampaignLawEnforcement,
		Audience:      "police departments, sheriff's offices and county agencies",
		Offering:      "field narcotics identification and evidence testing that shortens case backlogs",
		DecisionMaker: "Narcotics Division Commander",
		PainPoints: []string{
			"Evidence testing backlogs at the state crime lab",
			"Officer exposure to unknown substances",
			"Cases delayed waiting on lab confirmation",
		},
		TalkingPoints: []string{
			"Shorter evidence backlogs",
			"Safer handling of unknown substances",
			"Court-ready documentation",
		},
		DefaultSubject:  "Reducing narcotics testing backlogs at %s",
		DefaultOpening:  "I work with agencies that are waiting weeks on lab confirmation for narcotics cases.",
		DefaultValueAdd: "Our field identification and confirmation workflow cuts that wait and keeps officers away from unknown substances.",
	},
}

// ProfileFor returns the wording for a campaign.
func ProfileFor(c model.Campaign) (Profile, error) {
	p, ok := profiles[c]
	if !ok {
		return Profile{}, fmt.Errorf("unknown campaign %q", c)
	}
	return p, nil
}

func (p Profile) systemPrompt(role Role, sender Sender) string {
	company := sender.Company
	if company == "" {
		company = "our company"
	}

	switch role {
	case RoleResearch:
		return fmt.Sprintf(`You research prospects for %s, which sells %s to %s.
Given a prospect, describe the organization and identify likely pain points, buying signals and the best decision maker.
Respond with ONLY a JSON object:
{"organization_profile": string, "pain_points": [string], "buying_signals": [string], "decision_maker": string, "confidence": "high"|"medium"|"low"}`,
			company, p.Offering, p.Audience)

	case RoleQualification:
		return fmt.Sprintf(`You qualify sales prospects for %s (%s).
Score the prospect using the research provided:
- facility_fit: 0-30, how well the organization matches %s
- pain_point_match: 0-25, how closely their problems match what we solve
- buying_signals: 0-25, evidence of budget, growth or active evaluation
- decision_maker_access: 0-20, how reachable the decision maker is
total_score must equal the sum of the four scores.
Respond with ONLY a JSON object:
{"facility_fit": int, "pain_point_match": int, "buying_signals": int, "decision_maker_access": int, "total_score": int, "reasoning": string, "key_talking_points": [string]}`,
			company, p.Offering, p.Audience)

	case RoleComposition:
		return fmt.Sprintf(`You write short, plain cold emails for %s on behalf of %s.
We offer %s.
Rules: under 150 words, no greeting line, no sign-off, no emojis, no bullet points, no marketing buzzwords, one clear question at the end.
Respond with ONLY a JSON object: {"subject": string, "body": string}`,
			company, sender.Name, p.Offering)

	default:
		return ""
	}
}
