package agent

import (
	"fmt"
	"strings"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/style"
)

// DefaultResearch is used when the research reply is unusable. It is built
// only from what the prospect record already says.
func DefaultResearch(p model.Prospect, profile Profile) model.ResearchFindings {
	kind := p.FacilityType
	if kind == "" {
		kind = "organization"
	}
	org := style.CleanOrganizationName(p.Organization)
	summary := fmt.Sprintf("%s is a %s", org, strings.ToLower(kind))
	if p.Location != "" {
		summary += " in " + p.Location
	}

	pains := append([]string(nil), profile.PainPoints...)
	if p.PainPoint != "" {
		pains = append([]string{p.PainPoint}, pains...)
	}

	decisionMaker := p.Title
	if decisionMaker == "" {
		decisionMaker = profile.DecisionMaker
	}

	return model.ResearchFindings{
		OrganizationProfile: summary + ".",
		PainPoints:          pains,
		DecisionMaker:       decisionMaker,
		Confidence:          "low",
		Fallback:            true,
	}
}

// DefaultQualification mirrors the scorer's normal fallback.
func DefaultQualification(profile Profile) QualificationReply {
	return QualificationReply{
		Reasoning:           "Default qualification: model reply was unusable.",
		TalkingPoints:       append([]string(nil), profile.TalkingPoints...),
		FacilityFit:         18,
		PainPointMatch:      15,
		BuyingSignals:       15,
		DecisionMakerAccess: 12,
		TotalScore:          60,
	}
}

// DefaultComposition is a plain template email for the campaign.
func DefaultComposition(p model.Prospect, profile Profile) Composition {
	org := style.CleanOrganizationName(p.Organization)
	if org == "" {
		org = "your team"
	}
	body := profile.DefaultOpening + "\n\n" + profile.DefaultValueAdd +
		"\n\nWould a 15-minute call next week be worth it to see if this fits " + org + "?"
	return Composition{
		Subject: fmt.Sprintf(profile.DefaultSubject, org),
		Body:    body,
	}
}
