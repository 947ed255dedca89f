package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Fixture is a named set of prospects.
type Fixture string

// Predefined fixtures.
const (
	FixtureHealthcare     Fixture = "healthcare"
	FixtureLawEnforcement Fixture = "law_enforcement"
	FixtureMixed          Fixture = "mixed"
)

var healthcareProspects = []model.Prospect{
	{
		ContactName:  "Dr. Jennifer Martinez",
		Email:        "jmartinez@houstonmethodist.org",
		Organization: "Houston Methodist",
		Title:        "Laboratory Director",
		Location:     "Houston, TX",
		FacilityType: "Hospital",
		PainPoint:    "Slow turnaround on toxicology panels",
		BudgetRange:  "$100K+",
		Campaign:     model.CampaignHealthcare,
	},
	{
		ContactName:  "Robert Chen",
		Email:        "rchen@memorialhermann.org",
		Organization: "Memorial Hermann",
		Title:        "Director of Pathology",
		Location:     "Houston, TX",
		FacilityType: "Hospital System",
		Campaign:     model.CampaignHealthcare,
	},
	{
		ContactName:  "Angela Brooks",
		Email:        "abrooks@baylorscottwhite.com",
		Organization: "Baylor Scott & White Health",
		Title:        "Lab Manager",
		Location:     "Dallas, TX",
		FacilityType: "Clinical Lab",
		Campaign:     model.CampaignHealthcare,
	},
}

var lawEnforcementProspects = []model.Prospect{
	{
		ContactName:  "Sgt. James Williams",
		Email:        "jwilliams@sheriff.hctx.net",
		Organization: "Harris County Sheriff's Office",
		Title:        "Crime Lab Supervisor",
		Location:     "Houston, TX",
		FacilityType: "Sheriff's Office",
		PainPoint:    "Evidence testing backlog",
		Campaign:     model.CampaignLawEnforcement,
	},
	{
		ContactName:  "Lt. Maria Lopez",
		Email:        "mlopez@austintexas.gov",
		Organization: "Austin Police Department",
		Title:        "Forensics Division Commander",
		Location:     "Austin, TX",
		FacilityType: "Police Department",
		Campaign:     model.CampaignLawEnforcement,
	},
}

// ProspectBuilder assembles prospects for a test.
type ProspectBuilder struct {
	t         *testing.T
	prospects []model.Prospect
}

// NewProspectBuilder creates an empty builder.
func NewProspectBuilder(t *testing.T) *ProspectBuilder {
	t.Helper()
	return &ProspectBuilder{t: t}
}

// WithFixture adds every prospect in a fixture.
func (b *ProspectBuilder) WithFixture(f Fixture) *ProspectBuilder {
	b.t.Helper()
	switch f {
	case FixtureHealthcare:
		b.prospects = append(b.prospects, healthcareProspects...)
	case FixtureLawEnforcement:
		b.prospects = append(b.prospects, lawEnforcementProspects...)
	case FixtureMixed:
		b.prospects = append(b.prospects, healthcareProspects...)
		b.prospects = append(b.prospects, lawEnforcementProspects...)
	default:
		b.t.Fatalf("unknown fixture %q", f)
	}
	return b
}

// WithProspect adds one prospect.
func (b *ProspectBuilder) WithProspect(p model.Prospect) *ProspectBuilder {
	b.prospects = append(b.prospects, p)
	return b
}

// WithGenerated adds n numbered prospects at example.org-style domains
// derived from org.
func (b *ProspectBuilder) WithGenerated(n int, org string, campaign model.Campaign) *ProspectBuilder {
	domain := strings.ToLower(strings.Join(strings.Fields(org), "")) + ".org"
	for i := 1; i <= n; i++ {
		b.prospects = append(b.prospects, model.Prospect{
			ContactName:  fmt.Sprintf("Contact %d", i),
			Email:        fmt.Sprintf("contact%d@%s", i, domain),
			Organization: org,
			Campaign:     campaign,
		})
	}
	return b
}

// Build returns copies of the accumulated prospects with the status set to
// new where unset.
func (b *ProspectBuilder) Build() []model.Prospect {
	out := make([]model.Prospect, len(b.prospects))
	copy(out, b.prospects)
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = model.ContactNew
		}
	}
	return out
}
