package dedup

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

var firstNames = []string{
	"Jennifer", "Michael", "Sarah", "David", "Maria", "Robert", "Linda", "James",
	"Patricia", "Daniel", "Angela", "Thomas", "Karen", "Carlos", "Michelle", "Kevin",
}

var lastNames = []string{
	"Martinez", "Johnson", "Williams", "Nguyen", "Garcia", "Brown", "Davis", "Lopez",
	"Wilson", "Anderson", "Thomas", "Moore", "Jackson", "Patel", "Harris", "Clark",
}

type place struct {
	city  string
	state string
}

var places = []place{
	{"Houston", "TX"}, {"Dallas", "TX"}, {"Austin", "TX"}, {"San Antonio", "TX"},
	{"Phoenix", "AZ"}, {"Denver", "CO"}, {"Atlanta", "GA"}, {"Nashville", "TN"},
	{"Oklahoma City", "OK"}, {"Albuquerque", "NM"},
}

type vertical struct {
	orgPatterns   []string
	facilityTypes []string
	titles        []string
	departments   []string
	painPoints    []string
	budgets       []string
	domainSuffix  string
}

var verticals = map[model.Campaign]vertical{
	model.CampaignHealthcare: {
		orgPatterns:   []string{"%s General Hospital", "%s Regional Medical Center", "%s Clinical Laboratory", "%s Community Health", "%s Diagnostic Center"},
		facilityTypes: []string{"Hospital", "Clinical Laboratory", "Diagnostic Center", "Health System"},
		titles:        []string{"Laboratory Director", "Lab Manager", "Director of Pathology", "Toxicology Supervisor", "Chief Medical Officer"},
		departments:   []string{"Laboratory", "Pathology", "Toxicology"},
		painPoints:    []string{"Slow send-out turnaround", "Rising reference lab costs", "Technologist shortage", "Instrument downtime"},
		budgets:       []string{"$50K-$100K", "$100K-$250K", "$250K+"},
		domainSuffix:  ".org",
	},
	model.CampaignLawEnforcement: {
		orgPatterns:   []string{"%s Police Department", "%s County Sheriff's Office", "%s Regional Crime Lab", "%s Narcotics Task Force"},
		facilityTypes: []string{"Police Department", "Sheriff's Office", "Crime Laboratory", "Task Force"},
		titles:        []string{"Chief of Police", "Narcotics Commander", "Sheriff", "Evidence Supervisor", "Crime Lab Director"},
		departments:   []string{"Narcotics", "Evidence", "Investigations"},
		painPoints:    []string{"Evidence testing backlog", "Officer exposure to unknown substances", "Court delays awaiting lab results"},
		budgets:       []string{"$25K-$50K", "$50K-$100K", "$100K+"},
		domainSuffix:  ".gov",
	},
}

// SyntheticGenerator produces realistic test prospects from fixed pools. The
// same seed yields the same sequence.
type SyntheticGenerator struct {
	rng      *rand.Rand
	clock    common.Clock
	vertical vertical
	campaign model.Campaign
}

// NewSyntheticGenerator creates a generator for a campaign.
func NewSyntheticGenerator(campaign model.Campaign, seed int64, clock common.Clock) (*SyntheticGenerator, error) {
	v, ok := verticals[campaign]
	if !ok {
		return nil, fmt.Errorf("%w: unknown campaign %q", common.ErrInvalidConfig, campaign)
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &SyntheticGenerator{
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // test data
		clock:    clock,
		vertical: v,
		campaign: campaign,
	}, nil
}

// Next returns a new candidate prospect.
func (g *SyntheticGenerator) Next() model.Prospect {
	first := pick(g.rng, firstNames)
	last := pick(g.rng, lastNames)
	loc := places[g.rng.Intn(len(places))]
	org := fmt.Sprintf(pick(g.rng, g.vertical.orgPatterns), loc.city)

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	now := g.clock.Now()
	return model.Prospect{
		ID:           id.String(),
		ContactName:  first + " " + last,
		Email:        strings.ToLower(first[:1]+last) + "@" + domainFor(org) + g.vertical.domainSuffix,
		Organization: org,
		Title:        pick(g.rng, g.vertical.titles),
		Location:     loc.city + ", " + loc.state,
		City:         loc.city,
		State:        loc.state,
		FacilityType: pick(g.rng, g.vertical.facilityTypes),
		Phone:        fmt.Sprintf("(%03d) 555-%04d", 200+g.rng.Intn(800), g.rng.Intn(10000)),
		Website:      "https://www." + domainFor(org) + g.vertical.domainSuffix,
		PainPoint:    pick(g.rng, g.vertical.painPoints),
		BudgetRange:  pick(g.rng, g.vertical.budgets),
		Department:   pick(g.rng, g.vertical.departments),
		Priority:     string(model.PriorityMedium),
		Campaign:     g.campaign,
		Status:       model.ContactNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

// domainFor squeezes an organization name into a plausible domain label.
func domainFor(org string) string {
	var b strings.Builder
	for _, word := range strings.Fields(strings.ToLower(org)) {
		word = strings.TrimSuffix(word, "'s")
		switch word {
		case "regional", "community", "general", "of", "the", "office":
			continue
		}
		for _, r := range word {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

var _ Generator = (*SyntheticGenerator)(nil)
