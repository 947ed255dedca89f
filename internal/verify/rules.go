package verify

import (
	"regexp"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Verification reasons.
const (
	ReasonVerified        = "verified"
	ReasonInvalidFormat   = "invalid_format"
	ReasonFakePattern     = "fake_pattern"
	ReasonNonTargetDomain = "non_target_domain"
	ReasonGenericRole     = "generic_role_address"
	ReasonDomainNotFound  = "domain_not_found"
)

var emailFormat = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}$`)

// fakePatterns match placeholder and test addresses produced by scrapers and
// synthetic data. They apply to the lower-cased address.
var fakePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^mail\d*@test`),
	regexp.MustCompile(`@testpd\.com$`),
	regexp.MustCompile(`@test\.`),
	regexp.MustCompile(`@example\.(?:com|org|net)$`),
	regexp.MustCompile(`^test\d*@`),
	regexp.MustCompile(`^no-?reply@`),
	regexp.MustCompile(`^(?:john|jane)\.?doe@`),
	regexp.MustCompile(`^123@`),
	regexp.MustCompile(`@(?:domain|email)\.com$`),
	regexp.MustCompile(`fake`),
	regexp.MustCompile(`placeholder`),
	regexp.MustCompile(`asdf`),
	regexp.MustCompile(`xxx`),
}

var targetTLDs = []string{".gov", ".org", ".edu", ".us"}

var campaignKeywords = map[model.Campaign][]string{
	model.CampaignHealthcare: {
		"hospital", "health", "medical", "medicine", "clinic", "lab",
		"diagnostic", "pathology", "physician", "surgical", "care", "med",
	},
	model.CampaignLawEnforcement: {
		"police", "sheriff", "county", "city", "justice", "court",
		"marshal", "forensic", "crime", "constable", "public-safety", "publicsafety",
	},
}

var genericPrefixes = map[string]bool{
	"info":      true,
	"admin":     true,
	"contact":   true,
	"office":    true,
	"support":   true,
	"sales":     true,
	"hello":     true,
	"inquiries": true,
	"reception": true,
	"frontdesk": true,
}

// Organization tokens shorter than this never count as a domain match.
const minOrgToken = 4

var orgStopwords = map[string]bool{
	"the": true, "and": true, "inc": true, "llc": true,
	"center": true, "centre": true, "department": true, "office": true,
	"services": true, "group": true,
}
