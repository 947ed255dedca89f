// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// Campaign selects the outreach vertical a prospect belongs to.
type Campaign string

// Campaign constants.
const (
	CampaignHealthcare     Campaign = "healthcare"
	CampaignLawEnforcement Campaign = "law_enforcement"
)

// Valid reports whether c is a known campaign.
func (c Campaign) Valid() bool {
	return c == CampaignHealthcare || c == CampaignLawEnforcement
}

// ContactStatus tracks where a prospect sits in the outreach lifecycle.
type ContactStatus string

// Contact status constants.
const (
	ContactNew       ContactStatus = "new"
	ContactContacted ContactStatus = "contacted"
	ContactError     ContactStatus = "error"
)

// Prospect is a contact/organization pair targeted for outreach.
type Prospect struct {
	LastContacted *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	ID           string
	ContactName  string
	Email        string
	Organization string
	Title        string
	Location     string
	City         string
	State        string
	FacilityType string
	Phone        string
	Website      string

	PainPoint   string
	BudgetRange string
	Department  string
	Priority    string
	Campaign    Campaign

	Status        ContactStatus
	LastError     string
	ResearchNotes string
	EmailsSent    int
}

// Key returns the store key for the prospect: the lower-cased, trimmed email.
func (p *Prospect) Key() string {
	return NormalizeEmail(p.Email)
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last @, lower-cased.
func EmailDomain(email string) string {
	email = NormalizeEmail(email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
