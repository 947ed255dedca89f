// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// ContactStore persists prospects keyed by lower-cased email.
type ContactStore interface {
	// Contact operations
	SaveContacts(ctx context.Context, prospects []model.Prospect) (int, error)
	GetContact(ctx context.Context, email string) (*model.Prospect, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]model.Prospect, error)
	GetContactsForOutreach(ctx context.Context, limit int) ([]model.Prospect, error)

	// Outreach tracking
	RecordEmailSent(ctx context.Context, email string, sent EmailRecord) error
	RecordEmailError(ctx context.Context, email string, errMsg string) error
	UpdateContactResearch(ctx context.Context, email string, notes string) error
	Stats(ctx context.Context) (ContactStats, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ContactFilter narrows ListContacts.
type ContactFilter struct {
	Status   model.ContactStatus
	Campaign model.Campaign
	Limit    int
}

// EmailRecord describes a delivered email for the contact history.
type EmailRecord struct {
	SentAt    time.Time
	MessageID string
	Subject   string
}

// ContactStats summarizes the contact store.
type ContactStats struct {
	ByStatus  map[model.ContactStatus]int
	Total     int
	EmailsOut int
}

// Mailer delivers a composed email and returns the provider message ID.
type Mailer interface {
	Send(ctx context.Context, email model.ComposedEmail) (string, error)
}

// Verifier checks that a recipient address is worth sending to.
type Verifier interface {
	Verify(ctx context.Context, email string, prospect model.Prospect) model.VerificationResult
}

// SendCounter tracks how many emails went out today.
type SendCounter interface {
	CanSendMore() (bool, error)
	Increment() (int, error)
	Count() (int, error)
	Limit() int
}

// ErrorRecorder keeps a rolling log of send failures.
type ErrorRecorder interface {
	Record(entry model.SendError) error
}

// Exporter mirrors pipeline activity into the tracking spreadsheet.
type Exporter interface {
	ExportProspect(ctx context.Context, prospect model.Prospect, qual *model.QualificationResult) error
	ExportSentEmail(ctx context.Context, prospect model.Prospect, email model.ComposedEmail, result model.SendResult) error
	ExportAgentOutput(ctx context.Context, output model.AgentOutput) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
