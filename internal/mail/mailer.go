package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// Providers.
const (
	ProviderGmail  = "gmail"
	ProviderSES    = "ses"
	ProviderDryRun = "dry-run"
)

// Config selects and configures a mail provider.
type Config struct {
	Google    googleauth.Credentials
	Provider  string
	From      string
	FromName  string
	SESRegion string
}

// New builds the mailer for cfg.Provider.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (service.Mailer, error) {
	from := Sender{Address: cfg.From, Name: cfg.FromName}

	switch cfg.Provider {
	case ProviderGmail, "":
		return NewGmailMailer(ctx, cfg.Google, from, logger)
	case ProviderSES:
		return NewSESMailer(ctx, cfg.SESRegion, from, logger)
	case ProviderDryRun:
		return NewDryRunMailer(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown mail provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

// DryRunMailer logs messages instead of delivering them.
type DryRunMailer struct {
	logger *slog.Logger
	sent   []model.ComposedEmail
	mu     sync.Mutex
}

// NewDryRunMailer creates a mailer that never delivers.
func NewDryRunMailer(logger *slog.Logger) *DryRunMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunMailer{logger: logger}
}

// Send records the email and returns a synthetic message ID.
func (m *DryRunMailer) Send(_ context.Context, email model.ComposedEmail) (string, error) {
	if err := ValidateRecipient(email); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()

	id := "dry-run-" + uuid.NewString()
	m.logger.Info("dry run: email not sent", "to", email.To, "subject", email.Subject, "message_id", id)
	return id, nil
}

// Sent returns the emails passed to Send.
func (m *DryRunMailer) Sent() []model.ComposedEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ComposedEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
