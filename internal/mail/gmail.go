package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// GmailMailer sends through the Gmail API as the authenticated user.
type GmailMailer struct {
	service *gmail.Service
	clock   common.Clock
	logger  *slog.Logger
	from    Sender
	retry   service.RetryOptions
}

// NewGmailMailer authenticates and builds a Gmail mailer.
func NewGmailMailer(ctx context.Context, creds googleauth.Credentials, from Sender, logger *slog.Logger) (*GmailMailer, error) {
	if creds.ServiceAccountPath != "" && creds.Subject == "" {
		creds.Subject = from.Address
	}
	opt, err := googleauth.ClientOption(ctx, creds, gmail.GmailSendScope)
	if err != nil {
		return nil, err
	}
	return NewGmailMailerWithOptions(ctx, from, logger, opt)
}

// NewGmailMailerWithOptions builds a Gmail mailer from raw client options.
func NewGmailMailerWithOptions(ctx context.Context, from Sender, logger *slog.Logger, opts ...option.ClientOption) (*GmailMailer, error) {
	if from.Address == "" {
		return nil, fmt.Errorf("%w: sender address", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}

	return &GmailMailer{
		service: srv,
		clock:   common.SystemClock{},
		logger:  logger,
		from:    from,
		retry:   service.RetryOptions{MaxAttempts: 3},
	}, nil
}

// Send implements service.Mailer.
func (m *GmailMailer) Send(ctx context.Context, email model.ComposedEmail) (string, error) {
	if err := ValidateRecipient(email); err != nil {
		return "", err
	}

	raw := BuildMessage(m.from, email, m.clock.Now())
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	var sent *gmail.Message
	err := common.WithRetry(ctx, func() error {
		var sendErr error
		sent, sendErr = m.service.Users.Messages.Send("me", msg).Context(ctx).Do()
		return classifySendError(sendErr)
	}, m.retry)
	if err != nil {
		return "", fmt.Errorf("gmail send to %s: %w", email.To, err)
	}

	m.logger.Debug("gmail message sent", "to", email.To, "message_id", sent.Id)
	return sent.Id, nil
}

// classifySendError retries only throttling. Any other failure may have
// reached the recipient, so it is not repeated.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &common.RetryableError{Err: fmt.Errorf("%w: %v", common.ErrRateLimit, err), Retryable: true}
	}
	return &common.RetryableError{Err: err, Retryable: false}
}
