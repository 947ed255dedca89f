// Package outreach gates every outbound email: daily limit, recipient
// verification, delivery, then bookkeeping.
package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// Options configures a Sender. Mailer, Verifier and Counter are required;
// Store, Errors and Exporter are optional bookkeeping collaborators.
type Options struct {
	Mailer   service.Mailer
	Verifier service.Verifier
	Counter  service.SendCounter
	Store    service.ContactStore
	Errors   service.ErrorRecorder
	Exporter service.Exporter
	Clock    common.Clock
	Logger   *slog.Logger
}

// Sender sends one email to one prospect.
type Sender struct {
	mailer   service.Mailer
	verifier service.Verifier
	counter  service.SendCounter
	store    service.ContactStore
	errors   service.ErrorRecorder
	exporter service.Exporter
	clock    common.Clock
	logger   *slog.Logger
}

// NewSender validates opts and creates a Sender.
func NewSender(opts Options) (*Sender, error) {
	switch {
	case opts.Mailer == nil:
		return nil, fmt.Errorf("%w: mailer", common.ErrMissingConfig)
	case opts.Verifier == nil:
		return nil, fmt.Errorf("%w: verifier", common.ErrMissingConfig)
	case opts.Counter == nil:
		return nil, fmt.Errorf("%w: send counter", common.ErrMissingConfig)
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Sender{
		mailer:   opts.Mailer,
		verifier: opts.Verifier,
		counter:  opts.Counter,
		store:    opts.Store,
		errors:   opts.Errors,
		exporter: opts.Exporter,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}, nil
}

// Send delivers email to prospect. Failures come back as a result with a
// reason, never as an error. Bookkeeping failures after a successful delivery
// are logged and do not change the result.
func (s *Sender) Send(ctx context.Context, prospect model.Prospect, email model.ComposedEmail) model.SendResult {
	if email.To == "" {
		email.To = prospect.Email
	}
	email.To = strings.TrimSpace(email.To)
	if email.To == "" {
		return model.SendResult{Reason: model.ReasonNoEmail, Message: "prospect has no email address"}
	}

	ok, err := s.counter.CanSendMore()
	if err != nil {
		common.LogError(s.logger, err, "failed to read send counter", common.Fields{"email": email.To})
		return model.SendResult{Reason: model.ReasonSendFailed, Message: err.Error()}
	}
	if !ok {
		s.logger.Info("daily send limit reached",
			"limit", s.counter.Limit(),
			"email", email.To)
		return model.SendResult{
			Reason:  model.ReasonDailyLimitReached,
			Message: fmt.Sprintf("daily limit of %d emails reached", s.counter.Limit()),
		}
	}

	check := s.verifier.Verify(ctx, email.To, prospect)
	if !check.Valid {
		s.logger.Info("recipient failed verification",
			"email", email.To,
			"reason", check.Reason)
		return model.SendResult{Reason: model.ReasonVerificationFailed, Message: check.Reason}
	}
	if check.Caution {
		s.logger.Warn("sending to generic role address", "email", email.To)
	}

	messageID, err := s.mailer.Send(ctx, email)
	if err != nil {
		s.recordFailure(ctx, prospect, email, err)
		return model.SendResult{
			Reason:  model.ReasonSendFailed,
			Message: fmt.Errorf("%w: %v", common.ErrSendFailed, err).Error(),
		}
	}

	result := model.SendResult{
		Success:   true,
		MessageID: messageID,
		Reason:    model.ReasonSent,
		SentAt:    s.clock.Now(),
	}
	s.recordSuccess(ctx, prospect, email, result)
	return result
}

func (s *Sender) recordSuccess(ctx context.Context, prospect model.Prospect, email model.ComposedEmail, result model.SendResult) {
	fields := common.Fields{"email": email.To, "message_id": result.MessageID}

	count, err := s.counter.Increment()
	if err != nil {
		common.LogError(s.logger, err, "failed to increment send counter", fields)
	}

	if s.store != nil {
		rec := service.EmailRecord{SentAt: result.SentAt, MessageID: result.MessageID, Subject: email.Subject}
		if err := s.store.RecordEmailSent(ctx, email.To, rec); err != nil {
			common.LogError(s.logger, err, "failed to record sent email", fields)
		}
	}

	if s.exporter != nil {
		if err := s.exporter.ExportSentEmail(ctx, prospect, email, result); err != nil {
			common.LogError(s.logger, err, "failed to export sent email", fields)
		}
	}

	s.logger.Info("email sent",
		"email", email.To,
		"organization", prospect.Organization,
		"message_id", result.MessageID,
		"sent_today", count)
}

func (s *Sender) recordFailure(ctx context.Context, prospect model.Prospect, email model.ComposedEmail, sendErr error) {
	fields := common.Fields{"email": email.To, "organization": prospect.Organization}
	common.LogError(s.logger, sendErr, "email send failed", fields)

	if s.store != nil {
		if err := s.store.RecordEmailError(ctx, email.To, sendErr.Error()); err != nil {
			common.LogError(s.logger, err, "failed to record send error on contact", fields)
		}
	}

	if s.errors != nil {
		entry := model.SendError{
			Timestamp:    s.clock.Now(),
			Email:        email.To,
			Organization: prospect.Organization,
			Subject:      email.Subject,
			Error:        sendErr.Error(),
		}
		if err := s.errors.Record(entry); err != nil {
			common.LogError(s.logger, err, "failed to write error log", fields)
		}
	}
}
