package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// SESAPI is the SES call the mailer makes.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES.
type SESMailer struct {
	client SESAPI
	logger *slog.Logger
	from   Sender
}

// NewSESMailer loads the default AWS configuration for region.
func NewSESMailer(ctx context.Context, region string, from Sender, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESMailerWithClient(ses.NewFromConfig(cfg), from, logger)
}

// NewSESMailerWithClient wraps an existing SES client.
func NewSESMailerWithClient(client SESAPI, from Sender, logger *slog.Logger) (*SESMailer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: SES client", common.ErrMissingConfig)
	}
	if from.Address == "" {
		return nil, fmt.Errorf("%w: sender address", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SESMailer{client: client, from: from, logger: logger}, nil
}

// Send implements service.Mailer.
func (m *SESMailer) Send(ctx context.Context, email model.ComposedEmail) (string, error) {
	if err := ValidateRecipient(email); err != nil {
		return "", err
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from.String()),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(email.Body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send to %s: %w", email.To, err)
	}

	id := aws.ToString(out.MessageId)
	m.logger.Debug("ses message sent", "to", email.To, "message_id", id)
	return id, nil
}
