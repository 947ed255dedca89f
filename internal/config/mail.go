package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/mail"
)

// LoadMailConfig reads the mail provider settings.
func LoadMailConfig() (mail.Config, error) {
	config := mail.Config{
		Provider:  strings.ToLower(viper.GetString("mail.provider")),
		From:      firstNonEmpty("mail.from", "GMAIL_SENDER", "GMAIL_FROM"),
		FromName:  firstNonEmpty("mail.from_name", "GMAIL_SENDER_NAME"),
		SESRegion: firstNonEmpty("mail.ses_region", "AWS_REGION"),
	}
	if config.Provider == "" {
		config.Provider = mail.ProviderGmail
	}

	switch config.Provider {
	case mail.ProviderGmail:
		config.Google = LoadGoogleCredentials()
	case mail.ProviderSES:
		if config.SESRegion == "" {
			config.SESRegion = "us-east-1"
		}
	case mail.ProviderDryRun:
	default:
		return config, fmt.Errorf("%w: unknown mail provider %q", common.ErrInvalidConfig, config.Provider)
	}

	if config.From == "" && config.Provider != mail.ProviderDryRun {
		return config, fmt.Errorf("%w: mail.from or GMAIL_SENDER is required", common.ErrMissingConfig)
	}
	return config, nil
}
