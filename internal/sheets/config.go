// Package sheets mirrors outreach activity into a Google Sheets workbook and
// reads previously recorded leads back for duplicate checks.
package sheets

import (
	"fmt"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
)

// DefaultSpreadsheetName is used when a new workbook is created.
const DefaultSpreadsheetName = "GFMD Outreach Tracking"

// Config holds the configuration for the Google Sheets exporter.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	RetryAttempts      int
	RetryDelay         time.Duration
	MaxRetryDelay      time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		EnableFormatting: true,
		TimeZone:         "America/Chicago",
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		MaxRetryDelay:    30 * time.Second,
	}
}

// Credentials returns the Google authentication settings.
func (c *Config) Credentials() googleauth.Credentials {
	return googleauth.Credentials{
		ClientID:           c.ClientID,
		ClientSecret:       c.ClientSecret,
		RefreshToken:       c.RefreshToken,
		ServiceAccountPath: c.ServiceAccountPath,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Credentials().Validate(); err != nil {
		return err
	}
	return c.validateRetry()
}

func (c *Config) validateRetry() error {
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 || c.MaxRetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}
