package config

import (
	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
	"github.com/mlynnf123/gfmd-outreach/internal/sheets"
)

// LoadGoogleCredentials reads the shared Google credentials.
// It follows this precedence:
// 1. Viper configuration (from config file or GFMD_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*, then GOOGLE_*)
func LoadGoogleCredentials() googleauth.Credentials {
	creds := googleauth.Credentials{
		ClientID:     firstNonEmpty("google.client_id", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_CLIENT_ID"),
		ClientSecret: firstNonEmpty("google.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"),
		RefreshToken: firstNonEmpty("google.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_REFRESH_TOKEN"),
	}
	if v := firstNonEmpty("google.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		creds.ServiceAccountPath = ExpandPath(v)
	}

	// A saved token from "gfmd auth google" fills in a missing refresh token.
	if creds.RefreshToken == "" && creds.ClientID != "" && creds.ServiceAccountPath == "" {
		if token, err := googleauth.LoadToken(TokenFile()); err == nil {
			creds.RefreshToken = token.RefreshToken
		}
	}
	return creds
}

// TokenFile is where interactive Google authentication saves its token.
func TokenFile() string {
	return DataPath("google.token_file", "google-token.json")
}

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	creds := LoadGoogleCredentials()
	config.ClientID = creds.ClientID
	config.ClientSecret = creds.ClientSecret
	config.RefreshToken = creds.RefreshToken
	config.ServiceAccountPath = creds.ServiceAccountPath

	config.SpreadsheetID = firstNonEmpty("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_ID")
	if v := firstNonEmpty("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.time_zone"); v != "" {
		config.TimeZone = v
	}
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}
	if viper.IsSet("sheets.retry_delay") {
		config.RetryDelay = viper.GetDuration("sheets.retry_delay")
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsEnabled reports whether the exporter should be wired in.
func SheetsEnabled() bool {
	if viper.IsSet("sheets.enabled") {
		return viper.GetBool("sheets.enabled")
	}
	return LoadGoogleCredentials().Validate() == nil
}
