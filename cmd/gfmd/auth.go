package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authGoogleCmd())

	return cmd
}

func authGoogleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authorize Gmail sending and Sheets tracking",
		Long: `Authenticate with Google using OAuth2.

This command opens a local callback server, prints the consent URL and saves
the resulting refresh token to the data directory. Gmail sends and Sheets
exports pick up the saved token automatically.

Service-account setups (google.service_account) do not need this step.`,
		RunE: runAuthGoogle,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("listen", "localhost:8080", "address for the OAuth2 callback server")

	return cmd
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	creds := config.LoadGoogleCredentials()
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		creds.ClientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		creds.ClientSecret = flagSecret
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return common.NewUserError(
			"OAuth2 credentials not found. Set google.client_id and google.client_secret in config or use --client-id and --client-secret",
			common.ErrMissingConfig)
	}

	listen, _ := cmd.Flags().GetString("listen")
	tokenFile := config.TokenFile()
	slog.Info("Starting Google authentication", "token_file", tokenFile)

	token, err := googleauth.Authenticate(ctx, googleauth.InteractiveConfig{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenFile:    tokenFile,
		ListenAddr:   listen,
	}, func(url string) {
		fmt.Fprintln(out, cli.FormatTitle("Google authorization"))
		fmt.Fprintln(out, "Open this URL in your browser and approve access:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  "+url)
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatInfo("Waiting for the callback..."))
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if token.RefreshToken == "" {
		fmt.Fprintln(out, cli.FormatWarning("Google did not return a refresh token. Revoke the app's access and run this command again."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatSuccess("Authentication successful! Token saved to "+tokenFile))
	return nil
}
