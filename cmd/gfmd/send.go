package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/style"
)

func sendCmd() *cobra.Command {
	var (
		subject  string
		body     string
		bodyFile string
		dryRun   bool
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "send <email>",
		Short: "Send one email to a stored contact",
		Long: `Send a hand-written email to a contact already in the database.

The body is cleaned and wrapped with the greeting, closing and signature used
for agent-composed emails unless --raw is set. Sends go through the same
verification and daily limit as pipeline runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			content, err := readBody(body, bodyFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(subject) == "" {
				return common.NewUserError("--subject is required", common.ErrInvalidConfig)
			}

			cfg, err := config.LoadOutreachConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			prospect, err := store.GetContact(ctx, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("%s is not in the database; import it first", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to load contact: %w", err)
			}

			exporter, err := initExporter(ctx)
			if err != nil {
				return err
			}

			sender, err := initSender(ctx, cfg, store, exporter, dryRun)
			if err != nil {
				return err
			}

			email := model.ComposedEmail{
				To:      prospect.Email,
				Subject: style.CleanSubject(subject, prospect.Organization),
				Body:    content,
			}
			if !raw {
				email.Body = style.ComposeEmail(*prospect, content, cfg.Sender.Signature)
			}

			result := sender.Send(ctx, *prospect, email)
			if !result.Success {
				return common.NewUserError("email was not sent", errors.New(result.Reason+": "+result.Message))
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Sent to %s (message %s)", prospect.Email, result.MessageID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "email subject")
	cmd.Flags().StringVarP(&body, "body", "b", "", "email body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "read the email body from a file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the email instead of delivering it")
	cmd.Flags().BoolVar(&raw, "raw", false, "send the body exactly as given")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")

	return cmd
}

func readBody(body, bodyFile string) (string, error) {
	if bodyFile != "" {
		data, err := os.ReadFile(config.ExpandPath(bodyFile))
		if err != nil {
			return "", common.NewUserError("could not read "+bodyFile, err)
		}
		body = string(data)
	}
	if strings.TrimSpace(body) == "" {
		return "", common.NewUserError("an email body is required (--body or --body-file)", common.ErrInvalidConfig)
	}
	return body, nil
}
