package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/cli"
	"github.com/mlynnf123/gfmd-outreach/internal/config"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/verify"
)

func verifyCmd() *cobra.Command {
	var (
		organization string
		noDNS        bool
	)

	cmd := &cobra.Command{
		Use:   "verify <email>...",
		Short: "Check whether addresses would pass send verification",
		Example: `  gfmd verify lab.director@houstonmethodist.org --org "Houston Methodist"
  gfmd verify someone@gmail.com --no-dns`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.LoadVerifyOptions(model.Campaign(viper.GetString("outreach.campaign")))
			if noDNS {
				opts.CheckDNS = false
			}
			verifier := verify.New(opts)
			out := cmd.OutOrStdout()

			failed := 0
			for _, email := range args {
				prospect := model.Prospect{Email: email, Organization: organization, Campaign: opts.Campaign}
				result := verifier.Verify(cmd.Context(), email, prospect)
				fmt.Fprintln(out, formatVerification(email, result))
				if !result.Valid {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d addresses failed verification", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&organization, "org", "", "organization the addresses belong to")
	cmd.Flags().BoolVar(&noDNS, "no-dns", false, "skip the domain lookup")

	return cmd
}

func formatVerification(email string, r model.VerificationResult) string {
	switch {
	case !r.Valid:
		return cli.FormatError(fmt.Sprintf("%s: %s", email, r.Reason))
	case r.Caution:
		return cli.FormatWarning(fmt.Sprintf("%s: %s", email, r.Reason))
	default:
		return cli.FormatSuccess(email + ": ok")
	}
}
