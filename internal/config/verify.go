package config

import (
	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/verify"
)

// LoadVerifyOptions reads recipient verification settings for campaign.
func LoadVerifyOptions(campaign model.Campaign) verify.Options {
	checkDNS := true
	if viper.IsSet("verify.dns") {
		checkDNS = viper.GetBool("verify.dns")
	}
	return verify.Options{
		Campaign:     campaign,
		AllowDomains: viper.GetStringSlice("verify.allow_domains"),
		DNSTimeout:   viper.GetDuration("verify.dns_timeout"),
		CheckDNS:     checkDNS,
	}
}
