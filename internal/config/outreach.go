package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/agent"
	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/qualify"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

// Outreach holds the run-level settings shared by the pipeline commands.
type Outreach struct {
	Sender       agent.Sender
	Campaign     model.Campaign
	CounterPath  string
	ErrorLogPath string
	DatabasePath string
	DailyLimit   int
	ErrorLogSize int
	MinScore     int
}

// LoadOutreachConfig reads campaign, sender, limits and data file locations.
func LoadOutreachConfig() (Outreach, error) {
	config := Outreach{
		Campaign:     model.Campaign(viper.GetString("outreach.campaign")),
		DailyLimit:   viper.GetInt("outreach.daily_limit"),
		MinScore:     viper.GetInt("outreach.min_score"),
		ErrorLogSize: viper.GetInt("outreach.error_log_size"),
		CounterPath:  DataPath("outreach.counter_path", "daily_email_count.json"),
		ErrorLogPath: DataPath("outreach.error_log_path", "email_errors.json"),
		DatabasePath: DataPath("database.path", "gfmd.db"),
		Sender: agent.Sender{
			Name:      viper.GetString("sender.name"),
			Title:     viper.GetString("sender.title"),
			Company:   viper.GetString("sender.company"),
			Signature: viper.GetString("sender.signature"),
		},
	}

	if config.Campaign == "" {
		config.Campaign = model.CampaignHealthcare
	}
	if !config.Campaign.Valid() {
		return config, fmt.Errorf("%w: unknown campaign %q", common.ErrInvalidConfig, config.Campaign)
	}
	if config.DailyLimit <= 0 {
		config.DailyLimit = storage.DefaultDailyLimit
	}
	if config.MinScore <= 0 {
		config.MinScore = qualify.DefaultMinScore
	}
	if config.MinScore > model.MaxTotalScore {
		return config, fmt.Errorf("%w: outreach.min_score %d exceeds %d", common.ErrInvalidConfig, config.MinScore, model.MaxTotalScore)
	}
	if config.ErrorLogSize <= 0 {
		config.ErrorLogSize = storage.DefaultErrorLogSize
	}
	if config.Sender.Company == "" {
		config.Sender.Company = "GFMD"
	}
	if config.Sender.Signature == "" {
		config.Sender.Signature = defaultSignature(config.Sender)
	}

	return config, nil
}

func defaultSignature(s agent.Sender) string {
	sig := s.Name
	if s.Title != "" {
		if sig != "" {
			sig += "\n"
		}
		sig += s.Title
	}
	if sig != "" {
		sig += "\n"
	}
	return sig + s.Company
}
