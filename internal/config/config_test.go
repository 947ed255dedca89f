package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
	"github.com/mlynnf123/gfmd-outreach/internal/mail"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
)

var clearedEnv = []string{
	"GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	"GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
	"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
	"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_ID",
	"GOOGLE_SHEETS_SPREADSHEET_NAME", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	"GOOGLE_REFRESH_TOKEN", "GOOGLE_APPLICATION_CREDENTIALS",
	"GMAIL_SENDER", "GMAIL_FROM", "GMAIL_SENDER_NAME", "AWS_REGION",
	"REDIS_ADDR", "REDIS_PASSWORD",
}

// setup isolates viper and the environment for one test.
func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range clearedEnv {
		t.Setenv(env, "")
	}
	return home
}

func TestExpandPath(t *testing.T) {
	home := setup(t)
	t.Setenv("GFMD_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "gfmd", "gfmd.db"), ExpandPath("~/gfmd/gfmd.db"))
	assert.Equal(t, "/data/x.json", ExpandPath("$GFMD_TEST_DIR/x.json"))
}

func TestDataPath(t *testing.T) {
	home := setup(t)

	assert.Equal(t, filepath.Join(home, ".local", "share", "gfmd", "gfmd.db"), DataPath("database.path", "gfmd.db"))

	viper.Set("data_dir", "~/outreach")
	assert.Equal(t, filepath.Join(home, "outreach", "gfmd.db"), DataPath("database.path", "gfmd.db"))

	viper.Set("database.path", "/tmp/other.db")
	assert.Equal(t, "/tmp/other.db", DataPath("database.path", "gfmd.db"))
}

func TestLoadLLMConfig(t *testing.T) {
	t.Run("defaults to groq and requires a key", func(t *testing.T) {
		setup(t)
		_, err := LoadLLMConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)

		t.Setenv("GROQ_API_KEY", "gsk-test")
		cfg, err := LoadLLMConfig()
		require.NoError(t, err)
		assert.Equal(t, "groq", cfg.Provider)
		assert.Equal(t, "gsk-test", cfg.APIKey)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.RetryDelay)
		assert.Equal(t, 30, cfg.RateLimit)
	})

	t.Run("viper key wins over environment", func(t *testing.T) {
		setup(t)
		t.Setenv("OPENAI_API_KEY", "env-key")
		viper.Set("llm.provider", "OpenAI")
		viper.Set("llm.openai_api_key", "config-key")
		viper.Set("llm.model", "gpt-4o-mini")

		cfg, err := LoadLLMConfig()
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "config-key", cfg.APIKey)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
	})

	t.Run("vertex needs a project", func(t *testing.T) {
		setup(t)
		viper.Set("llm.provider", "vertex")
		_, err := LoadLLMConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)

		t.Setenv("GOOGLE_CLOUD_PROJECT", "gfmd-prod")
		cfg, err := LoadLLMConfig()
		require.NoError(t, err)
		assert.Equal(t, "gfmd-prod", cfg.Project)
	})

	t.Run("unknown provider", func(t *testing.T) {
		setup(t)
		viper.Set("llm.provider", "carrier-pigeon")
		_, err := LoadLLMConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadGoogleCredentials(t *testing.T) {
	t.Run("environment fallback", func(t *testing.T) {
		setup(t)
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		creds := LoadGoogleCredentials()
		assert.True(t, creds.HasOAuth())
		assert.True(t, SheetsEnabled())
	})

	t.Run("saved token supplies refresh token", func(t *testing.T) {
		setup(t)
		viper.Set("google.client_id", "id")
		viper.Set("google.client_secret", "secret")
		require.NoError(t, googleauth.SaveToken(TokenFile(), &oauth2.Token{RefreshToken: "saved"}))

		assert.Equal(t, "saved", LoadGoogleCredentials().RefreshToken)
	})

	t.Run("service account path is expanded", func(t *testing.T) {
		home := setup(t)
		viper.Set("google.service_account_path", "~/keys/sa.json")
		assert.Equal(t, filepath.Join(home, "keys", "sa.json"), LoadGoogleCredentials().ServiceAccountPath)
	})

	t.Run("sheets disabled without credentials", func(t *testing.T) {
		setup(t)
		assert.False(t, SheetsEnabled())

		viper.Set("sheets.enabled", true)
		assert.True(t, SheetsEnabled())
	})
}

func TestLoadSheetsConfig(t *testing.T) {
	setup(t)
	_, err := LoadSheetsConfig()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("google.service_account_path", "/keys/sa.json")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-abc")
	viper.Set("sheets.formatting", false)
	viper.Set("sheets.retry_attempts", 5)

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "sheet-abc", cfg.SpreadsheetID)
	assert.Equal(t, "GFMD Outreach Tracking", cfg.SpreadsheetName)
	assert.False(t, cfg.EnableFormatting)
	assert.Equal(t, 5, cfg.RetryAttempts)
}

func TestLoadMailConfig(t *testing.T) {
	t.Run("gmail requires sender", func(t *testing.T) {
		setup(t)
		_, err := LoadMailConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)

		t.Setenv("GMAIL_SENDER", "mark@gfmd.com")
		cfg, err := LoadMailConfig()
		require.NoError(t, err)
		assert.Equal(t, mail.ProviderGmail, cfg.Provider)
		assert.Equal(t, "mark@gfmd.com", cfg.From)
	})

	t.Run("ses default region", func(t *testing.T) {
		setup(t)
		viper.Set("mail.provider", "SES")
		viper.Set("mail.from", "mark@gfmd.com")
		cfg, err := LoadMailConfig()
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", cfg.SESRegion)
	})

	t.Run("dry run needs nothing", func(t *testing.T) {
		setup(t)
		viper.Set("mail.provider", "dry-run")
		_, err := LoadMailConfig()
		assert.NoError(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		setup(t)
		viper.Set("mail.provider", "fax")
		_, err := LoadMailConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadOutreachConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		home := setup(t)
		cfg, err := LoadOutreachConfig()
		require.NoError(t, err)

		dataDir := filepath.Join(home, ".local", "share", "gfmd")
		assert.Equal(t, model.CampaignHealthcare, cfg.Campaign)
		assert.Equal(t, storage.DefaultDailyLimit, cfg.DailyLimit)
		assert.Equal(t, 50, cfg.MinScore)
		assert.Equal(t, storage.DefaultErrorLogSize, cfg.ErrorLogSize)
		assert.Equal(t, filepath.Join(dataDir, "daily_email_count.json"), cfg.CounterPath)
		assert.Equal(t, filepath.Join(dataDir, "email_errors.json"), cfg.ErrorLogPath)
		assert.Equal(t, filepath.Join(dataDir, "gfmd.db"), cfg.DatabasePath)
		assert.Equal(t, "GFMD", cfg.Sender.Signature)
	})

	t.Run("sender signature", func(t *testing.T) {
		setup(t)
		viper.Set("sender.name", "Mark Lynn")
		viper.Set("sender.title", "Account Executive")
		viper.Set("outreach.campaign", "law_enforcement")
		viper.Set("outreach.daily_limit", 100)

		cfg, err := LoadOutreachConfig()
		require.NoError(t, err)
		assert.Equal(t, model.CampaignLawEnforcement, cfg.Campaign)
		assert.Equal(t, 100, cfg.DailyLimit)
		assert.Equal(t, "Mark Lynn\nAccount Executive\nGFMD", cfg.Sender.Signature)
	})

	t.Run("invalid values", func(t *testing.T) {
		setup(t)
		viper.Set("outreach.campaign", "retail")
		_, err := LoadOutreachConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)

		viper.Set("outreach.campaign", "healthcare")
		viper.Set("outreach.min_score", 150)
		_, err = LoadOutreachConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadDedupConfig(t *testing.T) {
	setup(t)
	cfg := LoadDedupConfig()
	assert.Equal(t, dedup.DefaultRedisKey, cfg.RedisKey)
	assert.InDelta(t, dedup.DefaultFuzzyThreshold, cfg.FuzzyThreshold, 1e-9)
	assert.False(t, cfg.Fuzzy)
	assert.Empty(t, cfg.RedisAddr)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	viper.Set("dedup.fuzzy", true)
	viper.Set("dedup.fuzzy_threshold", 0.7)
	cfg = LoadDedupConfig()
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.Fuzzy)
	assert.InDelta(t, 0.7, cfg.FuzzyThreshold, 1e-9)
}

func TestLoadVerifyOptions(t *testing.T) {
	setup(t)
	opts := LoadVerifyOptions(model.CampaignHealthcare)
	assert.True(t, opts.CheckDNS)

	viper.Set("verify.dns", false)
	viper.Set("verify.allow_domains", []string{"gfmd.com"})
	opts = LoadVerifyOptions(model.CampaignLawEnforcement)
	assert.False(t, opts.CheckDNS)
	assert.Equal(t, []string{"gfmd.com"}, opts.AllowDomains)
	assert.Equal(t, model.CampaignLawEnforcement, opts.Campaign)
}
