package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/llm"
)

// DefaultLLMProvider is used when llm.provider is unset.
const DefaultLLMProvider = "groq"

var apiKeyEnv = map[string]string{
	"groq":      "GROQ_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// LoadLLMConfig reads the model provider settings.
func LoadLLMConfig() (llm.Config, error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == "" {
		provider = DefaultLLMProvider
	}

	config := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Project:     firstNonEmpty("llm.project", "GOOGLE_CLOUD_PROJECT"),
		Location:    firstNonEmpty("llm.location", "GOOGLE_CLOUD_LOCATION"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}

	// Set defaults if not specified
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 30 // requests per minute
	}

	switch provider {
	case "groq", "openai", "anthropic", "gemini":
		config.APIKey = firstNonEmpty("llm."+provider+"_api_key", apiKeyEnv[provider])
		if config.APIKey == "" {
			return config, fmt.Errorf("%w: %s API key not found in config or %s environment variable",
				common.ErrMissingConfig, provider, apiKeyEnv[provider])
		}
	case "vertex":
		if config.Project == "" {
			return config, fmt.Errorf("%w: vertex provider needs llm.project or GOOGLE_CLOUD_PROJECT", common.ErrMissingConfig)
		}
	default:
		return config, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, provider)
	}

	return config, nil
}
