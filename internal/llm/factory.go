package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

// NewClient creates a raw provider client based on the provided configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "groq":
		return newGroqClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "gemini", "vertex":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}
