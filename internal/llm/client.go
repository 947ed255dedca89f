package llm

import (
	"context"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Request is a single system+user prompt exchange.
type Request struct {
	System      string
	Prompt      string
	Temperature float64 // zero uses the client default
	MaxTokens   int     // zero uses the client default
	JSONMode    bool
}

// Response contains the model's reply and token usage.
type Response struct {
	Content string
	Model   string
	Usage   model.TokenUsage
	Cached  bool
}

// Config holds provider settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Project     string
	Location    string
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	MaxRetries  int
	RateLimit   int
	MaxTokens   int
	Temperature float64
}

func (c Config) withDefaults(defaultModel string) Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

func (r Request) settings(temperature float64, maxTokens int) (float64, int) {
	if r.Temperature != 0 {
		temperature = r.Temperature
	}
	if r.MaxTokens != 0 {
		maxTokens = r.MaxTokens
	}
	return temperature, maxTokens
}
