package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// geminiClient implements the Client interface on the Google GenAI SDK. It
// serves both the Gemini API (API key) and Vertex AI (project + location).
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	cc := &genai.ClientConfig{}

	if strings.EqualFold(cfg.Provider, "vertex") {
		if cfg.Project == "" {
			return nil, fmt.Errorf("%w: Vertex AI project is required", common.ErrMissingConfig)
		}
		if cfg.Location == "" {
			cfg.Location = "us-central1"
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	cfg = cfg.withDefaults("gemini-2.0-flash")
	return &geminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Complete generates content for a single prompt.
func (c *geminiClient) Complete(ctx context.Context, r Request) (Response, error) {
	temperature, maxTokens := r.settings(c.temperature, c.maxTokens)

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if r.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if r.JSONMode {
		gc.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(r.Prompt), gc)
	if err != nil {
		return Response{}, &common.RetryableError{Err: fmt.Errorf("GenAI generate failed: %w", err), Retryable: true}
	}

	text := result.Text()
	if text == "" {
		return Response{}, fmt.Errorf("no content in response")
	}

	resp := Response{Content: text, Model: c.model}
	if result.UsageMetadata != nil {
		resp.Usage = model.TokenUsage{
			Prompt:     int(result.UsageMetadata.PromptTokenCount),
			Completion: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return resp, nil
}
