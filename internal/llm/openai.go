package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"
)

// openAIClient implements the Client interface for OpenAI-compatible chat
// completion APIs. Groq is served by the same client with a different base URL.
type openAIClient struct {
	httpClient  *http.Client
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIBaseURL
	}
	return newChatCompletionsClient("OpenAI", cfg.withDefaults("gpt-4o-mini")), nil
}

// newGroqClient creates a client for Groq's OpenAI-compatible endpoint.
func newGroqClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Groq API key is required", common.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = groqBaseURL
	}
	return newChatCompletionsClient("Groq", cfg.withDefaults("llama-3.3-70b-versatile")), nil
}

func newChatCompletionsClient(name string, cfg Config) *openAIClient {
	return &openAIClient{
		name:        name,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Complete sends a chat completion request.
func (c *openAIClient) Complete(ctx context.Context, r Request) (Response, error) {
	temperature, maxTokens := r.settings(c.temperature, c.maxTokens)

	messages := make([]map[string]string, 0, 2)
	if r.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": r.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": r.Prompt})

	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	if r.JSONMode {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, statusError(c.name, resp.StatusCode, body)
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return Response{}, fmt.Errorf("no completion choices returned")
	}

	return Response{
		Content: response.Choices[0].Message.Content,
		Model:   response.Model,
		Usage: model.TokenUsage{
			Prompt:     response.Usage.PromptTokens,
			Completion: response.Usage.CompletionTokens,
		},
	}, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}
