package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// Managed wraps a provider client with rate limiting, retries and an optional
// response cache. All agents in a run share one Managed client.
type Managed struct {
	client      Client
	cache       *responseCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	retryOpts   service.RetryOptions
}

// NewManaged wraps client. A positive cfg.CacheTTL enables caching.
func NewManaged(client Client, cfg Config, logger *slog.Logger) *Managed {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	m := &Managed{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
	if cfg.CacheTTL > 0 {
		m.cache = newResponseCache(cfg.CacheTTL)
	}
	return m
}

// Complete runs the request through the cache, the rate limiter and the
// retry loop. Cached responses report zero token usage.
func (m *Managed) Complete(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(req)
	if m.cache != nil {
		if resp, found := m.cache.get(key); found {
			m.logger.Debug("llm cache hit", "model", resp.Model)
			resp.Usage.Prompt, resp.Usage.Completion = 0, 0
			resp.Cached = true
			return resp, nil
		}
	}

	var resp Response
	err := common.WithRetry(ctx, func() error {
		if err := m.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		var callErr error
		resp, callErr = m.client.Complete(ctx, req)
		return callErr
	}, m.retryOpts)
	if err != nil {
		return Response{}, err
	}

	m.logger.Debug("llm completion",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.Prompt,
		"completion_tokens", resp.Usage.Completion)

	if m.cache != nil {
		m.cache.set(key, resp)
	}
	return resp, nil
}

// Close stops background goroutines.
func (m *Managed) Close() {
	m.rateLimiter.Close()
	if m.cache != nil {
		m.cache.Close()
	}
}
