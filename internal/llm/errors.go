package llm

import (
	"fmt"
	"net/http"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

const maxErrorBody = 512

// statusError converts a non-200 provider response into an error that
// WithRetry understands: 429 and 5xx retry, everything else does not.
func statusError(provider string, status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	err := fmt.Errorf("%s API error (status %d): %s", provider, status, string(body))

	switch {
	case status == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}
