package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// scriptedClient returns queued results in order.
type scriptedClient struct {
	results []scriptedResult
	calls   int
	mu      sync.Mutex
}

type scriptedResult struct {
	err  error
	resp Response
}

func (c *scriptedClient) Complete(_ context.Context, _ Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls >= len(c.results) {
		return Response{}, errors.New("unexpected call")
	}
	r := c.results[c.calls]
	c.calls++
	return r.resp, r.err
}

func TestManagedRetriesTransientErrors(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{
		{err: &common.RetryableError{Err: errors.New("502"), Retryable: true}},
		{resp: Response{Content: "done", Usage: model.TokenUsage{Prompt: 3, Completion: 2}}},
	}}

	m := NewManaged(client, Config{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	defer m.Close()

	resp, err := m.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 2, client.calls)
}

func TestManagedStopsOnPermanentError(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{
		{err: &common.RetryableError{Err: errors.New("401"), Retryable: false}},
		{resp: Response{Content: "never"}},
	}}

	m := NewManaged(client, Config{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	defer m.Close()

	_, err := m.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestManagedCache(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{
		{resp: Response{Content: "first", Usage: model.TokenUsage{Prompt: 10, Completion: 5}}},
	}}

	m := NewManaged(client, Config{CacheTTL: time.Minute}, nil)
	defer m.Close()

	req := Request{System: "s", Prompt: "same"}
	first, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 15, first.Usage.Total())
	assert.False(t, first.Cached)

	second, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "first", second.Content)
	assert.True(t, second.Cached)
	assert.Equal(t, 0, second.Usage.Total())
	assert.Equal(t, 1, client.calls)
}

func TestManagedWithoutCacheCallsEveryTime(t *testing.T) {
	client := &scriptedClient{results: []scriptedResult{
		{resp: Response{Content: "a"}},
		{resp: Response{Content: "b"}},
	}}

	m := NewManaged(client, Config{}, nil)
	defer m.Close()

	req := Request{Prompt: "same"}
	_, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	resp, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "b", resp.Content)
}
