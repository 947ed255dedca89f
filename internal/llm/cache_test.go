package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache(t *testing.T) {
	t.Run("basic operations", func(t *testing.T) {
		cache := newResponseCache(5 * time.Minute)
		defer cache.Close()

		_, found := cache.get("missing")
		assert.False(t, found)

		resp := Response{Content: `{"ok":true}`, Model: "test"}
		cache.set("key1", resp)

		got, found := cache.get("key1")
		assert.True(t, found)
		assert.Equal(t, resp, got)
		assert.Equal(t, 1, cache.size())
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		cache := newResponseCache(time.Millisecond)
		defer cache.Close()

		cache.set("key", Response{Content: "x"})
		time.Sleep(5 * time.Millisecond)

		_, found := cache.get("key")
		assert.False(t, found)
	})
}

func TestCacheKey(t *testing.T) {
	base := Request{System: "sys", Prompt: "hello"}

	assert.Equal(t, cacheKey(base), cacheKey(Request{System: "sys", Prompt: "hello", Temperature: 0.9}))
	assert.NotEqual(t, cacheKey(base), cacheKey(Request{System: "sys", Prompt: "hello!"}))
	assert.NotEqual(t, cacheKey(base), cacheKey(Request{System: "sy", Prompt: "shello"}))
	assert.NotEqual(t, cacheKey(base), cacheKey(Request{System: "sys", Prompt: "hello", JSONMode: true}))
}
