package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

func TestFileCounterIncrement(t *testing.T) {
	clock := &common.FixedClock{T: testNow}
	path := filepath.Join(t.TempDir(), "daily_count.json")
	c := NewFileCounter(path, 2, clock)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := c.CanSendMore()
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = c.Increment()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err = c.CanSendMore()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Increment()
	assert.ErrorIs(t, err, common.ErrDailyLimitReached)

	n, err = c.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "count never exceeds the limit")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2025-04-15", doc["date"])
	assert.EqualValues(t, 2, doc["count"])
	assert.Contains(t, doc, "last_updated")
}

func TestFileCounterResetsOnNewDay(t *testing.T) {
	clock := &common.FixedClock{T: testNow}
	path := filepath.Join(t.TempDir(), "daily_count.json")
	c := NewFileCounter(path, 1, clock)

	_, err := c.Increment()
	require.NoError(t, err)
	ok, err := c.CanSendMore()
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(24 * time.Hour)
	ok, err = c.CanSendMore()
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := c.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileCounterAtLimitFromFile(t *testing.T) {
	clock := &common.FixedClock{T: testNow}
	path := filepath.Join(t.TempDir(), "daily_count.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"date":"2025-04-15","count":100,"last_updated":"2025-04-15T10:00:00Z"}`), 0o600))

	c := NewFileCounter(path, 100, clock)
	ok, err := c.CanSendMore()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100, c.Limit())
}

func TestFileCounterCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_count.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o600))

	_, err := NewFileCounter(path, 10, nil).CanSendMore()
	assert.Error(t, err)
}

func TestFileCounterDefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultDailyLimit, NewFileCounter("x.json", 0, nil).Limit())
}
