package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

func TestErrorLogKeepsMostRecent(t *testing.T) {
	log := NewErrorLog(filepath.Join(t.TempDir(), "send_errors.json"), 3)

	entries, err := log.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(model.SendError{
			Timestamp: testNow,
			Email:     fmt.Sprintf("user%d@alpha.org", i),
			Error:     "quota exceeded",
		}))
	}

	entries, err = log.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "user2@alpha.org", entries[0].Email)
	assert.Equal(t, "user4@alpha.org", entries[2].Email)
	assert.True(t, entries[2].Timestamp.Equal(testNow))
}

func TestErrorLogDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultErrorLogSize, NewErrorLog("x.json", 0).max)
}
