package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`, false},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"surrounding prose", "Sure! Here you go: {\"a\": {\"b\": 2}} Hope that helps.", `{"a": {"b": 2}}`, false},
		{"no object", "I cannot help with that.", "", true},
		{"broken object", "result: {\"a\": }", "", true},
		{"array only", "[1, 2]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrUnparsableOutput)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

const testSchema = `{
	"type": "object",
	"required": ["score", "reason"],
	"properties": {
		"score": {"type": "integer"},
		"reason": {"type": "string"}
	}
}`

func TestDecodeJSON(t *testing.T) {
	schema := MustSchema(testSchema)

	t.Run("valid", func(t *testing.T) {
		var out struct {
			Reason string `json:"reason"`
			Score  int    `json:"score"`
		}
		err := DecodeJSON("Here: {\"score\": 42, \"reason\": \"fits\"}", schema, &out)
		require.NoError(t, err)
		assert.Equal(t, 42, out.Score)
		assert.Equal(t, "fits", out.Reason)
	})

	t.Run("schema violation", func(t *testing.T) {
		var out map[string]any
		err := DecodeJSON(`{"score": "high"}`, schema, &out)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUnparsableOutput)
		assert.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("no schema", func(t *testing.T) {
		var out map[string]any
		require.NoError(t, DecodeJSON(`{"anything": true}`, nil, &out))
		assert.Equal(t, true, out["anything"])
	})
}

func TestNewSchemaRejectsInvalidDocument(t *testing.T) {
	_, err := NewSchema(`{"type": 12}`)
	require.Error(t, err)
	assert.Panics(t, func() { MustSchema(`not json`) })
}
