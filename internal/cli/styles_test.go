package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessages(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{"success", FormatSuccess, successIcon},
		{"error", FormatError, errorIcon},
		{"warning", FormatWarning, warningIcon},
		{"info", FormatInfo, infoIcon},
		{"title", FormatTitle, mailIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("Imported 3 contacts")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "Imported 3 contacts")
		})
	}
}

func TestRenderBoxIncludesTitleAndContent(t *testing.T) {
	out := renderBox("GFMD Outreach Status", "Sent 3 of 50")
	assert.Contains(t, out, "GFMD Outreach Status")
	assert.Contains(t, out, "Sent 3 of 50")
}
