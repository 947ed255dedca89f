package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadHash(t *testing.T) {
	want := "421f5430a79e74d74b45d568c9ac87c4"

	assert.Equal(t, want, LeadHash("Jennifer Martinez", "jmartinez@houstonmethodist.org", "Houston Methodist"))
	assert.Equal(t, want, LeadHash("  JENNIFER MARTINEZ ", "JMartinez@HoustonMethodist.org", "houston methodist  "))
	assert.NotEqual(t, want, LeadHash("Jennifer Martinez", "jmartinez@houstonmethodist.org", "Houston Methodist West"))
	assert.Len(t, LeadHash("", "", ""), 32)
}

func TestNormalizeOrganization(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Houston Methodist Hospital", "houston methodist hosp"},
		{"Quest Diagnostics Laboratories, Inc.", "quest diagnostics labs inc"},
		{"St. Luke's Medical Center", "st lukes med ctr"},
		{"Saint Luke's Medical Centre", "st lukes med ctr"},
		{"Clínica Médica São Paulo", "clinica medica sao paulo"},
		{"Baylor Scott & White", "baylor scott and white"},
		{"Texas Department of Public Safety", "texas dept of public safety"},
		{"Acme Corporation", "acme corp"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeOrganization(tt.input))
		})
	}
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("houston methodist hosp", "hosp houston methodist"), 0.0001)
	assert.InDelta(t, 0.75, Jaccard("houston methodist west hosp", "houston methodist hosp"), 0.0001)
	assert.InDelta(t, 0.0, Jaccard("alpha", "beta"), 0.0001)
	assert.InDelta(t, 0.0, Jaccard("", ""), 0.0001)
}
