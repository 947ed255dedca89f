package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityFor(t *testing.T) {
	for total := 0; total <= MaxTotalScore; total++ {
		got := PriorityFor(total)
		switch {
		case total >= 70:
			assert.Equal(t, PriorityHigh, got, "total %d", total)
		case total >= 50:
			assert.Equal(t, PriorityMedium, got, "total %d", total)
		default:
			assert.Equal(t, PriorityLow, got, "total %d", total)
		}
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		total    int
		minScore int
		want     Action
	}{
		{75, 50, ActionSendEmail},
		{50, 50, ActionSendEmail},
		{49, 50, ActionSkip},
		{65, 70, ActionNurture},
		{45, 40, ActionSendEmail},
		{30, 40, ActionSkip},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ActionFor(tt.total, tt.minScore), "total %d min %d", tt.total, tt.minScore)
	}
}

func TestSubScoresClamp(t *testing.T) {
	s := SubScores{FacilityFit: 31, PainPointMatch: -1, BuyingSignals: 25, DecisionMakerAccess: 100}.Clamp()
	assert.Equal(t, SubScores{FacilityFit: 30, PainPointMatch: 0, BuyingSignals: 25, DecisionMakerAccess: 20}, s)
	assert.Equal(t, 75, s.Total())
	assert.Equal(t, 100, MaxTotalScore)
}

func TestEmailHelpers(t *testing.T) {
	p := Prospect{Email: "  JMartinez@HoustonMethodist.org "}
	assert.Equal(t, "jmartinez@houstonmethodist.org", p.Key())
	assert.Equal(t, "houstonmethodist.org", EmailDomain(p.Email))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateSent.Terminal())
	assert.True(t, StateSkipped.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateComposed.Terminal())
	assert.False(t, StatePending.Terminal())
}
