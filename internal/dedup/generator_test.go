package dedup

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

func TestSyntheticGeneratorDeterministic(t *testing.T) {
	clock := &common.FixedClock{T: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	a, err := NewSyntheticGenerator(model.CampaignHealthcare, 42, clock)
	require.NoError(t, err)
	b, err := NewSyntheticGenerator(model.CampaignHealthcare, 42, clock)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		pa, pb := a.Next(), b.Next()
		assert.Equal(t, pa, pb)

		_, err := uuid.Parse(pa.ID)
		assert.NoError(t, err)
		assert.Equal(t, model.CampaignHealthcare, pa.Campaign)
		assert.True(t, strings.HasSuffix(pa.Email, ".org"), pa.Email)
		assert.Equal(t, clock.T, pa.CreatedAt)
		assert.NotEmpty(t, pa.Organization)
		assert.NotEmpty(t, pa.Title)
	}
}

func TestSyntheticGeneratorLawEnforcement(t *testing.T) {
	g, err := NewSyntheticGenerator(model.CampaignLawEnforcement, 1, nil)
	require.NoError(t, err)

	p := g.Next()
	assert.Equal(t, model.CampaignLawEnforcement, p.Campaign)
	assert.True(t, strings.HasSuffix(p.Email, ".gov"), p.Email)
}

func TestSyntheticGeneratorUnknownCampaign(t *testing.T) {
	_, err := NewSyntheticGenerator(model.Campaign("retail"), 1, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestDomainFor(t *testing.T) {
	assert.Equal(t, "houstonhospital", domainFor("Houston General Hospital"))
	assert.Equal(t, "harriscountysheriff", domainFor("Harris County Sheriff's Office"))
}
