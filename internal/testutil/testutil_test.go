package testutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
	"github.com/mlynnf123/gfmd-outreach/internal/testutil"
)

func TestSetupTestDBSeedsProspects(t *testing.T) {
	prospects := testutil.NewProspectBuilder(t).
		WithFixture(testutil.FixtureMixed).
		WithGenerated(2, "Gulf Coast Labs", model.CampaignHealthcare).
		Build()

	db := testutil.SetupTestDB(t, prospects)

	stats, err := db.Storage.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(prospects), stats.Total)

	got := db.MustGetContact("contact2@gulfcoastlabs.org")
	assert.Equal(t, "Gulf Coast Labs", got.Organization)
	assert.Equal(t, model.ContactNew, got.Status)
}

func TestSetupTestDBCustomSetup(t *testing.T) {
	called := false
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Prospects: testutil.NewProspectBuilder(t).WithFixture(testutil.FixtureLawEnforcement).Build(),
		CustomSetup: func(ctx context.Context, s service.ContactStore) error {
			called = true
			return s.RecordEmailError(ctx, "mlopez@austintexas.gov", "bounced")
		},
	})

	assert.True(t, called)
	assert.Equal(t, model.ContactError, db.MustGetContact("mlopez@austintexas.gov").Status)
}

func TestBuildDoesNotShareBacking(t *testing.T) {
	b := testutil.NewProspectBuilder(t).WithFixture(testutil.FixtureHealthcare)
	first := b.Build()
	first[0].Email = "changed@example.org"

	second := b.Build()
	assert.Equal(t, "jmartinez@houstonmethodist.org", second[0].Email)
}
