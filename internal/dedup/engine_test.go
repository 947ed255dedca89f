package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

type fakeRemote struct {
	err   error
	leads []Lead
}

func (f *fakeRemote) ExistingLeads(_ context.Context) ([]Lead, error) {
	return f.leads, f.err
}

type cyclicGenerator struct {
	prospects []model.Prospect
	calls     int
}

func (g *cyclicGenerator) Next() model.Prospect {
	p := g.prospects[g.calls%len(g.prospects)]
	g.calls++
	return p
}

func jennifer() model.Prospect {
	return model.Prospect{
		ContactName:  "Jennifer Martinez",
		Email:        "jmartinez@houstonmethodist.org",
		Organization: "Houston Methodist Hospital",
	}
}

func TestIsDuplicateAfterAdd(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(Options{})
	require.NoError(t, e.Load(ctx))

	p := jennifer()
	dup, err := e.IsDuplicate(ctx, p)
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, e.Add(ctx, p))

	reformatted := model.Prospect{
		ContactName:  " JENNIFER martinez",
		Email:        "JMartinez@HoustonMethodist.org ",
		Organization: "houston methodist hospital",
	}
	dup, err = e.IsDuplicate(ctx, reformatted)
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "dedup.json")
	clock := &common.FixedClock{T: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}

	first := NewEngine(Options{CachePath: path, Clock: clock})
	require.NoError(t, first.Load(ctx))

	prospects := []model.Prospect{
		jennifer(),
		{ContactName: "Robert Chen", Email: "rchen@questlabs.com", Organization: "Quest Laboratories"},
		{ContactName: "Alan Brooks", Email: "abrooks@harriscountytx.gov", Organization: "Harris County Sheriff's Office"},
	}
	for _, p := range prospects {
		require.NoError(t, first.Add(ctx, p))
	}
	require.NoError(t, first.Save(ctx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "last_updated")
	assert.Contains(t, doc, "lead_hashes")
	assert.Contains(t, doc, "organization_patterns")

	second := NewEngine(Options{CachePath: path, Clock: clock})
	require.NoError(t, second.Load(ctx))

	want, err := first.set.Members(ctx)
	require.NoError(t, err)
	got, err := second.set.Members(ctx)
	require.NoError(t, err)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.Len(t, got, 3)

	for _, p := range prospects {
		dup, err := second.IsDuplicate(ctx, p)
		require.NoError(t, err)
		assert.True(t, dup, p.ContactName)
	}

	_, patterns, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, patterns)

	c, err := ReadCache(path)
	require.NoError(t, err)
	assert.True(t, c.LastUpdated.Equal(clock.T))
}

func TestReadCacheMissingFile(t *testing.T) {
	c, err := ReadCache(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, c.LeadHashes)
}

func TestReadCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := ReadCache(path)
	require.Error(t, err)
	assert.Error(t, NewEngine(Options{CachePath: path}).Load(context.Background()))
}

func TestLoadRemoteLeads(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{leads: []Lead{{Name: "Jennifer Martinez", Email: "jmartinez@houstonmethodist.org", Organization: "Houston Methodist Hospital"}}}

	e := NewEngine(Options{Remote: remote})
	require.NoError(t, e.Load(ctx))

	dup, err := e.IsDuplicate(ctx, jennifer())
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestLoadToleratesRemoteFailure(t *testing.T) {
	e := NewEngine(Options{Remote: &fakeRemote{err: errors.New("sheets unavailable")}})
	require.NoError(t, e.Load(context.Background()))
}

func TestFuzzyMatching(t *testing.T) {
	ctx := context.Background()
	sameOrg := model.Prospect{
		ContactName:  "Robert Chen",
		Email:        "rchen@houstonmethodist.org",
		Organization: "The Houston Methodist Hospital",
	}
	otherDomain := sameOrg
	otherDomain.Email = "rchen@gmail.com"
	otherSite := sameOrg
	otherSite.Organization = "Houston Methodist West Hospital"

	t.Run("off by default", func(t *testing.T) {
		e := NewEngine(Options{})
		require.NoError(t, e.Add(ctx, jennifer()))
		dup, err := e.IsDuplicate(ctx, sameOrg)
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("enabled", func(t *testing.T) {
		e := NewEngine(Options{Fuzzy: true})
		require.NoError(t, e.Add(ctx, jennifer()))

		dup, err := e.IsDuplicate(ctx, sameOrg)
		require.NoError(t, err)
		assert.True(t, dup)

		dup, err = e.IsDuplicate(ctx, otherDomain)
		require.NoError(t, err)
		assert.False(t, dup, "different email domain")

		dup, err = e.IsDuplicate(ctx, otherSite)
		require.NoError(t, err)
		assert.False(t, dup, "below threshold")
	})

	t.Run("lower threshold", func(t *testing.T) {
		e := NewEngine(Options{Fuzzy: true, FuzzyThreshold: 0.7})
		require.NoError(t, e.Add(ctx, jennifer()))
		dup, err := e.IsDuplicate(ctx, otherSite)
		require.NoError(t, err)
		assert.True(t, dup)
	})
}

func TestGenerateUniqueRespectsAttemptBudget(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dedup.json")
	e := NewEngine(Options{CachePath: path})

	gen := &cyclicGenerator{prospects: []model.Prospect{
		jennifer(),
		{ContactName: "Robert Chen", Email: "rchen@questlabs.com", Organization: "Quest Laboratories"},
	}}

	got, err := e.GenerateUnique(ctx, 3, gen)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 9, gen.calls)

	c, err := ReadCache(path)
	require.NoError(t, err)
	assert.Len(t, c.LeadHashes, 2)
}

func TestGenerateUniqueSkipsKnownLeads(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(Options{})
	require.NoError(t, e.Add(ctx, jennifer()))

	gen, err := NewSyntheticGenerator(model.CampaignHealthcare, 7, nil)
	require.NoError(t, err)

	got, err := e.GenerateUnique(ctx, 5, gen)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	seen := map[string]bool{}
	for _, p := range got {
		h := ProspectHash(p)
		assert.False(t, seen[h])
		seen[h] = true
	}

	n, _, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestGenerateUniqueStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(Options{})
	got, err := e.GenerateUnique(ctx, 3, &cyclicGenerator{prospects: []model.Prospect{jennifer()}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}
