package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/storage"
	"github.com/mlynnf123/gfmd-outreach/internal/testutil"
)

func newTestStore(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	return storage.NewMemoryStorage(&common.FixedClock{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)})
}

func newTestEngine(t *testing.T) *dedup.Engine {
	t.Helper()
	engine := dedup.NewEngine(dedup.Options{})
	require.NoError(t, engine.Load(context.Background()))
	return engine
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "send", "leads", "verify", "import", "export", "status", "migrate", "auth", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--env-file", ""})

	require.NoError(t, root.Execute())
	assert.Equal(t, "gfmd dev\n", out.String())
}

func TestRunFlagsAreExclusive(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--csv", "a.csv", "--generate", "3", "--env-file", ""})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestExportFilter(t *testing.T) {
	filter, err := exportFilter("", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, filter.Limit)
	assert.Empty(t, filter.Status)

	filter, err = exportFilter("contacted", 0)
	require.NoError(t, err)
	assert.Equal(t, model.ContactContacted, filter.Status)

	_, err = exportFilter("bounced", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestReadBody(t *testing.T) {
	body, err := readBody("Inline body", "")
	require.NoError(t, err)
	assert.Equal(t, "Inline body", body)

	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("From a file"), 0o600))
	body, err = readBody("", path)
	require.NoError(t, err)
	assert.Equal(t, "From a file", body)

	_, err = readBody("   ", "")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = readBody("", filepath.Join(t.TempDir(), "missing.txt"))
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestFormatVerification(t *testing.T) {
	assert.Contains(t, formatVerification("a@b.org", model.VerificationResult{Valid: true}), "a@b.org: ok")
	assert.Contains(t, formatVerification("a@gmail.com", model.VerificationResult{Reason: "personal email domain"}), "personal email domain")
	assert.Contains(t, formatVerification("a@b.org", model.VerificationResult{Valid: true, Caution: true, Reason: "domain does not match"}), "domain does not match")
}

func TestSelectProspectsFromCSV(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine := newTestEngine(t)

	seen := model.Prospect{ContactName: "Robert Chen", Email: "rchen@memorialhermann.org", Organization: "Memorial Hermann"}
	require.NoError(t, engine.Add(ctx, seen))

	path := filepath.Join(t.TempDir(), "prospects.csv")
	csv := "contact_name,email,organization\n" +
		"Jennifer Martinez,jmartinez@houstonmethodist.org,Houston Methodist\n" +
		"Robert Chen,rchen@memorialhermann.org,Memorial Hermann\n" +
		"No Email,,Somewhere\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	prospects, err := selectProspects(ctx, runOptions{csvPath: path, limit: 10}, model.CampaignHealthcare, store, engine)
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, "jmartinez@houstonmethodist.org", prospects[0].Email)

	stored, err := store.GetContact(ctx, "jmartinez@houstonmethodist.org")
	require.NoError(t, err)
	assert.Equal(t, model.CampaignHealthcare, stored.Campaign)
}

func TestSelectProspectsGenerated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine := newTestEngine(t)

	prospects, err := selectProspects(ctx, runOptions{generate: 4, seed: 7, limit: 3}, model.CampaignLawEnforcement, store, engine)
	require.NoError(t, err)
	require.Len(t, prospects, 3)

	for _, p := range prospects {
		dup, dupErr := engine.IsDuplicate(ctx, p)
		require.NoError(t, dupErr)
		assert.True(t, dup, "generated lead should be recorded")

		_, getErr := store.GetContact(ctx, p.Email)
		assert.NoError(t, getErr)
	}
}

func TestSelectProspectsFromStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.NewProspectBuilder(t).WithFixture(testutil.FixtureHealthcare).Build())
	engine := newTestEngine(t)

	prospects, err := selectProspects(ctx, runOptions{limit: 2}, model.CampaignHealthcare, db.Storage, engine)
	require.NoError(t, err)
	assert.Len(t, prospects, 2)
}

func TestFilterDuplicates(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	a := model.Prospect{ContactName: "A", Email: "a@one.org", Organization: "One"}
	b := model.Prospect{ContactName: "B", Email: "b@two.org", Organization: "Two"}
	require.NoError(t, engine.Add(ctx, a))

	fresh, dupes, err := filterDuplicates(ctx, engine, []model.Prospect{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1, dupes)
	assert.Equal(t, []model.Prospect{b}, fresh)
}
