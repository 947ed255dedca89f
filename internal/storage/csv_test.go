package storage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

func TestReadProspectsCSV(t *testing.T) {
	input := "\ufeffEmail,Contact_Name,organization,location,notes,priority\n" +
		"jmartinez@houstonmethodist.org,Jennifer Martinez,Houston Methodist,\"Houston, TX\",met at conf,HIGH\n" +
		",No Email,Somewhere,,,\n" +
		"rchen@questlabs.com,Robert Chen,Quest Labs,Dallas\n"

	got, err := ReadProspectsCSV(strings.NewReader(input), model.CampaignHealthcare)
	require.NoError(t, err)
	require.Len(t, got.Prospects, 2)
	assert.Equal(t, 1, got.Skipped)

	first := got.Prospects[0]
	assert.Equal(t, "Jennifer Martinez", first.ContactName)
	assert.Equal(t, "jmartinez@houstonmethodist.org", first.Email)
	assert.Equal(t, "Houston", first.City)
	assert.Equal(t, "TX", first.State)
	assert.Equal(t, "HIGH", first.Priority)
	assert.Equal(t, model.CampaignHealthcare, first.Campaign)
	assert.Equal(t, model.ContactNew, first.Status)

	second := got.Prospects[1]
	assert.Equal(t, "Dallas", second.City)
	assert.Empty(t, second.State)
	assert.Empty(t, second.Priority, "short rows leave missing columns empty")
}

func TestReadProspectsCSVRequiresEmailColumn(t *testing.T) {
	_, err := ReadProspectsCSV(strings.NewReader("name,org\nA,B\n"), model.CampaignHealthcare)
	assert.ErrorIs(t, err, ErrMissingEmailColumn)
}

func TestReadProspectsCSVEmpty(t *testing.T) {
	got, err := ReadProspectsCSV(strings.NewReader(""), model.CampaignHealthcare)
	require.NoError(t, err)
	assert.Empty(t, got.Prospects)
}

func TestCSVExportImport(t *testing.T) {
	prospects := []model.Prospect{
		{
			ContactName:  "Alan Brooks",
			Email:        "abrooks@harriscountytx.gov",
			Organization: "Harris County Sheriff's Office",
			Title:        "Narcotics Commander",
			Location:     "Houston, TX",
			FacilityType: "Sheriff's Office",
			Phone:        "(713) 555-0100",
			Website:      "https://www.hcso.hctx.net",
			PainPoint:    "Evidence testing backlog",
			BudgetRange:  "$50K-$100K",
			Department:   "Narcotics",
			Priority:     "MEDIUM",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProspectsCSV(&buf, prospects))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(CSVHeader, ",")+"\n"))

	path := filepath.Join(t.TempDir(), "out", "prospects.csv")
	require.NoError(t, ExportCSV(path, prospects))

	got, err := ImportCSV(path, model.CampaignLawEnforcement)
	require.NoError(t, err)
	require.Len(t, got.Prospects, 1)

	p := got.Prospects[0]
	assert.Equal(t, prospects[0].Organization, p.Organization)
	assert.Equal(t, prospects[0].Phone, p.Phone)
	assert.Equal(t, prospects[0].BudgetRange, p.BudgetRange)
	assert.Equal(t, "Houston", p.City)
	assert.Equal(t, model.CampaignLawEnforcement, p.Campaign)
}

func TestImportCSVMissingFile(t *testing.T) {
	_, err := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"), model.CampaignHealthcare)
	assert.Error(t, err)
}
