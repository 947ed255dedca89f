package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

var testNow = time.Date(2025, 4, 15, 14, 30, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-123"
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetryDelay = time.Millisecond
	return cfg
}

func newTestExporter(t *testing.T, api *MockValues) *Exporter {
	t.Helper()
	e, err := NewExporter(context.Background(), api, testConfig(), &common.FixedClock{T: testNow}, nil)
	require.NoError(t, err)
	return e
}

func testProspect() model.Prospect {
	return model.Prospect{
		ContactName:  "Dr. Jennifer Martinez",
		Email:        "jmartinez@houstonmethodist.org",
		Organization: "Houston Methodist",
		Title:        "Laboratory Director",
		Location:     "Houston, TX",
		FacilityType: "Hospital",
		Campaign:     model.CampaignHealthcare,
	}
}

func TestNewExporterCreatesSpreadsheet(t *testing.T) {
	api := NewMockValues()
	cfg := testConfig()
	cfg.SpreadsheetID = ""

	e, err := NewExporter(context.Background(), api, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock-spreadsheet-1", e.SpreadsheetID())
	assert.Equal(t, 1, api.CreateCalls)

	_, err = NewExporter(context.Background(), nil, cfg, nil, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestExportProspectCreatesWorksheetOnce(t *testing.T) {
	api := NewMockValues()
	e := newTestExporter(t, api)
	ctx := context.Background()

	qual := &model.QualificationResult{
		TotalScore:        82,
		Priority:          model.PriorityHigh,
		RecommendedAction: model.ActionSendEmail,
		Reasoning:         "Large hospital lab with turnaround issues",
	}
	require.NoError(t, e.ExportProspect(ctx, testProspect(), qual))
	require.NoError(t, e.ExportProspect(ctx, testProspect(), nil))

	rows := api.Rows(ProspectsSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, "Timestamp", rows[0][0])
	assert.Len(t, rows[0], len(headers[ProspectsSheet]))

	assert.Equal(t, []any{
		"2025-04-15 14:30:00", "Dr. Jennifer Martinez", "jmartinez@houstonmethodist.org",
		"Houston Methodist", "Laboratory Director", "Houston, TX", "Hospital", "healthcare",
		82, "HIGH", "send_email", "Large hospital lab with turnaround issues",
	}, rows[1])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, 1, api.FormatCalls)
}

func TestExistingWorksheetKeepsHeader(t *testing.T) {
	api := NewMockValues()
	api.AddRows(SentEmailsSheet, []any{"Timestamp", "Contact Name"})
	e := newTestExporter(t, api)

	result := model.SendResult{Success: true, MessageID: "msg-1", Reason: model.ReasonSent, SentAt: testNow.Add(time.Minute)}
	email := model.ComposedEmail{To: "jmartinez@houstonmethodist.org", Subject: "Faster toxicology", Body: "Hi Jennifer,"}
	require.NoError(t, e.ExportSentEmail(context.Background(), testProspect(), email, result))

	rows := api.Rows(SentEmailsSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-04-15 14:31:00", rows[1][0])
	assert.Equal(t, "msg-1", rows[1][6])
	assert.Equal(t, "sent", rows[1][7])
	assert.Equal(t, 0, api.FormatCalls)
}

func TestEmptyWorksheetGetsHeader(t *testing.T) {
	api := NewMockValues()
	require.NoError(t, api.AddSheet(context.Background(), "", AgentOutputSheet))
	e := newTestExporter(t, api)

	require.NoError(t, e.ExportAgentOutput(context.Background(), model.AgentOutput{
		Stage:  "research",
		Email:  "a@b.org",
		Output: `{"ok":true}`,
		Tokens: 120,
	}))

	rows := api.Rows(AgentOutputSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "Stage", rows[0][1])
	assert.Equal(t, []any{"2025-04-15 14:30:00", "research", "a@b.org", "", 120, "false", `{"ok":true}`}, rows[1])
}

func TestAgentOutputTruncated(t *testing.T) {
	api := NewMockValues()
	e := newTestExporter(t, api)

	long := strings.Repeat("é", MaxCellLength+10)
	require.NoError(t, e.ExportAgentOutput(context.Background(), model.AgentOutput{Stage: "composition", Output: long}))

	rows := api.Rows(AgentOutputSheet)
	out, ok := rows[1][6].(string)
	require.True(t, ok)
	assert.Equal(t, MaxCellLength, len([]rune(out)))
}

func TestAppendRetriesTransientErrors(t *testing.T) {
	api := NewMockValues()
	api.AddRows(ProspectsSheet, []any{"Timestamp"})
	failures := 2
	api.AppendFunc = func(string, [][]any) error {
		if failures > 0 {
			failures--
			return classifyError(&googleapi.Error{Code: http.StatusServiceUnavailable})
		}
		return nil
	}
	e := newTestExporter(t, api)

	require.NoError(t, e.ExportProspect(context.Background(), testProspect(), nil))
	assert.Equal(t, 3, api.AppendCalls)
	assert.Len(t, api.Rows(ProspectsSheet), 2)
}

func TestAppendStopsOnPermanentError(t *testing.T) {
	api := NewMockValues()
	api.AddRows(ProspectsSheet, []any{"Timestamp"})
	api.AppendFunc = func(string, [][]any) error {
		return classifyError(&googleapi.Error{Code: http.StatusForbidden})
	}
	e := newTestExporter(t, api)

	err := e.ExportProspect(context.Background(), testProspect(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, api.AppendCalls)
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, classifyError(plain))

	rate := classifyError(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, rate, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(rate))

	assert.True(t, common.IsRetryable(classifyError(&googleapi.Error{Code: http.StatusBadGateway})))
	assert.False(t, common.IsRetryable(classifyError(&googleapi.Error{Code: http.StatusNotFound})))
}

func TestExistingLeads(t *testing.T) {
	t.Run("maps columns by header", func(t *testing.T) {
		api := NewMockValues()
		api.AddRows(ProspectsSheet,
			[]any{"Organization", "Email", "Notes", "Contact Name"},
			[]any{"Houston Methodist", "jmartinez@houstonmethodist.org", "x", "Jennifer Martinez"},
			[]any{"Harris County Sheriff's Office"},
			[]any{},
		)
		e := newTestExporter(t, api)

		leads, err := e.ExistingLeads(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []dedup.Lead{
			{Name: "Jennifer Martinez", Email: "jmartinez@houstonmethodist.org", Organization: "Houston Methodist"},
			{Organization: "Harris County Sheriff's Office"},
		}, leads)
	})

	t.Run("missing worksheet", func(t *testing.T) {
		e := newTestExporter(t, NewMockValues())
		leads, err := e.ExistingLeads(context.Background())
		require.NoError(t, err)
		assert.Empty(t, leads)
	})

	t.Run("feeds the dedup engine", func(t *testing.T) {
		api := NewMockValues()
		e := newTestExporter(t, api)
		require.NoError(t, e.ExportProspect(context.Background(), testProspect(), nil))

		engine := dedup.NewEngine(dedup.Options{Remote: e, Clock: &common.FixedClock{T: testNow}})
		require.NoError(t, engine.Load(context.Background()))
		dup, err := engine.IsDuplicate(context.Background(), testProspect())
		require.NoError(t, err)
		assert.True(t, dup)
	})
}

var (
	_ service.Exporter   = (*Exporter)(nil)
	_ dedup.RemoteSource = (*Exporter)(nil)
	_ ValuesAPI          = (*MockValues)(nil)
	_ ValuesAPI          = (*GoogleValues)(nil)
)
