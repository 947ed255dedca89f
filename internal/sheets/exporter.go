package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// Worksheet titles.
const (
	ProspectsSheet   = "Prospects"
	SentEmailsSheet  = "Sent Emails"
	AgentOutputSheet = "Agent Output"
)

// MaxCellLength is the Sheets per-cell character limit.
const MaxCellLength = 50000

const timestampLayout = "2006-01-02 15:04:05"

var headers = map[string][]string{
	ProspectsSheet: {
		"Timestamp", "Contact Name", "Email", "Organization", "Title", "Location",
		"Facility Type", "Campaign", "Score", "Priority", "Action", "Reasoning",
	},
	SentEmailsSheet: {
		"Timestamp", "Contact Name", "Email", "Organization", "Subject", "Body",
		"Message ID", "Status", "Reason",
	},
	AgentOutputSheet: {
		"Timestamp", "Stage", "Email", "Organization", "Tokens", "Fallback", "Output",
	},
}

// Exporter appends pipeline activity to the tracking spreadsheet. It
// implements service.Exporter and dedup.RemoteSource.
type Exporter struct {
	api           ValuesAPI
	clock         common.Clock
	logger        *slog.Logger
	ready         map[string]bool
	spreadsheetID string
	config        Config
	mu            sync.Mutex
}

// NewExporter opens the configured spreadsheet, creating one when no ID is set.
func NewExporter(ctx context.Context, api ValuesAPI, config Config, clock common.Clock, logger *slog.Logger) (*Exporter, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: sheets API client", common.ErrMissingConfig)
	}
	if err := config.validateRetry(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = DefaultSpreadsheetName
	}

	e := &Exporter{
		api:           api,
		clock:         clock,
		logger:        logger,
		config:        config,
		spreadsheetID: config.SpreadsheetID,
		ready:         make(map[string]bool),
	}

	if e.spreadsheetID == "" {
		var id string
		err := common.WithRetry(ctx, func() error {
			var createErr error
			id, createErr = api.Create(ctx, config.SpreadsheetName, config.TimeZone)
			return createErr
		}, e.retryOptions())
		if err != nil {
			return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		e.spreadsheetID = id
		logger.Info("created new spreadsheet", "id", id, "name", config.SpreadsheetName)
	}

	return e, nil
}

// SpreadsheetID returns the workbook being written.
func (e *Exporter) SpreadsheetID() string {
	return e.spreadsheetID
}

// ExportProspect appends a qualified prospect row.
func (e *Exporter) ExportProspect(ctx context.Context, p model.Prospect, qual *model.QualificationResult) error {
	row := []any{
		e.timestamp(time.Time{}), p.ContactName, p.Email, p.Organization, p.Title,
		p.Location, p.FacilityType, string(p.Campaign), "", p.Priority, "", "",
	}
	if qual != nil {
		row[8] = qual.TotalScore
		row[9] = string(qual.Priority)
		row[10] = string(qual.RecommendedAction)
		row[11] = truncate(qual.Reasoning)
	}
	return e.appendRow(ctx, ProspectsSheet, row)
}

// ExportSentEmail appends a send attempt row.
func (e *Exporter) ExportSentEmail(ctx context.Context, p model.Prospect, email model.ComposedEmail, result model.SendResult) error {
	status := "failed"
	if result.Success {
		status = "sent"
	}
	row := []any{
		e.timestamp(result.SentAt), p.ContactName, email.To, p.Organization,
		email.Subject, truncate(email.Body), result.MessageID, status, result.Reason,
	}
	return e.appendRow(ctx, SentEmailsSheet, row)
}

// ExportAgentOutput appends one stage's raw output.
func (e *Exporter) ExportAgentOutput(ctx context.Context, output model.AgentOutput) error {
	row := []any{
		e.timestamp(output.Timestamp), output.Stage, output.Email, output.Organization,
		output.Tokens, strconv.FormatBool(output.Fallback), truncate(output.Output),
	}
	return e.appendRow(ctx, AgentOutputSheet, row)
}

// ExistingLeads reads every lead recorded on the Prospects worksheet.
func (e *Exporter) ExistingLeads(ctx context.Context) ([]dedup.Lead, error) {
	exists, err := e.hasSheet(ctx, ProspectsSheet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var rows [][]any
	err = common.WithRetry(ctx, func() error {
		var getErr error
		rows, getErr = e.api.Get(ctx, e.spreadsheetID, quoteRange(ProspectsSheet, "A:Z"))
		return getErr
	}, e.retryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to read prospects: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(cellString(h)))] = i
	}
	nameCol, hasName := cols["contact name"]
	emailCol, hasEmail := cols["email"]
	orgCol, hasOrg := cols["organization"]
	if !hasName && !hasEmail && !hasOrg {
		return nil, nil
	}

	leads := make([]dedup.Lead, 0, len(rows)-1)
	for _, row := range rows[1:] {
		lead := dedup.Lead{
			Name:         cellAt(row, nameCol, hasName),
			Email:        cellAt(row, emailCol, hasEmail),
			Organization: cellAt(row, orgCol, hasOrg),
		}
		if lead == (dedup.Lead{}) {
			continue
		}
		leads = append(leads, lead)
	}

	e.logger.Debug("loaded existing leads from sheet", "count", len(leads))
	return leads, nil
}

func (e *Exporter) appendRow(ctx context.Context, title string, row []any) error {
	if err := e.ensureSheet(ctx, title); err != nil {
		return fmt.Errorf("failed to prepare worksheet %q: %w", title, err)
	}

	err := common.WithRetry(ctx, func() error {
		return e.api.Append(ctx, e.spreadsheetID, quoteRange(title, "A1"), [][]any{row})
	}, e.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to append to %q: %w", title, err)
	}
	return nil
}

// ensureSheet creates the worksheet and writes its header on first use.
func (e *Exporter) ensureSheet(ctx context.Context, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready[title] {
		return nil
	}

	exists, err := e.hasSheet(ctx, title)
	if err != nil {
		return err
	}

	header := headers[title]
	needsHeader := !exists
	if exists {
		var first [][]any
		err = common.WithRetry(ctx, func() error {
			var getErr error
			first, getErr = e.api.Get(ctx, e.spreadsheetID, quoteRange(title, "A1:Z1"))
			return getErr
		}, e.retryOptions())
		if err != nil {
			return err
		}
		needsHeader = len(first) == 0 || len(first[0]) == 0
	} else {
		err = common.WithRetry(ctx, func() error {
			return e.api.AddSheet(ctx, e.spreadsheetID, title)
		}, e.retryOptions())
		if err != nil {
			return err
		}
		e.logger.Info("created worksheet", "title", title)
	}

	if needsHeader {
		row := make([]any, len(header))
		for i, h := range header {
			row[i] = h
		}
		err = common.WithRetry(ctx, func() error {
			return e.api.Append(ctx, e.spreadsheetID, quoteRange(title, "A1"), [][]any{row})
		}, e.retryOptions())
		if err != nil {
			return err
		}

		if e.config.EnableFormatting {
			if err := e.api.FormatHeader(ctx, e.spreadsheetID, title, len(header)); err != nil {
				e.logger.Warn("failed to apply formatting", "worksheet", title, "error", err)
			}
		}
	}

	e.ready[title] = true
	return nil
}

func (e *Exporter) hasSheet(ctx context.Context, title string) (bool, error) {
	var titles []string
	err := common.WithRetry(ctx, func() error {
		var listErr error
		titles, listErr = e.api.SheetTitles(ctx, e.spreadsheetID)
		return listErr
	}, e.retryOptions())
	if err != nil {
		return false, fmt.Errorf("failed to list worksheets: %w", err)
	}
	return slices.Contains(titles, title), nil
}

func (e *Exporter) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  e.config.RetryAttempts,
		InitialDelay: e.config.RetryDelay,
		MaxDelay:     e.config.MaxRetryDelay,
		Multiplier:   2.0,
	}
}

func (e *Exporter) timestamp(t time.Time) string {
	if t.IsZero() {
		t = e.clock.Now()
	}
	return t.Format(timestampLayout)
}

func quoteRange(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxCellLength {
		return s
	}
	return string(runes[:MaxCellLength])
}

func cellAt(row []any, idx int, ok bool) string {
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[idx]))
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
