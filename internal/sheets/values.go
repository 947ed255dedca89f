package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/googleauth"
)

// ValuesAPI is the slice of the Sheets API the exporter needs.
type ValuesAPI interface {
	Create(ctx context.Context, title, timeZone string) (string, error)
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	Append(ctx context.Context, spreadsheetID, sheetRange string, rows [][]any) error
	Get(ctx context.Context, spreadsheetID, sheetRange string) ([][]any, error)
	FormatHeader(ctx context.Context, spreadsheetID, title string, columns int) error
}

// GoogleValues implements ValuesAPI on the Sheets v4 service.
type GoogleValues struct {
	service *sheets.Service
}

// NewGoogleValues creates an authenticated Sheets client.
func NewGoogleValues(ctx context.Context, config Config) (*GoogleValues, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opt, err := googleauth.ClientOption(ctx, config.Credentials(), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &GoogleValues{service: srv}, nil
}

// Create makes a new spreadsheet and returns its ID.
func (g *GoogleValues) Create(ctx context.Context, title, timeZone string) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
	}

	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", classifyError(err)
	}
	return created.SpreadsheetId, nil
}

// SheetTitles lists the worksheet titles of a spreadsheet.
func (g *GoogleValues) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, classifyError(err)
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// AddSheet adds a worksheet.
func (g *GoogleValues) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	_, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return classifyError(err)
}

// Append adds rows after the last row of the range.
func (g *GoogleValues) Append(ctx context.Context, spreadsheetID, sheetRange string, rows [][]any) error {
	_, err := g.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return classifyError(err)
}

// Get reads a range.
func (g *GoogleValues) Get(ctx context.Context, spreadsheetID, sheetRange string) ([][]any, error) {
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, classifyError(err)
	}
	return resp.Values, nil
}

// FormatHeader bolds and freezes the header row of a worksheet.
func (g *GoogleValues) FormatHeader(ctx context.Context, spreadsheetID, title string, columns int) error {
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return classifyError(err)
	}

	var sheetID int64 = -1
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			sheetID = s.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return fmt.Errorf("worksheet %q: %w", title, common.ErrNotFound)
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err = g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return classifyError(err)
}

// classifyError marks quota and server errors as retryable and everything
// else as permanent.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %v", common.ErrRateLimit, err), Retryable: true}
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}
