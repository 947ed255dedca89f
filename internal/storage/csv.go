package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// CSVHeader is the column order written by WriteProspectsCSV.
var CSVHeader = []string{
	"contact_name", "email", "organization", "title", "location", "facility_type",
	"phone", "website", "pain_point", "budget_range", "department", "priority",
}

// ErrMissingEmailColumn means a CSV header has no email column.
var ErrMissingEmailColumn = errors.New("csv header has no email column")

// CSVImport is the result of reading a prospect CSV.
type CSVImport struct {
	Prospects []model.Prospect
	// Skipped counts data rows without an email address.
	Skipped int
}

// ReadProspectsCSV parses prospects from r. Columns are matched by header
// name, case-insensitively; unknown columns are ignored. Rows without an
// email are skipped. Every prospect is tagged with campaign.
func ReadProspectsCSV(r io.Reader, campaign model.Campaign) (*CSVImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &CSVImport{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if _, ok := index["email"]; !ok {
		return nil, ErrMissingEmailColumn
	}

	out := &CSVImport{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		email := get("email")
		if email == "" {
			out.Skipped++
			continue
		}

		p := model.Prospect{
			ContactName:  get("contact_name"),
			Email:        email,
			Organization: get("organization"),
			Title:        get("title"),
			Location:     get("location"),
			FacilityType: get("facility_type"),
			Phone:        get("phone"),
			Website:      get("website"),
			PainPoint:    get("pain_point"),
			BudgetRange:  get("budget_range"),
			Department:   get("department"),
			Priority:     get("priority"),
			Campaign:     campaign,
			Status:       model.ContactNew,
		}
		p.City, p.State = splitLocation(p.Location)
		out.Prospects = append(out.Prospects, p)
	}
	return out, nil
}

// WriteProspectsCSV writes prospects with CSVHeader.
func WriteProspectsCSV(w io.Writer, prospects []model.Prospect) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range prospects {
		if err := writer.Write([]string{
			p.ContactName, p.Email, p.Organization, p.Title, p.Location, p.FacilityType,
			p.Phone, p.Website, p.PainPoint, p.BudgetRange, p.Department, p.Priority,
		}); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", p.Email, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportCSV reads a prospect CSV file.
func ImportCSV(path string, campaign model.Campaign) (*CSVImport, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadProspectsCSV(f, campaign)
}

// ExportCSV writes prospects to a CSV file, replacing it.
func ExportCSV(path string, prospects []model.Prospect) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	if err := WriteProspectsCSV(f, prospects); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// splitLocation splits "City, ST" into its parts.
func splitLocation(loc string) (city, state string) {
	parts := strings.SplitN(loc, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}
