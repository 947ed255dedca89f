package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

// MockValues is an in-memory ValuesAPI for testing.
type MockValues struct {
	AppendFunc  func(title string, rows [][]any) error
	Sheets      map[string][][]any
	order       []string
	AppendCalls int
	FormatCalls int
	CreateCalls int
	nextID      int
	mu          sync.Mutex
}

// NewMockValues creates an empty mock workbook.
func NewMockValues() *MockValues {
	return &MockValues{Sheets: make(map[string][][]any)}
}

// Create implements ValuesAPI.
func (m *MockValues) Create(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	m.nextID++
	return fmt.Sprintf("mock-spreadsheet-%d", m.nextID), nil
}

// SheetTitles implements ValuesAPI.
func (m *MockValues) SheetTitles(_ context.Context, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	titles := make([]string, len(m.order))
	copy(titles, m.order)
	return titles, nil
}

// AddSheet implements ValuesAPI.
func (m *MockValues) AddSheet(_ context.Context, _, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Sheets[title]; ok {
		return fmt.Errorf("worksheet %q: %w", title, common.ErrDuplicateEntry)
	}
	m.addSheetLocked(title)
	return nil
}

// AddRows seeds a worksheet, creating it if needed.
func (m *MockValues) AddRows(title string, rows ...[]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Sheets[title]; !ok {
		m.addSheetLocked(title)
	}
	m.Sheets[title] = append(m.Sheets[title], rows...)
}

func (m *MockValues) addSheetLocked(title string) {
	m.Sheets[title] = nil
	m.order = append(m.order, title)
}

// Append implements ValuesAPI.
func (m *MockValues) Append(_ context.Context, _, sheetRange string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls++
	title := rangeTitle(sheetRange)
	if m.AppendFunc != nil {
		if err := m.AppendFunc(title, rows); err != nil {
			return err
		}
	}
	if _, ok := m.Sheets[title]; !ok {
		return fmt.Errorf("worksheet %q: %w", title, common.ErrNotFound)
	}
	m.Sheets[title] = append(m.Sheets[title], rows...)
	return nil
}

// Get implements ValuesAPI. A range ending in "1" returns the first row only.
func (m *MockValues) Get(_ context.Context, _, sheetRange string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	title := rangeTitle(sheetRange)
	rows, ok := m.Sheets[title]
	if !ok {
		return nil, fmt.Errorf("worksheet %q: %w", title, common.ErrNotFound)
	}
	if strings.HasSuffix(sheetRange, "1") && len(rows) > 1 {
		rows = rows[:1]
	}
	out := make([][]any, len(rows))
	copy(out, rows)
	return out, nil
}

// FormatHeader implements ValuesAPI.
func (m *MockValues) FormatHeader(_ context.Context, _, _ string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FormatCalls++
	return nil
}

// Rows returns a copy of a worksheet's rows.
func (m *MockValues) Rows(title string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([][]any, len(m.Sheets[title]))
	copy(rows, m.Sheets[title])
	return rows
}

func rangeTitle(sheetRange string) string {
	title, _, _ := strings.Cut(sheetRange, "!")
	title = strings.TrimPrefix(strings.TrimSuffix(title, "'"), "'")
	return strings.ReplaceAll(title, "''", "'")
}
