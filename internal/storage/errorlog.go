package storage

import (
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// DefaultErrorLogSize is how many send errors the log keeps.
const DefaultErrorLogSize = 100

// ErrorLog is a JSON array of the most recent send errors.
type ErrorLog struct {
	path string
	max  int
}

// NewErrorLog creates an error log. A non-positive size uses DefaultErrorLogSize.
func NewErrorLog(path string, size int) *ErrorLog {
	if size <= 0 {
		size = DefaultErrorLogSize
	}
	return &ErrorLog{path: path, max: size}
}

// Record appends entry, dropping the oldest entries past the cap.
func (l *ErrorLog) Record(entry model.SendError) error {
	entries, err := l.Entries()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if len(entries) > l.max {
		entries = entries[len(entries)-l.max:]
	}
	return writeJSONFile(l.path, entries)
}

// Entries returns the logged errors, oldest first.
func (l *ErrorLog) Entries() ([]model.SendError, error) {
	var entries []model.SendError
	if _, err := readJSONFile(l.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ service.ErrorRecorder = (*ErrorLog)(nil)
