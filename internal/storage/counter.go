package storage

import (
	"fmt"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// DefaultDailyLimit caps sends per day when no limit is configured.
const DefaultDailyLimit = 50

const dayLayout = "2006-01-02"

type counterState struct {
	LastUpdated time.Time `json:"last_updated"`
	Date        string    `json:"date"`
	Count       int       `json:"count"`
}

// FileCounter is a daily send counter persisted as a JSON file. The count
// resets when the stored date is not today.
type FileCounter struct {
	clock common.Clock
	path  string
	limit int
}

// NewFileCounter creates a counter. A non-positive limit uses DefaultDailyLimit.
func NewFileCounter(path string, limit int, clock common.Clock) *FileCounter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &FileCounter{path: path, limit: limit, clock: clock}
}

func (c *FileCounter) today() string {
	return c.clock.Now().Format(dayLayout)
}

func (c *FileCounter) load() (counterState, error) {
	var st counterState
	if _, err := readJSONFile(c.path, &st); err != nil {
		return counterState{}, err
	}
	if st.Date != c.today() {
		return counterState{Date: c.today()}, nil
	}
	return st, nil
}

// Count returns today's count.
func (c *FileCounter) Count() (int, error) {
	st, err := c.load()
	if err != nil {
		return 0, err
	}
	return st.Count, nil
}

// Limit returns the daily limit.
func (c *FileCounter) Limit() int {
	return c.limit
}

// CanSendMore reports whether today's count is under the limit.
func (c *FileCounter) CanSendMore() (bool, error) {
	n, err := c.Count()
	if err != nil {
		return false, err
	}
	return n < c.limit, nil
}

// Increment records one send and returns the new count. At the limit it
// returns ErrDailyLimitReached and leaves the count unchanged.
func (c *FileCounter) Increment() (int, error) {
	st, err := c.load()
	if err != nil {
		return 0, err
	}
	if st.Count >= c.limit {
		return st.Count, fmt.Errorf("%w: %d of %d", common.ErrDailyLimitReached, st.Count, c.limit)
	}
	st.Count++
	st.LastUpdated = c.clock.Now()
	if err := writeJSONFile(c.path, st); err != nil {
		return 0, err
	}
	return st.Count, nil
}

var _ service.SendCounter = (*FileCounter)(nil)
