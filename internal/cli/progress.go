package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// BatchProgress draws a progress bar for a batch run and optionally prints a
// line per prospect above it.
type BatchProgress struct {
	writer  io.Writer
	bar     *progressbar.ProgressBar
	verbose bool
	mu      sync.Mutex
}

// NewBatchProgress creates a progress bar over total prospects.
func NewBatchProgress(writer io.Writer, total int, description string, verbose bool) *BatchProgress {
	p := &BatchProgress{writer: writer, verbose: verbose}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update advances the bar by one prospect. Its signature matches the
// coordinator's per-result callback.
func (p *BatchProgress) Update(_, _ int, result model.ProspectResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verbose {
		if err := p.bar.Clear(); err != nil {
			slog.Warn("Failed to clear progress bar", "error", err)
		}
		if _, err := fmt.Fprintln(p.writer, FormatResultLine(result)); err != nil {
			slog.Warn("Failed to write result line", "error", err)
		}
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar even when the run stopped early.
func (p *BatchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
