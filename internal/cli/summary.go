package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// FormatResultLine renders one prospect outcome.
func FormatResultLine(r model.ProspectResult) string {
	who := r.Prospect.Organization
	if r.Prospect.ContactName != "" {
		who = r.Prospect.ContactName + " @ " + who
	}

	score := ""
	if r.Qualification != nil {
		score = fmt.Sprintf(" (score %d, %s)", r.Qualification.TotalScore, r.Qualification.Priority)
	}

	switch r.State {
	case model.StateSent:
		return FormatSuccess(fmt.Sprintf("Sent to %s%s", who, score))
	case model.StateComposed:
		return FormatSuccess(fmt.Sprintf("Composed for %s%s", who, score))
	case model.StateSkipped:
		return subtleStyle.Render(fmt.Sprintf("%s Skipped %s%s", skipIcon, who, score))
	default:
		msg := fmt.Sprintf("Failed %s at %s", who, r.FailedStage)
		if r.Error != "" {
			msg += ": " + r.Error
		}
		return FormatError(msg)
	}
}

// RenderBatchSummary renders the end-of-run box.
func RenderBatchSummary(s model.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Results:\n", chartIcon)
	fmt.Fprintf(&b, "  • Prospects processed: %d\n", s.Total)
	fmt.Fprintf(&b, "  • Successful: %d\n", s.Successful)
	fmt.Fprintf(&b, "  • Failed: %d\n", s.Failed)
	fmt.Fprintf(&b, "  • Skipped (below threshold): %d\n", s.Skipped)
	fmt.Fprintf(&b, "  • High priority: %d\n", s.HighPriority)
	fmt.Fprintf(&b, "  • Emails composed: %d\n", s.EmailsGenerated)
	fmt.Fprintf(&b, "  • Emails sent: %d\n", s.EmailsSent)
	fmt.Fprintf(&b, "  • Tokens used: %d\n", s.TotalTokens)
	fmt.Fprintf(&b, "  • Time taken: %s", s.Duration.Round(time.Second))

	return renderBox("Outreach Run Complete", b.String())
}

// RenderStatus renders contact store totals and today's send count.
func RenderStatus(stats service.ContactStats, sentToday, dailyLimit int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Contacts"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Total: %d\n", stats.Total)

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(&b, "  %s: %d\n", status, stats.ByStatus[model.ContactStatus(status)])
	}
	fmt.Fprintf(&b, "  Emails sent (all time): %d\n\n", stats.EmailsOut)

	b.WriteString(headerStyle.Render("Today"))
	b.WriteString("\n")
	line := fmt.Sprintf("  Sent %d of %d", sentToday, dailyLimit)
	if sentToday >= dailyLimit {
		line = warningStyle.Render(line + " (daily limit reached)")
	}
	b.WriteString(line)

	return renderBox("GFMD Outreach Status", b.String())
}
