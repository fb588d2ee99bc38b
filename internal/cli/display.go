package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

const timeLayout = "2006-01-02 15:04:05"

// StatusIcon returns the glyph shown next to a mission status.
func StatusIcon(status model.MissionStatus) string {
	switch status {
	case model.MissionQueued:
		return "⏳"
	case model.MissionInProgress:
		return "🔄"
	case model.MissionCompleted:
		return "✅"
	case model.MissionFailed:
		return "❌"
	default:
		return "❓"
	}
}

// FormatReachability renders the connection indicator.
func FormatReachability(signal model.ReachabilitySignal) string {
	switch signal {
	case model.ReachabilityReachable:
		return successStyle.Render("🟢 SECURE CONNECTION")
	case model.ReachabilityUnreachable:
		return errorStyle.Render("🔴 CONNECTION LOST")
	case model.ReachabilityPending:
		return pendingStyle.Render("🟡 CONNECTING...")
	default:
		return mutedStyle.Render("❓ UNKNOWN STATUS")
	}
}

// FormatRecord renders one mission as a single line.
func FormatRecord(r model.MissionRecord) string {
	return fmt.Sprintf("%s %-11s %s  %s",
		StatusIcon(r.Status),
		r.Status,
		r.ShortID()+"...",
		mutedStyle.Render(r.LastUpdated.Local().Format(timeLayout)),
	)
}

// FormatCounts renders the per-status totals on one line.
func FormatCounts(snap *model.MissionSnapshot) string {
	parts := make([]string, 0, len(model.AllStatuses)+1)
	parts = append(parts, fmt.Sprintf("Total: %d", snap.Len()))
	for _, s := range model.AllStatuses {
		parts = append(parts, fmt.Sprintf("%s %s: %d", StatusIcon(s), s, snap.Count(s)))
	}
	return strings.Join(parts, "  ")
}

// FormatSnapshot renders the mission list with counts and reachability.
func FormatSnapshot(snap *model.MissionSnapshot, signal model.ReachabilitySignal) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mission Status"))
	b.WriteString("  ")
	b.WriteString(FormatReachability(signal))
	b.WriteString("\n")
	b.WriteString(FormatCounts(snap))
	b.WriteString("\n")

	if snap.Len() == 0 {
		b.WriteString(mutedStyle.Render("📭 No missions yet"))
	} else {
		rows := make([]string, 0, snap.Len())
		for _, r := range snap.Sorted() {
			rows = append(rows, FormatRecord(r))
		}
		b.WriteString(strings.Join(rows, "\n"))
	}

	if !snap.RefreshedAt().IsZero() {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Last refresh: " + snap.RefreshedAt().Local().Format(time.Kitchen)))
	}

	return panelStyle.Render(b.String())
}

// FormatAttempt renders submission feedback. An idle attempt renders empty.
func FormatAttempt(a model.CreationAttempt) string {
	switch a.State {
	case model.CreationSubmitting:
		return pendingStyle.Render("🚀 Deploying...")
	case model.CreationSucceeded:
		return successStyle.Render("✅ " + a.Message)
	case model.CreationFailed:
		return errorStyle.Render("❌ " + a.Message)
	default:
		return ""
	}
}
