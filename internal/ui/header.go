package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
	"github.com/five82/walkin/internal/state"
	"github.com/five82/walkin/internal/workflow"
)

const logoText = "walkin"

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	return bg.FillLine(m.buildStatusContent(styles, bg), m.width)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth

	var parts []string

	// Logo
	parts = append(parts, bg.Render(logoText, styles.Logo))

	// Connection indicator
	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE "+classifyConnectionError(m.snapshot.LastError), styles.DangerText))
	case m.refreshing:
		parts = append(parts, bg.Render("● Loading...", styles.WarningText))
	case m.snapshot.Loaded():
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● Connecting...", styles.WarningText))
	}

	// User
	if name := m.snapshot.Identity.DisplayName(); name != "" {
		parts = append(parts, bg.Render(name, styles.Text.Bold(true)))
	}

	// Date
	if !compact {
		parts = append(parts, bg.Render(time.Now().Format("Monday, January 2, 2006"), styles.MutedText))
	}

	// Queue count
	parts = append(parts,
		bg.Render("Today:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Visits)), styles.Text),
	)

	// Timestamp with relative time
	if timeStr := formatTimestamp(m.snapshot.LastRefresh, time.Now()); timeStr != "" {
		parts = append(parts, bg.Render("Updated", styles.FaintText)+bg.Space()+bg.Render(timeStr, styles.MutedText))
	}

	// Error indicator
	if m.snapshot.LastError != nil && !m.snapshot.IsOffline() {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), maxErr), styles.DangerText),
		)
	}

	return bg.Join(parts, "  ")
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}

	since := now.Sub(at)
	timeStr := at.Format("3:04 PM")

	switch {
	case since < time.Minute:
		timeStr += " (now)"
	case since < time.Hour:
		timeStr += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		timeStr += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	switch clinic.KindOf(err) {
	case clinic.KindConfiguration:
		return "NOT CONFIGURED"
	case clinic.KindParse:
		return "BAD RESPONSE"
	case clinic.KindApplication:
		return "BACKEND ERROR"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "UNREACHABLE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.showDetail:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"esc", "Close"},
			{"?", "More"},
		}
	case m.snapshot.Page == state.PageSearch:
		commands = []cmd{
			{"/", "Edit term"},
			{"j/k", "Navigate"},
			{"enter", "Details"},
			{"q", "Queue"},
			{"?", "More"},
		}
	case m.snapshot.Page == state.PageAnalytics:
		commands = []cmd{
			{"d", fmt.Sprintf("%d days", m.analyticsDays)},
			{"r", "Reload"},
			{"j/k", "Scroll"},
			{"q", "Queue"},
			{"?", "More"},
		}
	case m.snapshot.Page == state.PageLogs:
		commands = []cmd{
			{"p", "Test connection"},
			{"r", "Reload"},
			{"j/k", "Scroll"},
			{"q", "Queue"},
			{"?", "More"},
		}
	default: // queue
		commands = []cmd{
			{"f", m.snapshot.Filter.Label()}, // Shows current filter state
			{"j/k", "Navigate"},
			{"enter", "Details"},
		}
		if visit, ok := m.selectedVisit(); ok {
			for _, a := range workflow.Available(visit.Status) {
				commands = append(commands, cmd{m.keys.actionKey(a), a.Label()})
			}
		}
		commands = append(commands, cmd{"r", "Refresh"}, cmd{"tab", "Pages"}, cmd{"?", "More"})
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	segments = append(segments, bg.Render(m.pageTitle(), styles.AccentText.Bold(true)))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	return styles.Footer.Width(m.width).Render(strings.Join(segments, sep))
}

// pageTitle names what the content area shows.
func (m Model) pageTitle() string {
	if m.showDetail {
		return "Patient"
	}
	if m.snapshot.Page == state.PageQueue {
		return queue.Project(m.snapshot.Visits, m.snapshot.Filter).Heading()
	}
	return m.snapshot.Page.String()
}
