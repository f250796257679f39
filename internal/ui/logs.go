package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/logtail"
)

// readLogsCmd tails walkin's own log file.
func (m Model) readLogsCmd() tea.Cmd {
	path := m.config.LogPath()
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func (m Model) pingCmd() tea.Cmd {
	if m.client == nil {
		return nil
	}
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		n, err := client.Ping(ctx)
		return pingMsg{counselors: n, err: err}
	}
}

func connectionOK(counselors int) string {
	return fmt.Sprintf("API Connection Successful! Counselors loaded: %d", counselors)
}

// handleLogsKey processes keys on the logs page.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Ping):
		if m.pinging {
			return m, nil
		}
		m.pinging = true
		m.pingText = ""
		m.pingErr = nil
		m.updateLogViewport()
		return m, m.pingCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.readLogsCmd()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) updateLogViewport() {
	if !m.ready && m.logViewport.Width == 0 {
		return
	}
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.logContent())
	// Follow the tail unless the user scrolled up.
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the logs page: the connection test line and the log tail.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	var status string
	switch {
	case m.pinging:
		status = styles.WarningText.Render("Testing...")
	case m.pingErr != nil:
		status = styles.DangerText.Render("API Connection Failed: " + m.pingErr.Error())
	case m.pingText != "":
		status = styles.SuccessText.Render(m.pingText)
	default:
		status = styles.MutedText.Render("API URL: " + truncate(m.config.EndpointURL, 50) + "  (p to test)")
	}

	path := styles.FaintText.Render("log " + truncateMiddle(m.config.LogPath(), 60))
	return status + "\n" + path + "\n" + m.logViewport.View()
}

// logContent formats the tail, newest last.
func (m Model) logContent() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render("Failed to read log: " + m.logErr.Error())
	}
	if len(m.logEntries) == 0 {
		return styles.MutedText.Render("No log entries yet.")
	}
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.formatLogEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

func (m Model) formatLogEntry(e logtail.Entry, styles Styles) string {
	if !e.Structured {
		return styles.FaintText.Render(e.Raw)
	}
	ts := ""
	if !e.Time.IsZero() {
		ts = e.Time.In(time.Local).Format("15:04:05")
	}
	level := strings.ToUpper(e.Level.String())
	if e.Level == zerolog.NoLevel {
		level = "-"
	}

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(ts))
	b.WriteString(" ")
	b.WriteString(m.getLevelStyle(e.Level, styles).Render(padRight(level, 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, f := range e.Fields {
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(f.Key + "="))
		b.WriteString(styles.InfoText.Render(f.Value))
	}
	return b.String()
}

// getLevelStyle returns the style for a log level.
func (m Model) getLevelStyle(level zerolog.Level, styles Styles) lipgloss.Style {
	switch level {
	case zerolog.InfoLevel:
		return styles.SuccessText
	case zerolog.WarnLevel:
		return styles.WarningText
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return styles.DangerText
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return styles.InfoText
	default:
		return styles.Text
	}
}
