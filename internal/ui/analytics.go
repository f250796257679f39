package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

const (
	chartLabelWidth   = 16
	chartBarWidth     = 36
	counselorLabelMax = 15
)

func (m Model) fetchAnalyticsCmd(days int) tea.Cmd {
	if m.client == nil {
		return nil
	}
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		a, err := client.Analytics(ctx, days)
		return analyticsMsg{days: days, analytics: a, err: err}
	}
}

func (m Model) handleAnalytics(msg analyticsMsg) (tea.Model, tea.Cmd) {
	// The window changed while this one was loading.
	if msg.days != m.analyticsDays {
		return m, nil
	}
	m.analyticsLoading = false
	if msg.err != nil {
		m.analyticsErr = msg.err
		m.logger.Debug().Err(msg.err).Int("days", msg.days).Msg("analytics load failed")
		m.updateAnalyticsViewport()
		status := m.setStatus(statusError, "Failed to load analytics")
		return m, status
	}
	a := msg.analytics
	m.analytics = &a
	m.analyticsErr = nil
	m.updateAnalyticsViewport()
	return m, nil
}

// handleAnalyticsKey processes keys on the analytics page.
func (m Model) handleAnalyticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleDays):
		m.analyticsDays = nextWindow(m.analyticsDays)
		m.analyticsLoading = true
		m.updateAnalyticsViewport()
		return m, m.fetchAnalyticsCmd(m.analyticsDays)
	case key.Matches(msg, m.keys.Refresh):
		m.analyticsLoading = true
		m.updateAnalyticsViewport()
		return m, m.fetchAnalyticsCmd(m.analyticsDays)
	case key.Matches(msg, m.keys.Top):
		m.analyticsViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.analyticsViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.analyticsViewport, cmd = m.analyticsViewport.Update(msg)
	return m, cmd
}

func (m *Model) updateAnalyticsViewport() {
	if !m.ready && m.analyticsViewport.Width == 0 {
		return
	}
	m.analyticsViewport.SetContent(m.analyticsContent())
}

func (m Model) renderAnalytics() string {
	return m.analyticsViewport.View()
}

// analyticsContent renders metrics and charts for the selected window.
func (m Model) analyticsContent() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("Last %d days", m.analyticsDays)))
	b.WriteString("\n\n")

	switch {
	case m.analyticsLoading:
		b.WriteString(styles.MutedText.Render("Loading analytics..."))
		return b.String()
	case m.analyticsErr != nil:
		b.WriteString(styles.DangerText.Render("Failed to load analytics"))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(m.analyticsErr.Error()))
		return b.String()
	case m.analytics == nil:
		b.WriteString(styles.MutedText.Render("No analytics loaded."))
		return b.String()
	}

	met := m.analytics.Metrics
	rate := styles.RatingStyle(queue.CompletionRating(met.CompletionRate)).Render(formatPercent(met.CompletionRate))
	metrics := []string{
		m.metricBox("Total Visits", styles.InfoText.Bold(true).Render(fmt.Sprintf("%d", met.TotalVisits))),
		m.metricBox("Unique Patients", styles.AccentText.Bold(true).Render(fmt.Sprintf("%d", met.UniquePatients))),
		m.metricBox("Completed", styles.SuccessText.Render(fmt.Sprintf("%d", met.Completed))),
		m.metricBox("Cancelled", styles.DangerText.Render(fmt.Sprintf("%d", met.Cancelled))),
		m.metricBox("Completion Rate", rate),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, metrics...))
	b.WriteString("\n\n")

	charts := m.analytics.Charts
	b.WriteString(m.renderChart("Visits by Status", charts.Status, m.statusColor))
	b.WriteString(m.renderChart("Visits by Day of Week", charts.DayOfWeek, nil))
	b.WriteString(m.renderChart("Visits by Hour", charts.Hourly, nil))
	b.WriteString(m.renderChart("Insurance", yesNoBuckets(charts.Insurance, "Insured", "Self-Pay"), nil))
	b.WriteString(m.renderChart("Residential Program", yesNoBuckets(charts.Residential, "Residential", "Not Residential"), nil))
	b.WriteString(m.renderChart("Visits by Counselor", truncateLabels(charts.Counselor, counselorLabelMax), nil))

	return b.String()
}

func (m Model) metricBox(label, value string) string {
	styles := m.theme.Styles()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		MarginRight(1).
		Render(value + "\n" + styles.MutedText.Render(label))
}

// renderChart draws a bucket series as horizontal bars.
func (m Model) renderChart(title string, buckets clinic.Buckets, color func(label string) string) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n")
	if len(buckets) == 0 {
		b.WriteString(styles.FaintText.Render("  no data"))
		b.WriteString("\n\n")
		return b.String()
	}

	maxCount := buckets.Max()
	for _, bucket := range buckets {
		barColor := m.theme.Accent
		if color != nil {
			if c := color(bucket.Label); c != "" {
				barColor = c
			}
		}
		barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(barColor))
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(padRight(truncate(bucket.Label, chartLabelWidth), chartLabelWidth)))
		b.WriteString(" ")
		b.WriteString(barStyle.Render(bar(bucket.Count, maxCount, chartBarWidth)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d", bucket.Count)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusColor(label string) string {
	s, err := clinic.ParseStatus(label)
	if err != nil {
		return ""
	}
	return m.theme.StatusColors[s.Slug()]
}

// yesNoBuckets relabels a Yes/No series.
func yesNoBuckets(in clinic.Buckets, yes, no string) clinic.Buckets {
	return clinic.Buckets{
		{Label: yes, Count: in.Get("Yes")},
		{Label: no, Count: in.Get("No")},
	}
}

// truncateLabels shortens bucket labels for the chart axis.
func truncateLabels(in clinic.Buckets, limit int) clinic.Buckets {
	out := make(clinic.Buckets, len(in))
	for i, bucket := range in {
		out[i] = clinic.Bucket{Label: truncate(bucket.Label, limit), Count: bucket.Count}
	}
	return out
}
