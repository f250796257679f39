package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

// openDetail shows the history overlay and starts loading it.
func (m Model) openDetail(patientID string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(patientID) == "" || m.client == nil {
		status := m.setStatus(statusError, "Patient not found")
		return m, status
	}
	m.showDetail = true
	m.detailID = patientID
	m.detailLoading = true
	m.detailHistory = nil
	m.detailErr = nil
	m.updateDetailViewport()
	m.detailViewport.GotoTop()

	client := m.client
	ctx := m.ctx
	return m, func() tea.Msg {
		history, err := client.PatientHistory(ctx, patientID)
		return historyMsg{patientID: patientID, history: history, err: err}
	}
}

func (m *Model) handleHistory(msg historyMsg) {
	// Drop answers for an overlay that was closed or replaced.
	if !m.showDetail || msg.patientID != m.detailID {
		return
	}
	m.detailLoading = false
	if msg.err != nil {
		m.detailErr = msg.err
		m.logger.Debug().Err(msg.err).Str("patient_id", msg.patientID).Msg("history load failed")
	} else {
		history := msg.history
		m.detailHistory = &history
	}
	m.updateDetailViewport()
}

// handleDetailKey processes keys while the history overlay is open.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ViewQueue):
		m.showDetail = false
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *Model) updateDetailViewport() {
	if !m.ready && m.detailViewport.Width == 0 {
		return
	}
	m.detailViewport.SetContent(m.detailContent())
}

func (m Model) renderDetail() string {
	return m.detailViewport.View()
}

// detailContent renders the patient history.
func (m Model) detailContent() string {
	styles := m.theme.Styles()

	switch {
	case m.detailLoading:
		return styles.MutedText.Render("Loading patient details...")
	case m.detailErr != nil:
		if clinic.IsKind(m.detailErr, clinic.KindApplication) {
			return styles.MutedText.Render("Patient not found")
		}
		return styles.DangerText.Render("Failed to load patient: " + m.detailErr.Error())
	case m.detailHistory == nil:
		return styles.MutedText.Render("Patient not found")
	}

	h := m.detailHistory
	p := h.Patient

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.FullName()))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render("ID " + orNA(p.PatientID)))
	b.WriteString("\n\n")

	// Patient information
	b.WriteString(styles.AccentText.Bold(true).Render("Patient Information"))
	b.WriteString("\n")
	info := [][2]string{
		{"Date of Birth", orNA(p.DateOfBirth)},
		{"Phone Number", orNA(p.Phone)},
		{"Insurance", queue.InsuranceLabel(p)},
		{"Residential", queue.ResidentialLabel(p)},
	}
	for _, row := range info {
		b.WriteString(styles.MutedText.Render(padRight(row[0], 16)))
		b.WriteString(styles.Text.Render(row[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Visit statistics
	b.WriteString(styles.AccentText.Bold(true).Render("Visit Statistics"))
	b.WriteString("\n")
	stats := h.Stats
	rate := styles.RatingStyle(queue.SuccessRating(stats.SuccessRate)).Render(formatPercent(stats.SuccessRate))
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		styles.MutedText.Render("Total Visits"), styles.InfoText.Bold(true).Render(fmt.Sprintf("%d", stats.TotalVisits)),
		styles.MutedText.Render("Completed"), styles.SuccessText.Render(fmt.Sprintf("%d", stats.Completed)),
		styles.MutedText.Render("Cancelled"), styles.DangerText.Render(fmt.Sprintf("%d", stats.Cancelled)),
		styles.MutedText.Render("Success Rate"), rate,
	))
	b.WriteString("\n")

	// Visit history, newest first as delivered; numbered oldest = #1.
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Visit History (%d visits)", len(h.Visits))))
	b.WriteString("\n")
	for i, v := range h.Visits {
		n := len(h.Visits) - i
		b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("Visit #%d", n)))
		b.WriteString(styles.MutedText.Render(" - " + v.CheckinRaw + " "))
		b.WriteString(styles.StatusStyle(v.Status).Render(v.Status.String()))
		b.WriteString("\n")
		if v.AssignedCounselor != "" {
			b.WriteString("  ")
			b.WriteString(styles.Text.Render(v.AssignedCounselor))
			b.WriteString("\n")
		}
		if v.Notes != "" {
			b.WriteString("  ")
			b.WriteString(styles.FaintText.Render("Notes: "))
			b.WriteString(styles.WarningText.Render(v.Notes))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// formatPercent renders a rate without trailing zeros, e.g. 66.7% or 50%.
func formatPercent(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}
