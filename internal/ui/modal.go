package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/walkin/internal/workflow"
)

func (m *Model) initReasonInput() {
	in := textinput.New()
	in.Placeholder = workflow.DefaultCancelReason
	in.Prompt = "> "
	in.CharLimit = 200
	in.Width = 44
	m.reasonInput = in
}

// roster is the counselor list offered by the picker, placeholder first.
func (m Model) roster() []string {
	names := m.config.Counselors
	if len(names) == 0 || names[0] != workflow.CounselorPlaceholder {
		names = append([]string{workflow.CounselorPlaceholder}, names...)
	}
	return names
}

func (m *Model) closeModal() {
	m.modal = modalNone
	m.reasonInput.Blur()
}

// handleCounselorKey drives the assign dialog.
func (m Model) handleCounselorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.roster()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeModal()
	case key.Matches(msg, m.keys.Down):
		if m.counselorIdx < len(names)-1 {
			m.counselorIdx++
		}
	case key.Matches(msg, m.keys.Up):
		if m.counselorIdx > 0 {
			m.counselorIdx--
		}
	case key.Matches(msg, m.keys.Top):
		m.counselorIdx = 0
	case key.Matches(msg, m.keys.Bottom):
		m.counselorIdx = len(names) - 1
	case key.Matches(msg, m.keys.Confirm):
		counselor := names[m.counselorIdx]
		guard := workflow.CanApply(workflow.TransitionContext{
			Action: workflow.ActionAssign,
			Row:    m.modalVisit.Row,
			Status: m.modalVisit.Status,
			Input:  workflow.Input{Counselor: counselor},
		})
		if !guard.Allowed {
			// Keep the picker open so another name can be chosen.
			status := m.setStatus(statusError, guard.Reason)
			return m, status
		}
		return m.runAction(workflow.ActionAssign, m.modalVisit, workflow.Input{Counselor: counselor})
	}
	return m, nil
}

// handleCancelKey drives the cancellation reason prompt. Esc abandons the
// cancel; an empty reason is recorded as the default.
func (m Model) handleCancelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
		return m, nil
	case tea.KeyEnter:
		reason := m.reasonInput.Value()
		m.closeModal()
		return m.runAction(workflow.ActionCancel, m.modalVisit, workflow.Input{Reason: reason})
	}

	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}

// renderCounselorPicker renders the assign dialog.
func (m Model) renderCounselorPicker() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Assign Counselor"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(m.modalVisit.FullName()))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n")

	for i, name := range m.roster() {
		line := "  " + name
		switch {
		case i == m.counselorIdx:
			line = styles.Selected.Width(36).Render("▸ " + name)
		case name == workflow.CounselorPlaceholder:
			line = styles.FaintText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.modalFooter("enter assign · esc close"))

	return m.placeModal(b.String(), 44)
}

// renderCancelPrompt renders the cancellation reason dialog.
func (m Model) renderCancelPrompt() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Cancel Visit"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(m.modalVisit.FullName()))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("Enter reason for cancellation:"))
	b.WriteString("\n")
	b.WriteString(m.reasonInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.modalFooter("enter cancel visit · esc keep visit"))

	return m.placeModal(b.String(), 54)
}

// modalFooter shows the key hints, or the latest error while one is shown.
func (m Model) modalFooter(hint string) string {
	styles := m.theme.Styles()
	if m.statusText != "" && m.statusKind == statusError {
		return styles.DangerText.Render(m.statusText)
	}
	return styles.FaintText.Render(hint)
}

// placeModal centres a bordered dialog on screen.
func (m Model) placeModal(content string, width int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
