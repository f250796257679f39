package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
	"github.com/five82/walkin/internal/state"
)

func (m *Model) initSearchInput() {
	in := textinput.New()
	in.Placeholder = "name, phone or patient ID"
	in.Prompt = "Search: "
	in.CharLimit = 80
	in.Width = 40
	m.searchInput = in
}

// handleSearchInputKey handles keys while the search box has focus.
func (m Model) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.submitSearch(m.searchInput.Value())
	case key.Matches(msg, m.keys.Escape):
		m.searchInput.Blur()
		if m.searchResult == nil {
			return m.switchPage(state.PageQueue)
		}
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.searchInput.Blur()
		return m.switchPage(nextPage(m.snapshot.Page))
	case key.Matches(msg, m.keys.ShiftTab):
		m.searchInput.Blur()
		return m.switchPage(prevPage(m.snapshot.Page))
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// submitSearch validates the term locally before asking the backend.
func (m Model) submitSearch(raw string) (tea.Model, tea.Cmd) {
	term := strings.TrimSpace(raw)
	if len([]rune(term)) < MinSearchLength {
		status := m.setStatus(statusError, fmt.Sprintf("Please enter at least %d characters", MinSearchLength))
		return m, status
	}
	if m.client == nil {
		return m, nil
	}

	m.searchTerm = term
	m.searching = true
	m.searchErr = nil
	m.searchSelected = 0
	m.searchInput.Blur()

	client := m.client
	ctx := m.ctx
	return m, func() tea.Msg {
		result, err := client.SearchPatients(ctx, term)
		return searchMsg{term: term, result: result, err: err}
	}
}

func (m *Model) handleSearchResult(msg searchMsg) {
	// A newer search superseded this one.
	if msg.term != m.searchTerm {
		return
	}
	m.searching = false
	if msg.err != nil {
		m.searchErr = msg.err
		m.searchResult = nil
		m.logger.Debug().Err(msg.err).Str("term", msg.term).Msg("search failed")
		return
	}
	result := msg.result
	m.searchResult = &result
	m.searchSelected = 0
}

// handleSearchKey handles the results list once the box is blurred.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Refresh) && m.searchTerm != "" {
		return m.submitSearch(m.searchTerm)
	}
	if m.searchResult == nil {
		return m, nil
	}
	patients := m.searchResult.Patients
	n := len(patients)
	if n == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.searchSelected < n-1 {
			m.searchSelected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.searchSelected > 0 {
			m.searchSelected--
		}
	case key.Matches(msg, m.keys.Top):
		m.searchSelected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.searchSelected = n - 1
	case key.Matches(msg, m.keys.Details):
		return m.openDetail(patients[m.searchSelected].PatientID)
	}
	return m, nil
}

// renderSearch renders the search page.
func (m Model) renderSearch() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(styles.MutedText.Render("Searching..."))
		return b.String()
	case m.searchErr != nil:
		b.WriteString(styles.DangerText.Render("Search failed. Please try again."))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(m.searchErr.Error()))
		return b.String()
	case m.searchResult == nil:
		b.WriteString(styles.MutedText.Render("Type a name, phone number or patient ID and press enter."))
		return b.String()
	case len(m.searchResult.Patients) == 0:
		b.WriteString(styles.MutedText.Render("No patients found matching your search"))
		return b.String()
	}

	b.WriteString(styles.MutedText.Render(fmt.Sprintf("Found %d patient(s)", m.searchResult.Count)))
	b.WriteString("\n")

	height := m.contentHeight() - 4
	if height < 1 {
		height = 1
	}
	patients := m.searchResult.Patients
	start := 0
	if m.searchSelected >= height {
		start = m.searchSelected - height + 1
	}
	end := min(len(patients), start+height)
	for i := start; i < end; i++ {
		b.WriteString(m.renderSearchRow(patients[i], i == m.searchSelected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSearchRow(p clinic.PatientVisit, selected bool) string {
	styles := m.theme.Styles()

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	line := cursor +
		padRight(truncate(p.FullName(), colName), colName) + " " +
		padRight("ID "+orNA(p.PatientID), 14) + " " +
		padRight("DOB "+orNA(p.DateOfBirth), 16) + " " +
		padRight(orDefault(p.Phone, ""), 14)
	if flags := m.renderFlags(queue.Flags(p)); flags != "" && m.width >= LayoutFlagsWidth {
		line += " " + flags
	}
	if selected && !m.searchInput.Focused() {
		return styles.Selected.Width(m.width).Render(line)
	}
	return line
}
