package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay from the key map.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	titles := []string{"Pages", "Navigation", "Queue", "Actions", "Analytics / Logs", "General"}

	var b strings.Builder

	// Title
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		// Section title
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")

		for _, binding := range group {
			h := binding.Help()
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}

		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	return m.placeModal(b.String(), 44)
}
