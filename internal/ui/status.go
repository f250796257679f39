package ui

// renderStatusLine renders the transient message line below the content,
// padded to the full width so a shorter message clears the previous one.
func (m Model) renderStatusLine() string {
	return NewBgStyle(m.theme.Background).FillLine(m.statusLineText(), m.width)
}

func (m Model) statusLineText() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	if m.statusText == "" {
		if m.busy {
			return styles.WarningText.Render("Working...")
		}
		return styles.FaintText.Render("? help · tab pages · Q quit")
	}
	switch m.statusKind {
	case statusError:
		return styles.DangerText.Render("✗ " + m.statusText)
	case statusSuccess:
		return styles.SuccessText.Render("✓ " + m.statusText)
	default:
		return styles.InfoText.Render(m.statusText)
	}
}
