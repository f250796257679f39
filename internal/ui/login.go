package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	loginUsername = iota
	loginPassword
)

func (m *Model) initLoginInputs() {
	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = ""
	user.CharLimit = 64
	user.Width = 32
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = ""
	pass.CharLimit = 128
	pass.Width = 32
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m.loginInputs = [2]textinput.Model{user, pass}
	m.loginFocus = loginUsername
	m.loginErr = ""
	m.loggingIn = false
}

func (m *Model) focusLogin(idx int) tea.Cmd {
	m.loginFocus = idx
	for i := range m.loginInputs {
		if i == idx {
			continue
		}
		m.loginInputs[i].Blur()
	}
	return m.loginInputs[idx].Focus()
}

// handleLoginKey drives the login form.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.focusLogin(1 - m.loginFocus)

	case tea.KeyEnter:
		if m.loginFocus == loginUsername {
			return m, m.focusLogin(loginPassword)
		}
		return m.submitLogin()

	case tea.KeyEsc:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.loginInputs[loginUsername].Value())
	password := m.loginInputs[loginPassword].Value()
	if username == "" || password == "" {
		m.loginErr = "Please enter username and password"
		return m, nil
	}
	if m.login == nil {
		m.loginErr = "Login failed"
		return m, nil
	}

	m.loginErr = ""
	m.loggingIn = true
	login := m.login
	ctx := m.ctx
	return m, func() tea.Msg {
		identity, err := login(ctx, username, password)
		return loginResultMsg{identity: identity, err: err}
	}
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		m.loginErr = msg.err.Error()
		if m.loginErr == "" {
			m.loginErr = "Login failed"
		}
		m.loginInputs[loginPassword].SetValue("")
		return m, m.focusLogin(loginPassword)
	}

	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	} else {
		m.snapshot.LoggedIn = true
		m.snapshot.Identity = msg.identity
	}
	m.initLoginInputs()
	m.refreshing = true
	status := m.setStatus(statusSuccess, "Welcome, "+msg.identity.DisplayName())
	return m, tea.Batch(status, m.refreshCmd())
}

// renderLogin draws the centred login card.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render(logoText))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Walk-in queue dashboard"))
	b.WriteString("\n\n")

	labels := [2]string{"Username", "Password"}
	for i, input := range m.loginInputs {
		label := styles.MutedText
		if i == m.loginFocus {
			label = styles.AccentText.Bold(true)
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loggingIn:
		b.WriteString(styles.WarningText.Render("Signing in..."))
	case m.loginErr != "":
		b.WriteString(styles.DangerText.Render(m.loginErr))
	default:
		b.WriteString(styles.FaintText.Render("enter to sign in · tab to switch · esc to quit"))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 3).
		Width(44).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		card,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
