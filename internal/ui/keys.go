package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/walkin/internal/workflow"
)

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Logout     key.Binding

	// View switching
	ViewQueue     key.Binding
	ViewSearch    key.Binding
	ViewAnalytics key.Binding
	ViewLogs      key.Binding

	// Queue actions
	CycleFilter  key.Binding
	FilterNumber key.Binding
	Details      key.Binding
	Assign       key.Binding
	Start        key.Binding
	Complete     key.Binding
	Revert       key.Binding
	Cancel       key.Binding
	Undo         key.Binding

	// Analytics / logs
	CycleDays key.Binding
	Ping      key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "Q"),
			key.WithHelp("Q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next page"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous page"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / back to queue"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Log out"),
		),

		// View switching
		ViewQueue: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Queue"),
		),
		ViewSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search patients"),
		),
		ViewAnalytics: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Analytics"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Logs"),
		),

		// Queue actions
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle filter"),
		),
		FilterNumber: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "Pick filter"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Patient details"),
		),
		Assign: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Assign counselor"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start session"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Complete"),
		),
		Revert: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Back to assigned"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Cancel visit"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Undo cancel"),
		),

		// Analytics / logs
		CycleDays: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Cycle 7/30/90 days"),
		),
		Ping: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Test connection"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Tab, k.ViewQueue, k.ViewSearch, k.ViewAnalytics, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		// Queue
		{k.CycleFilter, k.FilterNumber, k.Details, k.Refresh},
		{k.Assign, k.Start, k.Complete, k.Revert, k.Cancel, k.Undo},
		// Analytics / logs
		{k.CycleDays, k.Ping},
		// General
		{k.CycleTheme, k.Logout, k.Help, k.Quit},
	}
}

// actionFor returns the workflow action bound to msg, if any.
func (k keyMap) actionFor(msg tea.KeyMsg) (workflow.Action, bool) {
	switch {
	case key.Matches(msg, k.Assign):
		return workflow.ActionAssign, true
	case key.Matches(msg, k.Start):
		return workflow.ActionStart, true
	case key.Matches(msg, k.Complete):
		return workflow.ActionComplete, true
	case key.Matches(msg, k.Revert):
		return workflow.ActionRevert, true
	case key.Matches(msg, k.Cancel):
		return workflow.ActionCancel, true
	case key.Matches(msg, k.Undo):
		return workflow.ActionUndo, true
	}
	return "", false
}

// actionKey is the key shown next to an action in the queue footer.
func (k keyMap) actionKey(a workflow.Action) string {
	var b key.Binding
	switch a {
	case workflow.ActionAssign:
		b = k.Assign
	case workflow.ActionStart:
		b = k.Start
	case workflow.ActionComplete:
		b = k.Complete
	case workflow.ActionRevert:
		b = k.Revert
	case workflow.ActionCancel:
		b = k.Cancel
	case workflow.ActionUndo:
		b = k.Undo
	default:
		return ""
	}
	return b.Help().Key
}
