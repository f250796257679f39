package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Main content panels
	SurfaceAlt string // Secondary surfaces
	FocusBg    string // Focus/active states

	// Selection colors
	SelectionBg   string // Selected row background
	SelectionText string // Selected row text

	// Border colors
	Border      string // Default border
	BorderMuted string // Muted border
	BorderFocus string // Focus border

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Status colors, keyed by clinic.Status.Slug()
	StatusColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		// Base styles
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		SurfaceAlt: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)),

		// Text styles
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		// Component styles
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
		waitColors: map[queue.WaitClass]string{
			queue.WaitOK:       t.Success,
			queue.WaitWarning:  t.Warning,
			queue.WaitCritical: t.Danger,
			queue.WaitDone:     t.Muted,
		},
		ratingColors: map[queue.Rating]string{
			queue.RatingGood: t.Success,
			queue.RatingFair: t.Warning,
			queue.RatingPoor: t.Danger,
		},
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Base
	Background lipgloss.Style
	Surface    lipgloss.Style
	SurfaceAlt lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Components
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
	waitColors   map[queue.WaitClass]string
	ratingColors map[queue.Rating]string
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	out := s
	out.Background = s.Background.Background(bg)
	out.Surface = s.Surface.Background(bg)
	out.SurfaceAlt = s.SurfaceAlt.Background(bg)
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.InfoText = s.InfoText.Background(bg)
	out.Header = s.Header.Background(bg)
	out.Footer = s.Footer.Background(bg)
	out.Logo = s.Logo.Background(bg)
	out.Selected = s.Selected.Background(bg)
	return out
}

// StatusStyle returns a badge style for the given status.
func (s Styles) StatusStyle(status clinic.Status) lipgloss.Style {
	color := s.statusColors[status.Slug()]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WaitStyle colors a wait time by its class.
func (s Styles) WaitStyle(class queue.WaitClass) lipgloss.Style {
	color := s.waitColors[class]
	if color == "" {
		color = s.muted
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	if class == queue.WaitCritical {
		style = style.Bold(true)
	}
	return style
}

// RatingStyle colors a percentage by its rating.
func (s Styles) RatingStyle(r queue.Rating) lipgloss.Style {
	color := s.ratingColors[r]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// Theme definitions

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21", // BGDarker
		Surface:    "#282A36", // Background
		SurfaceAlt: "#21222C", // BGDark
		FocusBg:    "#343746", // BGLight

		SelectionBg:   "#44475A", // Selection
		SelectionText: "#F8F8F2", // Foreground

		Border:      "#44475A",
		BorderMuted: "#21222C",
		BorderFocus: "#BD93F9", // Purple

		Text:    "#F8F8F2",
		Muted:   "#6272A4", // Comment
		Faint:   "#44475A",
		Accent:  "#BD93F9",
		Success: "#50FA7B", // Green
		Warning: "#FFB86C", // Orange
		Danger:  "#FF5555", // Red
		Info:    "#8BE9FD", // Cyan

		StatusColors: map[string]string{
			"waiting":    "#FFB86C", // Orange (needs attention)
			"assigned":   "#BD93F9", // Purple
			"in-session": "#8BE9FD", // Cyan (active)
			"completed":  "#50FA7B", // Green
			"cancelled":  "#FF5555", // Red
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800
		FocusBg:    "#283548",

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderMuted: "#1e293b",
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8",
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StatusColors: map[string]string{
			"waiting":    "#f59e0b", // amber-500
			"assigned":   "#8b5cf6", // violet-500
			"in-session": "#06b6d4", // cyan-500
			"completed":  "#16a34a", // green-600
			"cancelled":  "#dc2626", // red-600
		},
	}
}
