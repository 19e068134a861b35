// Package ui provides the visual styling for the Textora TUI, with dark and
// light themes switchable at runtime.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Textora brand palette.
var (
	// Dark Mode Colors (Default)
	DarkBackground = lipgloss.Color("#0f1222")
	DarkForeground = lipgloss.Color("#ededf2")
	DarkPrimary    = lipgloss.Color("#a78bfa") // Violet
	DarkAccent     = lipgloss.Color("#22d3ee") // Cyan
	DarkSecondary  = lipgloss.Color("#1b1f36")
	DarkMuted      = lipgloss.Color("#5b6078")
	DarkBorder     = lipgloss.Color("#2c3152")
	DarkCard       = lipgloss.Color("#171a30")

	// Light Mode Colors
	LightBackground = lipgloss.Color("#f7f7fb")
	LightForeground = lipgloss.Color("#1d1f33")
	LightPrimary    = lipgloss.Color("#6d28d9")
	LightAccent     = lipgloss.Color("#0e7490")
	LightSecondary  = lipgloss.Color("#e7e8f2")
	LightMuted      = lipgloss.Color("#8a8fa8")
	LightBorder     = lipgloss.Color("#d9dbe8")
	LightCard       = lipgloss.Color("#ffffff")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444")
	Success     = lipgloss.Color("#34d399")
	Warning     = lipgloss.Color("#fbbf24")
	Info        = lipgloss.Color("#60a5fa")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// DarkTheme returns the dark mode theme (the default).
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// ThemeByName maps a config theme name to a Theme; anything but "light" is
// dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Transcript
	UserLabel  lipgloss.Style
	AILabel    lipgloss.Style
	UserBubble lipgloss.Style
	ErrorText  lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Components
	Badge       lipgloss.Style
	Chip        lipgloss.Style
	Divider     lipgloss.Style
	Panel       lipgloss.Style
	PanelHeader lipgloss.Style
	QuickAction lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginTop(1),

		AILabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			MarginTop(1),

		UserBubble: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		ErrorText: lipgloss.NewStyle().
			Foreground(Destructive),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Chip: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Foreground).
			Padding(0, 1),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		PanelHeader: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		QuickAction: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2).
			MarginRight(2),
	}
}

// DefaultStyles returns styles with the default (dark) theme.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
