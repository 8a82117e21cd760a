// Package themes holds the color themes for the interactive waterline.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme is the set of styles the waterline view renders with.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Approved      lipgloss.Style
	Hold          lipgloss.Style
	Manual        lipgloss.Style
	Cutoff        lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
}

// palette lists hex colors; a theme is derived from one.
type palette struct {
	primary, selectedText, foreground, subtle string
	success, warning, danger, info, manual    string
}

func (p palette) theme() Theme {
	fg := func(hex string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)) }

	return Theme{
		Title:    fg(p.foreground).Bold(true),
		Subtitle: fg(p.subtle),
		Bold:     fg(p.foreground).Bold(true),
		Selected: fg(p.selectedText).Background(lipgloss.Color(p.primary)).Bold(true),

		Approved: fg(p.success),
		Hold:     fg(p.warning),
		Manual:   fg(p.manual).Bold(true),
		Cutoff:   fg(p.danger).Bold(true),

		StatusInfo:    fg(p.info).Bold(true),
		StatusError:   fg(p.danger).Bold(true),
		StatusSuccess: fg(p.success).Bold(true),
	}
}

var (
	// Default suits dark terminals.
	Default = palette{
		primary:      "#7c3aed",
		selectedText: "#fafafa",
		foreground:   "#fafafa",
		subtle:       "#a3a3a3",
		success:      "#10b981",
		warning:      "#f59e0b",
		danger:       "#ef4444",
		info:         "#3b82f6",
		manual:       "#a78bfa",
	}.theme()

	CatppuccinMocha = palette{
		primary:      "#cba6f7",
		selectedText: "#1e1e2e",
		foreground:   "#cdd6f4",
		subtle:       "#a6adc8",
		success:      "#a6e3a1",
		warning:      "#f9e2af",
		danger:       "#f38ba8",
		info:         "#89dceb",
		manual:       "#f5c2e7",
	}.theme()

	// Ledger is a light theme for paper-white terminals.
	Ledger = palette{
		primary:      "#166534",
		selectedText: "#f8fafc",
		foreground:   "#1f2937",
		subtle:       "#6b7280",
		success:      "#15803d",
		warning:      "#b45309",
		danger:       "#b91c1c",
		info:         "#1d4ed8",
		manual:       "#7e22ce",
	}.theme()
)

var byName = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
	"ledger":           Ledger,
}

// GetTheme returns the named theme, or Default for an unknown name.
func GetTheme(name string) Theme {
	if t, ok := byName[name]; ok {
		return t
	}
	return Default
}

// Names lists the selectable theme names.
func Names() []string {
	return []string{"default", "catppuccin-mocha", "ledger"}
}

var categoryIcons = map[string]string{
	"Utilities": "💡",
	"Rent":      "🏠",
	"Security":  "🛡️",
	"Services":  "🧰",
	"Tax":       "📋",
}

// CategoryIcon returns the icon shown next to an invoice category.
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return "📦"
}
