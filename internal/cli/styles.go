// Package cli provides styled terminal output for payrank: lipgloss styles,
// currency formatting, the static waterline, and import progress.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/payrank/internal/model"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#2ECC71") // ledger green
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	ManualColor  = lipgloss.Color("#C39BD3")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

	// BoxStyle frames the run summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// Invoice statuses. ManualStyle marks a pin; CutoffStyle draws the
	// waterline between approved and held rows.
	ApprovedStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	HoldStyle     = lipgloss.NewStyle().Foreground(WarningColor)
	PaidStyle     = lipgloss.NewStyle().Foreground(SubtleColor)
	ManualStyle   = lipgloss.NewStyle().Foreground(ManualColor).Bold(true)
	CutoffStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
)

// Icons.
const (
	SuccessIcon  = "✓"
	ErrorIcon    = "✗"
	WarningIcon  = "⚠️"
	InfoIcon     = "ℹ️"
	MoneyIcon    = "💵"
	PinIcon      = "📌"
	ChartIcon    = "📊"
	CalendarIcon = "📅"
)

func FormatSuccess(message string) string { return SuccessStyle.Render(SuccessIcon + " " + message) }
func FormatError(message string) string   { return ErrorStyle.Render(ErrorIcon + " " + message) }
func FormatWarning(message string) string { return WarningStyle.Render(WarningIcon + " " + message) }
func FormatInfo(message string) string    { return InfoStyle.Render(InfoIcon + " " + message) }

// FormatTitle prefixes title with the money icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(MoneyIcon + " " + title)
}

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.UnsetMargins().Render(title), content))
}

// StatusStyle returns the style for an invoice status.
func StatusStyle(status model.InvoiceStatus) lipgloss.Style {
	switch status {
	case model.StatusApproved:
		return ApprovedStyle
	case model.StatusHold:
		return HoldStyle
	default:
		return PaidStyle
	}
}

// FormatStatus renders a status, with a pin when the user set it.
func FormatStatus(inv model.Invoice) string {
	text := StatusStyle(inv.Status).Render(string(inv.Status))
	if inv.IsManualOverride() {
		text += " " + ManualStyle.Render(PinIcon)
	}
	return text
}
