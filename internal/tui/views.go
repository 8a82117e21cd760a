package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/ranking"
	"github.com/Veraticus/payrank/internal/tui/themes"
)

// chromeHeight is the number of lines around the invoice rows.
const chromeHeight = 11

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		if m.lastError != nil {
			return m.theme.StatusError.Render("Error: "+m.lastError.Error()) + "\n"
		}
		return m.theme.Subtitle.Render("Planning payment run...") + "\n"
	}

	sections := []string{
		m.renderTitle(),
		m.renderSummary(),
		m.renderWeights(),
		"",
		m.renderTable(),
		"",
		m.renderDetail(),
		m.renderStatus(),
	}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle() string {
	title := m.theme.Title.Render(cli.MoneyIcon + " Payment Run")
	when := m.theme.Subtitle.Render(m.run.GeneratedAt.Format("Mon Jan 2 15:04"))
	return title + "  " + when
}

func (m Model) renderSummary() string {
	s := m.run.Summary
	utilization := fmt.Sprintf("%.1f%%", s.Utilization)
	if s.IsDanger() {
		utilization = m.theme.StatusError.Render(utilization + " over budget")
	} else {
		utilization = m.theme.StatusSuccess.Render(utilization)
	}

	parts := []string{
		"Cash " + m.theme.Bold.Render(m.money.Format(s.AvailableCash)),
		"Approved " + m.theme.Approved.Render(fmt.Sprintf("%s (%d)", m.money.Format(s.ApprovedTotal), s.ApprovedCount)),
		"Held " + m.theme.Hold.Render(fmt.Sprintf("%s (%d)", m.money.Format(s.HeldTotal), s.HeldCount)),
		"Critical " + m.money.Format(s.CriticalTotal),
		"Used " + utilization,
	}
	return strings.Join(parts, "  │  ")
}

func (m Model) renderWeights() string {
	w := m.run.Snapshot.Weights
	values := [weightCount]float64{w.Importance, w.Age, w.Amount}

	parts := make([]string, weightCount)
	for i := range weightNames {
		label := fmt.Sprintf("%s %.0f", weightNames[i], values[i])
		if i == m.focus {
			parts[i] = m.theme.Selected.Render(" " + label + " ")
		} else {
			parts[i] = m.theme.Subtitle.Render(" " + label + " ")
		}
	}
	return "Weights " + strings.Join(parts, " ")
}

func (m Model) renderTable() string {
	rows := m.run.Rows
	if len(rows) == 0 {
		return m.theme.Subtitle.Render("No open invoices.")
	}

	header := []string{"#", "ID", "Vendor", "Importance", "Age", "Score", "Amount", "Cumulative", "Status"}
	lines := []string{m.theme.Bold.Render(cli.FormatTableRow(header))}

	cutoff := ranking.Cutoff(rows)
	end := min(m.offset+m.pageSize(), len(rows))
	for i := m.offset; i < end; i++ {
		if i == cutoff {
			lines = append(lines, m.cutoffLine())
		}
		line := cli.FormatTableRow(cli.WaterlineCells(i+1, rows[i], m.money))
		if i == m.cursor {
			line = m.theme.Selected.Render(cli.StripStyles(line))
		}
		lines = append(lines, line)
	}
	if cutoff == len(rows) && end == len(rows) {
		lines = append(lines, m.cutoffLine())
	}
	if end < len(rows) {
		lines = append(lines, m.theme.Subtitle.Render(fmt.Sprintf("… %d more", len(rows)-end)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) cutoffLine() string {
	label := fmt.Sprintf(" waterline · %s available ", m.money.Format(m.run.Summary.AvailableCash))
	side := max((m.width-lipgloss.Width(label))/2, 3)
	return m.theme.Cutoff.Render(strings.Repeat("─", side) + label + strings.Repeat("─", side))
}

// renderDetail describes the invoice under the cursor.
func (m Model) renderDetail() string {
	inv, ok := m.selected()
	if !ok {
		return ""
	}

	parts := []string{
		m.theme.Bold.Render(inv.Vendor),
		themes.CategoryIcon(string(inv.Category)) + " " + string(inv.Category),
		"due " + inv.DueDate.Format("Jan 2"),
		fmt.Sprintf("%d days old", inv.AgeDays),
	}
	if inv.IsManualOverride() {
		parts = append(parts, m.theme.Manual.Render(cli.PinIcon+" pinned "+string(inv.Status)))
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case m.busy:
		return m.theme.StatusInfo.Render("Saving...")
	case m.status != "":
		return m.theme.StatusSuccess.Render(m.status)
	default:
		return m.theme.Subtitle.Render(fmt.Sprintf("%d pinned", m.run.Summary.ManualCount))
	}
}
