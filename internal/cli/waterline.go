package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ranking"
)

type column struct {
	title string
	width int
	right bool
}

var waterlineColumns = []column{
	{title: "#", width: 4, right: true},
	{title: "ID", width: 12},
	{title: "Vendor", width: 24},
	{title: "Importance", width: 10},
	{title: "Age", width: 5, right: true},
	{title: "Score", width: 7, right: true},
	{title: "Amount", width: 14, right: true},
	{title: "Cumulative", width: 14, right: true},
	{title: "Status", width: 14},
}

// pad fits s into width visible cells. ANSI sequences do not count.
func pad(s string, width int, right bool) string {
	visible := lipgloss.Width(s)
	if visible > width {
		runes := []rune(s)
		if len(runes) > width && width > 1 {
			return string(runes[:width-1]) + "…"
		}
		return s
	}
	fill := strings.Repeat(" ", width-visible)
	if right {
		return fill + s
	}
	return s + fill
}

// FormatTableRow pads cells to the waterline column widths.
func FormatTableRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		col := waterlineColumns[i]
		parts[i] = pad(cell, col.width, col.right)
	}
	return strings.Join(parts, "  ")
}

// StripStyles removes terminal styling so a row can be restyled whole.
func StripStyles(s string) string {
	return ansi.Strip(s)
}

func tableWidth() int {
	total := 2 * (len(waterlineColumns) - 1)
	for _, col := range waterlineColumns {
		total += col.width
	}
	return total
}

// WaterlineCells formats one waterline row for display.
func WaterlineCells(rank int, row ranking.WaterlineRow, f Formatter) []string {
	inv := row.Invoice
	cumulative := f.Format(row.Cumulative)
	if !row.Funded() {
		cumulative = SubtleStyle.Render("-")
	} else if row.OverBudget {
		cumulative = ErrorStyle.Render(cumulative)
	}
	return []string{
		fmt.Sprintf("%d", rank),
		inv.ID,
		inv.Vendor,
		string(inv.Importance),
		fmt.Sprintf("%d", inv.AgeDays),
		fmt.Sprintf("%.3f", inv.Score),
		f.Format(inv.Amount),
		cumulative,
		FormatStatus(inv),
	}
}

// CutoffLine renders the waterline marker for a table of the given width.
func CutoffLine(cash float64, f Formatter, width int) string {
	label := fmt.Sprintf(" waterline · %s available ", f.Format(cash))
	side := (width - lipgloss.Width(label)) / 2
	if side < 3 {
		side = 3
	}
	return CutoffStyle.Render(strings.Repeat("─", side) + label + strings.Repeat("─", side))
}

// RenderWaterline writes the allocated invoices as a table with the
// waterline drawn between the last approved and the first held invoice.
func RenderWaterline(w io.Writer, rows []ranking.WaterlineRow, cash float64, f Formatter) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No open invoices."))
		return err
	}

	headers := make([]string, len(waterlineColumns))
	for i, col := range waterlineColumns {
		headers[i] = col.title
	}

	var b strings.Builder
	b.WriteString(BoldStyle.Render(FormatTableRow(headers)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(strings.Repeat("─", tableWidth())))
	b.WriteString("\n")

	cutoff := ranking.Cutoff(rows)
	for i, row := range rows {
		if i == cutoff {
			b.WriteString(CutoffLine(cash, f, tableWidth()))
			b.WriteString("\n")
		}
		b.WriteString(FormatTableRow(WaterlineCells(i+1, row, f)))
		b.WriteString("\n")
	}
	if cutoff == len(rows) {
		b.WriteString(CutoffLine(cash, f, tableWidth()))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary writes the dashboard figures for a run.
func RenderSummary(w io.Writer, s ranking.Summary, f Formatter) error {
	utilization := fmt.Sprintf("%.1f%%", s.Utilization)
	if s.IsDanger() {
		utilization = ErrorStyle.Render(utilization + " over budget")
	} else {
		utilization = SuccessStyle.Render(utilization)
	}

	net := f.Format(s.NetPosition)
	if s.NetPosition < 0 {
		net = ErrorStyle.Render(net)
	}

	lines := []string{
		fmt.Sprintf("Available cash:       %s", f.Format(s.AvailableCash)),
		fmt.Sprintf("Approved (%d):        %s", s.ApprovedCount, f.Format(s.ApprovedTotal)),
		fmt.Sprintf("Held (%d):            %s", s.HeldCount, f.Format(s.HeldTotal)),
		fmt.Sprintf("Critical liabilities: %s", f.Format(s.CriticalTotal)),
		fmt.Sprintf("Utilization:          %s", utilization),
		fmt.Sprintf("Net position:         %s", net),
	}
	if s.ManualCount > 0 {
		lines = append(lines, fmt.Sprintf("Manual overrides:     %s", ManualStyle.Render(fmt.Sprintf("%d", s.ManualCount))))
	}

	_, err := fmt.Fprintln(w, RenderBox(ChartIcon+" Payment run", strings.Join(lines, "\n")))
	return err
}

// RenderInvoices writes stored invoices as a plain table.
func RenderInvoices(w io.Writer, invoices []model.Invoice, f Formatter) error {
	if len(invoices) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No invoices found. Use 'payrank invoices add' or 'payrank invoices import' to add some."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVendor\tCategory\tImportance\tInvoice Date\tDue Date\tAmount\tStatus\tOverride")
	fmt.Fprintln(tw, "--\t------\t--------\t----------\t------------\t--------\t------\t------\t--------")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID,
			inv.Vendor,
			inv.Category,
			inv.Importance,
			inv.InvoiceDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			f.Format(inv.Amount),
			inv.Status,
			inv.Override)
	}
	return tw.Flush()
}
