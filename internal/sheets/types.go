package sheets

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/payrank/internal/service"
)

// Column headers of the waterline section.
var waterlineHeader = []any{
	"Rank", "ID", "Vendor", "Category", "Importance", "Invoice Date", "Due Date",
	"Age (days)", "Score", "Amount", "Cumulative", "Status", "Override",
}

const (
	amountColumn     = 9
	cumulativeColumn = 10

	// Rows of the summary block holding money: cash through net position.
	summaryFirstAmountRow = 3
	summaryLastAmountRow  = 7
)

// currencyPattern builds a Sheets number format for an ISO currency code.
func currencyPattern(code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return "#,##0.00"
	}
	return fmt.Sprintf(`"%s"#,##0.00`, cur.Grapheme)
}

// amount rounds to cents for the sheet.
func amount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// prepareReportData lays out the summary block followed by the waterline.
// It returns the rows and the index of the waterline header row.
func prepareReportData(report *service.RunReport) ([][]any, int) {
	s := report.Summary
	values := make([][]any, 0, 16+len(report.Rows))

	values = append(values,
		[]any{"Payment Run", report.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{}, // Empty row
		[]any{"Summary"},
		[]any{"Available Cash", amount(s.AvailableCash)},
		[]any{"Approved", amount(s.ApprovedTotal), s.ApprovedCount},
		[]any{"On Hold", amount(s.HeldTotal), s.HeldCount},
		[]any{"Critical Liabilities", amount(s.CriticalTotal)},
		[]any{"Net Position", amount(s.NetPosition)},
		[]any{"Utilization %", decimal.NewFromFloat(s.Utilization).Round(1).InexactFloat64()},
		[]any{"Manual Overrides", s.ManualCount},
		[]any{"Weights (importance/age/amount)", fmt.Sprintf("%g/%g/%g",
			report.Weights.Importance, report.Weights.Age, report.Weights.Amount)},
		[]any{}, // Empty row
		[]any{"Waterline"},
	)

	headerRow := len(values)
	values = append(values, waterlineHeader)

	for i, row := range report.Rows {
		inv := row.Invoice
		status := string(inv.Status)
		if row.OverBudget {
			status += " (over budget)"
		}
		values = append(values, []any{
			i + 1,
			inv.ID,
			inv.Vendor,
			string(inv.Category),
			string(inv.Importance),
			inv.InvoiceDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.AgeDays,
			decimal.NewFromFloat(inv.Score).Round(4).InexactFloat64(),
			amount(inv.Amount),
			amount(row.Cumulative),
			status,
			string(inv.Override),
		})
	}

	return values, headerRow
}
