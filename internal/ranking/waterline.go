package ranking

import (
	"github.com/Veraticus/payrank/internal/model"
)

// WaterlineRow is one allocated invoice with the cash committed so far.
type WaterlineRow struct {
	Invoice model.Invoice
	// Cumulative is the approved total up to and including this row.
	// Held rows carry the total of the approved rows above them.
	Cumulative float64
	// OverBudget marks approved rows whose cumulative total exceeds the cash.
	// Only manual approvals can push a run over budget.
	OverBudget bool
}

// Funded reports whether the row sits above the waterline.
func (r WaterlineRow) Funded() bool {
	return r.Invoice.Status == model.StatusApproved
}

// Waterline walks allocated invoices in order and tracks the running
// approved total against availableCash.
func Waterline(allocated []model.Invoice, availableCash float64) []WaterlineRow {
	rows := make([]WaterlineRow, 0, len(allocated))
	cash := newFigure(availableCash)
	running := newFigure(0)

	for _, inv := range allocated {
		row := WaterlineRow{Invoice: inv}
		if inv.Status == model.StatusApproved {
			running = running.add(newFigure(inv.Amount))
			row.OverBudget = running.exceeds(cash)
		}
		row.Cumulative = running.value()
		rows = append(rows, row)
	}
	return rows
}

// Cutoff returns the index of the first row below the waterline, or
// len(rows) when every row is funded.
func Cutoff(rows []WaterlineRow) int {
	for i, row := range rows {
		if !row.Funded() {
			return i
		}
	}
	return len(rows)
}

// Summary aggregates an allocation run for the dashboard.
type Summary struct {
	AvailableCash float64
	ApprovedTotal float64
	HeldTotal     float64
	// CriticalTotal sums Critical invoices whatever their status.
	CriticalTotal float64
	// Utilization is the approved total as a percentage of the cash,
	// or 0 when there is no positive cash.
	Utilization   float64
	NetPosition   float64
	ApprovedCount int
	HeldCount     int
	ManualCount   int
}

// IsDanger reports whether approvals exceed the available cash.
func (s Summary) IsDanger() bool {
	return s.Utilization > 100
}

// Summarize totals an allocation run.
func Summarize(allocated []model.Invoice, availableCash float64) Summary {
	approved := newFigure(0)
	held := newFigure(0)
	critical := newFigure(0)
	summary := Summary{AvailableCash: availableCash}

	for _, inv := range allocated {
		amount := newFigure(inv.Amount)
		switch inv.Status {
		case model.StatusApproved:
			approved = approved.add(amount)
			summary.ApprovedCount++
		case model.StatusHold:
			held = held.add(amount)
			summary.HeldCount++
		}
		if inv.Importance == model.ImportanceCritical {
			critical = critical.add(amount)
		}
		if inv.IsManualOverride() {
			summary.ManualCount++
		}
	}

	cash := newFigure(availableCash)
	summary.ApprovedTotal = approved.value()
	summary.HeldTotal = held.value()
	summary.CriticalTotal = critical.value()
	summary.NetPosition = cash.sub(approved).value()
	if cash.positive() {
		summary.Utilization = approved.percentOf(cash)
	}
	return summary
}
