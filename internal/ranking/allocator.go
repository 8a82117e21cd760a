// Package ranking scores vendor invoices and decides which ones the
// available cash can pay.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/payrank/internal/model"
)

// MaxAgeDays caps the age signal. Older invoices score no higher.
const MaxAgeDays = 90

// ImportanceWeight maps a tier onto [0,1]. Unknown tiers weigh nothing.
func ImportanceWeight(imp model.Importance) float64 {
	switch imp {
	case model.ImportanceCritical:
		return 1.0
	case model.ImportanceHigh:
		return 0.75
	case model.ImportanceMedium:
		return 0.5
	case model.ImportanceLow:
		return 0.25
	default:
		return 0
	}
}

// AgeDays returns the whole days between now and invoiceDate, rounded up.
// Future-dated invoices count the gap the same way.
func AgeDays(invoiceDate, now time.Time) int {
	diff := now.Sub(invoiceDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// Score computes the weighted priority of inv. maxAmount must be >= 1.
func Score(inv model.Invoice, ageDays int, weights model.Weights, maxAmount float64) float64 {
	normImportance := ImportanceWeight(inv.Importance)
	normAge := float64(min(ageDays, MaxAgeDays)) / MaxAgeDays
	normAmount := inv.Amount / maxAmount

	return normImportance*(weights.Importance/100) +
		normAge*(weights.Age/100) +
		normAmount*(weights.Amount/100)
}

// Allocate scores every invoice against the wall clock and splits them into
// Approved and Hold under availableCash. See AllocateAt.
func Allocate(invoices []model.Invoice, weights model.Weights, availableCash float64) []model.Invoice {
	return AllocateAt(time.Now(), invoices, weights, availableCash)
}

// AllocateAt scores every invoice as of now and splits them into Approved and
// Hold under availableCash.
//
// Manually approved invoices are paid first and unconditionally, even when
// that leaves the remaining cash negative. Manually held invoices stay held.
// Everything else is walked in score order and approved while it fits.
//
// The result holds every input invoice exactly once: all Approved invoices by
// descending score, then all Hold invoices by descending score. Equal scores
// fall back to invoice ID. The input slice is not modified.
func AllocateAt(now time.Time, invoices []model.Invoice, weights model.Weights, availableCash float64) []model.Invoice {
	if len(invoices) == 0 {
		return []model.Invoice{}
	}

	maxAmount := 1.0
	for _, inv := range invoices {
		if inv.Amount > maxAmount {
			maxAmount = inv.Amount
		}
	}

	var manualApproved, manualHold, free []ranked
	for i, inv := range invoices {
		inv.AgeDays = AgeDays(inv.InvoiceDate, now)
		inv.Score = Score(inv, inv.AgeDays, weights, maxAmount)
		r := ranked{Invoice: inv, position: i}

		switch inv.Override {
		case model.OverrideManualApproved:
			r.Status = model.StatusApproved
			manualApproved = append(manualApproved, r)
		case model.OverrideManualHold:
			r.Status = model.StatusHold
			manualHold = append(manualHold, r)
		default:
			free = append(free, r)
		}
	}

	remaining := newFigure(availableCash)
	for _, r := range manualApproved {
		remaining = remaining.sub(newFigure(r.Amount))
	}

	approved := manualApproved
	held := manualHold

	sortByScore(free)
	for _, r := range free {
		amount := newFigure(r.Amount)
		if remaining.covers(amount) {
			remaining = remaining.sub(amount)
			r.Status = model.StatusApproved
			approved = append(approved, r)
		} else {
			r.Status = model.StatusHold
			held = append(held, r)
		}
	}

	sortByScore(approved)
	sortByScore(held)

	result := make([]model.Invoice, 0, len(invoices))
	for _, r := range approved {
		result = append(result, r.Invoice)
	}
	for _, r := range held {
		result = append(result, r.Invoice)
	}
	return result
}

// ranked carries an invoice with its input position for the final tie-break.
type ranked struct {
	model.Invoice
	position int
}

// sortByScore orders by score descending, then ID, then input position.
func sortByScore(rs []ranked) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Score != rs[j].Score {
			return rs[i].Score > rs[j].Score
		}
		if rs[i].ID != rs[j].ID {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].position < rs[j].position
	})
}
