// Package invoices provides a fluent builder for invoice test data.
//
// Example usage:
//
//	seed := invoices.NewBuilder(t).
//		WithFixture(invoices.FixtureLandlordMonth).
//		WithInvoice("VEND-000010", 300, model.ImportanceLow).
//		Build()
package invoices

import (
	"testing"
	"time"

	"github.com/Veraticus/payrank/internal/model"
)

// BaseDate is the invoice date builders use unless told otherwise.
var BaseDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// Builder constructs invoices for tests.
type Builder interface {
	// WithInvoice adds an Auto, Hold invoice with the given amount and importance.
	WithInvoice(id string, amount float64, importance model.Importance) Builder

	// WithPinned adds an invoice pinned to the given override mode.
	WithPinned(id string, amount float64, importance model.Importance, mode model.OverrideMode) Builder

	// WithAge moves the most recently added invoice's date back by days from BaseDate.
	WithAge(days int) Builder

	// WithFixture adds every invoice from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build returns a copy of the invoices built so far.
	Build() []model.Invoice
}

type builder struct {
	t        *testing.T
	invoices []model.Invoice
}

// NewBuilder creates an empty invoice builder.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &builder{t: t}
}

func (b *builder) WithInvoice(id string, amount float64, importance model.Importance) Builder {
	return b.WithPinned(id, amount, importance, model.OverrideAuto)
}

func (b *builder) WithPinned(id string, amount float64, importance model.Importance, mode model.OverrideMode) Builder {
	b.t.Helper()
	if !mode.IsValid() {
		b.t.Fatalf("invalid override mode %q for %s", mode, id)
	}

	status := model.StatusHold
	if pinned, ok := mode.Status(); ok {
		status = pinned
	}

	b.invoices = append(b.invoices, model.Invoice{
		ID:          id,
		Vendor:      "Vendor " + id,
		Category:    model.CategoryServices,
		Importance:  importance,
		Status:      status,
		Override:    mode,
		Amount:      amount,
		InvoiceDate: BaseDate,
		DueDate:     BaseDate.AddDate(0, 0, 30),
	})
	return b
}

func (b *builder) WithAge(days int) Builder {
	b.t.Helper()
	if len(b.invoices) == 0 {
		b.t.Fatal("WithAge called before any invoice was added")
	}
	last := &b.invoices[len(b.invoices)-1]
	last.InvoiceDate = BaseDate.AddDate(0, 0, -days)
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	b.invoices = append(b.invoices, fixture.Invoices()...)
	return b
}

func (b *builder) Build() []model.Invoice {
	out := make([]model.Invoice, len(b.invoices))
	copy(out, b.invoices)
	return out
}
