// Package intake reads and writes invoices in bulk: CSV for spreadsheets and
// YAML or JSON datasets for backups.
package intake

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

// CSVHeader is the column layout for invoice CSV files.
var CSVHeader = []string{"vendor", "category", "amount", "invoiceDate", "dueDate", "importance"}

// Column defaults for blank cells.
const (
	DefaultVendor     = "Unknown"
	DefaultCategory   = model.CategoryServices
	DefaultImportance = model.ImportanceMedium
)

// Row errors.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// RowError describes a CSV row that could not become an invoice.
type RowError struct {
	Err  error
	Line int
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a CSV import.
type Result struct {
	Invoices []model.Invoice
	Errors   []RowError
	Skipped  int
}

// Importer turns CSV rows into new invoices.
type Importer struct {
	now   func() time.Time
	onRow func(done, total int)
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithClock sets the clock used for blank dates.
func WithClock(now func() time.Time) ImporterOption {
	return func(im *Importer) {
		im.now = now
	}
}

// WithProgress registers a callback invoked after each data row.
func WithProgress(fn func(done, total int)) ImporterOption {
	return func(im *Importer) {
		im.onRow = fn
	}
}

// NewImporter creates a CSV importer.
func NewImporter(opts ...ImporterOption) *Importer {
	im := &Importer{now: time.Now}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ParseCSV imports invoices with default settings.
func ParseCSV(r io.Reader) (*Result, error) {
	return NewImporter().Import(r)
}

// Import reads every row after the header. Rows with fewer than two columns
// are skipped; rows with bad values are reported in Result.Errors and the
// rest are still returned.
func (im *Importer) Import(r io.Reader) (*Result, error) {
	// A leading BOM is dropped; a UTF-16 one also switches decoding, which is
	// how spreadsheet "Unicode text" exports arrive.
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedInput, err)
	}
	if len(records) <= 1 {
		return nil, common.ErrNoInvoices
	}

	today := im.now()
	rows := records[1:]
	result := &Result{}

	for i, record := range rows {
		line := i + 2
		if len(record) < 2 {
			result.Skipped++
		} else if inv, rowErr := parseRecord(record, today); rowErr != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Err: rowErr})
		} else {
			result.Invoices = append(result.Invoices, inv)
		}

		if im.onRow != nil {
			im.onRow(i+1, len(rows))
		}
	}

	return result, nil
}

func parseRecord(record []string, today time.Time) (model.Invoice, error) {
	vendor := field(record, 0)
	if vendor == "" {
		vendor = DefaultVendor
	}

	category := DefaultCategory
	if raw := field(record, 1); raw != "" {
		parsed, err := model.ParseCategory(raw)
		if err != nil {
			return model.Invoice{}, err
		}
		category = parsed
	}

	amount, err := parseAmount(field(record, 2))
	if err != nil {
		return model.Invoice{}, err
	}

	invoiceDate, err := parseDate(field(record, 3), today)
	if err != nil {
		return model.Invoice{}, err
	}
	dueDate, err := parseDate(field(record, 4), today)
	if err != nil {
		return model.Invoice{}, err
	}

	importance := DefaultImportance
	if raw := field(record, 5); raw != "" {
		parsed, err := model.ParseImportance(raw)
		if err != nil {
			return model.Invoice{}, err
		}
		importance = parsed
	}

	return model.NewInvoice(vendor, category, amount, invoiceDate, dueDate, importance), nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseAmount reads a non-negative amount. Currency symbols and thousands
// separators are tolerated.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, raw)
	}
	return d.Round(2).InexactFloat64(), nil
}

func parseDate(raw string, today time.Time) (time.Time, error) {
	if raw == "" {
		y, m, d := today.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// ExportColumns are the columns written by WriteCSV.
var ExportColumns = []string{
	"id", "vendor", "category", "amount", "invoiceDate", "dueDate",
	"importance", "status", "override", "score", "ageDays",
}

// WriteCSV writes invoices, typically an allocation result, in the order given.
func WriteCSV(w io.Writer, invoices []model.Invoice) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, inv := range invoices {
		record := []string{
			inv.ID,
			inv.Vendor,
			string(inv.Category),
			decimal.NewFromFloat(inv.Amount).StringFixed(2),
			inv.InvoiceDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			string(inv.Importance),
			string(inv.Status),
			string(inv.Override),
			strconv.FormatFloat(inv.Score, 'f', 4, 64),
			strconv.Itoa(inv.AgeDays),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write invoice %s: %w", inv.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
