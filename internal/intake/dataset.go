package intake

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

// DatasetVersion is the current dataset file version.
const DatasetVersion = 1

// Format is a dataset serialization format.
type Format string

// Supported dataset formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Dataset is a full snapshot of payrank's state.
type Dataset struct {
	ExportedAt time.Time       `yaml:"exportedAt" json:"exportedAt"`
	Cash       *CashRecord     `yaml:"cash,omitempty" json:"cash,omitempty"`
	Weights    WeightsRecord   `yaml:"weights" json:"weights"`
	Invoices   []InvoiceRecord `yaml:"invoices" json:"invoices"`
	Version    int             `yaml:"version" json:"version"`
}

// InvoiceRecord is the file representation of an invoice.
type InvoiceRecord struct {
	ID          string  `yaml:"id" json:"id"`
	Vendor      string  `yaml:"vendor" json:"vendor"`
	Category    string  `yaml:"category" json:"category"`
	InvoiceDate string  `yaml:"invoiceDate" json:"invoiceDate"`
	DueDate     string  `yaml:"dueDate" json:"dueDate"`
	Importance  string  `yaml:"importance" json:"importance"`
	Status      string  `yaml:"status" json:"status"`
	Override    string  `yaml:"override,omitempty" json:"override,omitempty"`
	Amount      float64 `yaml:"amount" json:"amount"`
}

// WeightsRecord is the file representation of ranking weights.
type WeightsRecord struct {
	Importance float64 `yaml:"importance" json:"importance"`
	Age        float64 `yaml:"age" json:"age"`
	Amount     float64 `yaml:"amount" json:"amount"`
}

// CashRecord is the file representation of a cash balance.
type CashRecord struct {
	RecordedAt time.Time `yaml:"recordedAt" json:"recordedAt"`
	Source     string    `yaml:"source" json:"source"`
	Reference  string    `yaml:"reference,omitempty" json:"reference,omitempty"`
	Amount     float64   `yaml:"amount" json:"amount"`
}

// NewDataset builds a dataset from stored state. cash may be nil.
func NewDataset(invoices []model.Invoice, weights model.Weights, cash *model.CashBalance, exportedAt time.Time) *Dataset {
	ds := &Dataset{
		Version:    DatasetVersion,
		ExportedAt: exportedAt.UTC(),
		Weights: WeightsRecord{
			Importance: weights.Importance,
			Age:        weights.Age,
			Amount:     weights.Amount,
		},
		Invoices: make([]InvoiceRecord, 0, len(invoices)),
	}

	for _, inv := range invoices {
		ds.Invoices = append(ds.Invoices, InvoiceRecord{
			ID:          inv.ID,
			Vendor:      inv.Vendor,
			Category:    string(inv.Category),
			InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
			DueDate:     inv.DueDate.Format("2006-01-02"),
			Importance:  string(inv.Importance),
			Status:      string(inv.Status),
			Override:    string(inv.Override),
			Amount:      inv.Amount,
		})
	}

	if cash != nil {
		ds.Cash = &CashRecord{
			RecordedAt: cash.RecordedAt.UTC(),
			Source:     string(cash.Source),
			Reference:  cash.Reference,
			Amount:     cash.Amount,
		}
	}
	return ds
}

// ModelWeights converts the stored weights.
func (ds *Dataset) ModelWeights() model.Weights {
	return model.Weights{
		Importance: ds.Weights.Importance,
		Age:        ds.Weights.Age,
		Amount:     ds.Weights.Amount,
	}
}

// ModelCash converts the stored cash balance, or returns nil if absent.
func (ds *Dataset) ModelCash() *model.CashBalance {
	if ds.Cash == nil {
		return nil
	}
	return &model.CashBalance{
		RecordedAt: ds.Cash.RecordedAt,
		Source:     model.CashSource(ds.Cash.Source),
		Reference:  ds.Cash.Reference,
		Amount:     ds.Cash.Amount,
	}
}

// ModelInvoices converts and validates every invoice record.
func (ds *Dataset) ModelInvoices() ([]model.Invoice, error) {
	invoices := make([]model.Invoice, 0, len(ds.Invoices))
	for i, rec := range ds.Invoices {
		inv, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("invoice %d (%s): %w", i, rec.ID, err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (rec InvoiceRecord) toModel() (model.Invoice, error) {
	invoiceDate, err := parseStrictDate(rec.InvoiceDate)
	if err != nil {
		return model.Invoice{}, err
	}
	dueDate, err := parseStrictDate(rec.DueDate)
	if err != nil {
		return model.Invoice{}, err
	}

	override := model.OverrideMode(rec.Override)
	if override == "" {
		override = model.OverrideAuto
	}

	inv := model.Invoice{
		ID:          rec.ID,
		Vendor:      rec.Vendor,
		Category:    model.Category(rec.Category),
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		Importance:  model.Importance(rec.Importance),
		Status:      model.InvoiceStatus(rec.Status),
		Override:    override,
		Amount:      rec.Amount,
	}
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, fmt.Errorf("%w: %w", common.ErrMalformedInput, err)
	}
	return inv, nil
}

func parseStrictDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// WriteDataset encodes a dataset in the given format.
func WriteDataset(w io.Writer, ds *Dataset, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownFormat, format)
	}
}

// ReadDataset decodes a dataset in the given format.
func ReadDataset(r io.Reader, format Format) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds Dataset
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &ds)
	case FormatJSON:
		err = json.Unmarshal(data, &ds)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedInput, err)
	}

	if ds.Version > DatasetVersion {
		return nil, fmt.Errorf("%w: dataset version %d is newer than supported version %d",
			common.ErrMalformedInput, ds.Version, DatasetVersion)
	}
	return &ds, nil
}
