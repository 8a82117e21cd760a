// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ranking"
)

// InvoiceFilter narrows invoice queries.
type InvoiceFilter struct {
	Vendor      string
	Statuses    []model.InvoiceStatus
	ExcludePaid bool
	Limit       int
}

// InvoiceStore covers invoice, weight, and cash persistence.
type InvoiceStore interface {
	// Invoice operations
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	SaveInvoices(ctx context.Context, invoices []model.Invoice) error
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
	ApplyStatuses(ctx context.Context, allocated []model.Invoice) (int, error)

	// Settings
	GetWeights(ctx context.Context) (model.Weights, error)
	SaveWeights(ctx context.Context, weights model.Weights) error
	GetCashBalance(ctx context.Context) (*model.CashBalance, error)
	SaveCashBalance(ctx context.Context, balance model.CashBalance) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	InvoiceStore

	DeleteInvoice(ctx context.Context, id string) error
	ToggleInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ClearOverride(ctx context.Context, id string) (*model.Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*model.Invoice, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	InvoiceStore
}

// RunReport is an allocation run ready to be written somewhere.
type RunReport struct {
	GeneratedAt time.Time
	Weights     model.Weights
	Rows        []ranking.WaterlineRow
	Summary     ranking.Summary
}

// ReportWriter publishes an allocation run.
type ReportWriter interface {
	Write(ctx context.Context, report *RunReport) error
}

// CashSource reads the cash available for the next payment run.
type CashSource interface {
	CashBalance(ctx context.Context) (*model.CashBalance, error)
}
