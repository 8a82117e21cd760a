// Package engine runs payment allocations against stored invoices.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ranking"
	"github.com/Veraticus/payrank/internal/service"
)

// Engine snapshots the store, allocates, and optionally writes the
// resulting statuses back.
type Engine struct {
	store service.Storage
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to age invoices.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine over the given store.
func New(store service.Storage, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot is the allocator input as read from the store.
type Snapshot struct {
	Cash     *model.CashBalance
	Invoices []model.Invoice
	Weights  model.Weights
}

// AvailableCash returns the recorded cash, or zero when none was recorded.
func (s Snapshot) AvailableCash() float64 {
	if s.Cash == nil {
		return 0
	}
	return s.Cash.Amount
}

// Run is one allocation over a snapshot.
type Run struct {
	GeneratedAt time.Time
	Snapshot    Snapshot
	Allocated   []model.Invoice
	Rows        []ranking.WaterlineRow
	Summary     ranking.Summary
}

// Report converts the run for report writers.
func (r *Run) Report() *service.RunReport {
	return &service.RunReport{
		GeneratedAt: r.GeneratedAt,
		Weights:     r.Snapshot.Weights,
		Rows:        r.Rows,
		Summary:     r.Summary,
	}
}

// Cutoff returns the index of the first held row.
func (r *Run) Cutoff() int {
	return ranking.Cutoff(r.Rows)
}

// Snapshot reads every unpaid invoice, the weights, and the latest cash
// balance. A missing balance is not an error; the run sees zero cash.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	invoices, err := e.store.ListInvoices(ctx, service.InvoiceFilter{ExcludePaid: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load invoices: %w", err)
	}

	weights, err := e.store.GetWeights(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load weights: %w", err)
	}

	cash, err := e.store.GetCashBalance(ctx)
	if err != nil && !errors.Is(err, common.ErrNoBalance) {
		return Snapshot{}, fmt.Errorf("failed to load cash balance: %w", err)
	}
	if cash == nil {
		slog.Warn("no cash balance recorded, allocating against zero")
	}

	return Snapshot{
		Invoices: invoices,
		Weights:  weights,
		Cash:     cash,
	}, nil
}

// Allocate runs the allocator over an already loaded snapshot.
func (e *Engine) Allocate(snap Snapshot) *Run {
	now := e.now()
	cash := snap.AvailableCash()
	allocated := ranking.AllocateAt(now, snap.Invoices, snap.Weights, cash)

	return &Run{
		GeneratedAt: now,
		Snapshot:    snap,
		Allocated:   allocated,
		Rows:        ranking.Waterline(allocated, cash),
		Summary:     ranking.Summarize(allocated, cash),
	}
}

// Plan snapshots the store and allocates.
func (e *Engine) Plan(ctx context.Context) (*Run, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	run := e.Allocate(snap)
	slog.Debug("Allocation planned",
		"invoices", len(run.Allocated),
		"approved", run.Summary.ApprovedCount,
		"held", run.Summary.HeldCount,
		"cash", run.Summary.AvailableCash)
	return run, nil
}

// Commit writes the run's statuses to the store and returns how many
// invoices changed. Pinned and paid invoices are left alone.
func (e *Engine) Commit(ctx context.Context, run *Run) (int, error) {
	if run == nil {
		return 0, fmt.Errorf("run cannot be nil")
	}
	if len(run.Allocated) == 0 {
		return 0, nil
	}

	changed, err := e.store.ApplyStatuses(ctx, run.Allocated)
	if err != nil {
		return 0, fmt.Errorf("failed to apply statuses: %w", err)
	}

	slog.Info("Committed allocation", "changed", changed, "invoices", len(run.Allocated))
	return changed, nil
}

// Toggle flips the status the user currently sees for id and pins it.
// A free invoice's stored status may lag the plan, so the planned status
// is written first and then flipped.
func (e *Engine) Toggle(ctx context.Context, id string) (*model.Invoice, error) {
	run, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}

	for _, inv := range run.Allocated {
		if inv.ID != id || inv.IsManualOverride() {
			continue
		}
		if _, err := e.store.ApplyStatuses(ctx, []model.Invoice{inv}); err != nil {
			return nil, fmt.Errorf("failed to sync planned status: %w", err)
		}
		break
	}

	toggled, err := e.store.ToggleInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("Pinned invoice", "id", id, "status", toggled.Status)
	return toggled, nil
}

// ChangeKind identifies a user edit to the payment run.
type ChangeKind int

// Change kinds.
const (
	ChangeToggle ChangeKind = iota
	ChangeClearOverride
	ChangeMarkPaid
	ChangeWeights
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeToggle:
		return "toggle"
	case ChangeClearOverride:
		return "clear"
	case ChangeMarkPaid:
		return "pay"
	case ChangeWeights:
		return "weights"
	default:
		return "unknown"
	}
}

// Change is one edit. InvoiceID is ignored for weight changes.
type Change struct {
	InvoiceID string
	Weights   model.Weights
	Kind      ChangeKind
}

// Apply persists a change.
func (e *Engine) Apply(ctx context.Context, change Change) error {
	var err error
	switch change.Kind {
	case ChangeToggle:
		_, err = e.Toggle(ctx, change.InvoiceID)
	case ChangeClearOverride:
		_, err = e.store.ClearOverride(ctx, change.InvoiceID)
	case ChangeMarkPaid:
		_, err = e.store.MarkPaid(ctx, change.InvoiceID, e.now())
	case ChangeWeights:
		err = e.store.SaveWeights(ctx, change.Weights)
	default:
		err = fmt.Errorf("unknown change kind %d", change.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", change.Kind, err)
	}
	return nil
}
