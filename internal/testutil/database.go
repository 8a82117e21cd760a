// Package testutil provides test utilities for payrank: an isolated,
// migrated in-memory database and helpers around it.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
	"github.com/Veraticus/payrank/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	Invoices []model.Invoice
}

// SetupTestDB creates a new in-memory test database seeded with the given
// invoices. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, invoices.NewBuilder(t).WithFixture(invoices.FixtureLandlordMonth).Build())
func SetupTestDB(t *testing.T, seed []model.Invoice) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Invoices: seed})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Cash           *model.CashBalance
	Weights        *model.Weights
	Invoices       []model.Invoice
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Invoices) > 0 {
		if err := store.SaveInvoices(ctx, opts.Invoices); err != nil {
			t.Fatalf("failed to seed invoices: %v", err)
		}
	}
	if opts.Weights != nil {
		if err := store.SaveWeights(ctx, *opts.Weights); err != nil {
			t.Fatalf("failed to seed weights: %v", err)
		}
	}
	if opts.Cash != nil {
		if err := store.SaveCashBalance(ctx, *opts.Cash); err != nil {
			t.Fatalf("failed to seed cash balance: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:  store,
		Invoices: opts.Invoices,
		t:        t,
	}
}

// MustGetInvoice returns the stored invoice with the given ID or fails the test.
func (db *TestDB) MustGetInvoice(id string) model.Invoice {
	db.t.Helper()
	inv, err := db.Storage.GetInvoice(context.Background(), id)
	if err != nil {
		db.t.Fatalf("invoice %s: %v", id, err)
	}
	return *inv
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
