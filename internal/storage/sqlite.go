package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStorage persists invoices, weights, and cash history in a single
// SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// dsn enables WAL and a busy timeout for file databases so a watcher and a
// CLI invocation can share one file.
func dsn(dbPath string) string {
	if dbPath == MemoryPath {
		return dbPath
	}
	return dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// NewSQLiteStorage opens dbPath, creating its directory if needed. Call
// Migrate before use.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", dbPath, err)
	}
	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}
	return t.storage.saveInvoiceTx(ctx, t.tx, invoice)
}

func (t *sqliteTransaction) SaveInvoices(ctx context.Context, invoices []model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoices(invoices); err != nil {
		return err
	}
	for i := range invoices {
		if err := t.storage.saveInvoiceTx(ctx, t.tx, &invoices[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTransaction) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getInvoiceTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListInvoices(ctx context.Context, filter service.InvoiceFilter) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listInvoicesTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) ApplyStatuses(ctx context.Context, allocated []model.Invoice) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.applyStatusesTx(ctx, t.tx, allocated)
}

func (t *sqliteTransaction) GetWeights(ctx context.Context) (model.Weights, error) {
	if err := validateContext(ctx); err != nil {
		return model.Weights{}, err
	}
	return t.storage.getWeightsTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveWeights(ctx context.Context, weights model.Weights) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.saveWeightsTx(ctx, t.tx, weights)
}

func (t *sqliteTransaction) GetCashBalance(ctx context.Context) (*model.CashBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCashBalanceTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveCashBalance(ctx context.Context, balance model.CashBalance) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.saveCashBalanceTx(ctx, t.tx, balance)
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
