package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the user_version a fully migrated database
// reports. Anything else after Migrate is fatal.
const ExpectedSchemaVersion = 4

// Migration moves the schema from Version-1 to Version. Statements run in
// order inside one transaction, then After (if set) in the same transaction.
type Migration struct {
	After       func(ctx context.Context, tx *sql.Tx) error
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Invoices and settings",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS invoices (
				id TEXT PRIMARY KEY,
				vendor TEXT NOT NULL,
				category TEXT NOT NULL,
				invoice_date DATETIME NOT NULL,
				due_date DATETIME NOT NULL,
				amount REAL NOT NULL CHECK (amount >= 0),
				importance TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_invoices_status ON invoices(status)`,
			`CREATE INDEX idx_invoices_vendor ON invoices(vendor)`,
			`CREATE INDEX idx_invoices_invoice_date ON invoices(invoice_date)`,
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		Version:     2,
		Description: "Manual override mode",
		Statements: []string{
			`ALTER TABLE invoices ADD COLUMN override TEXT NOT NULL DEFAULT 'Auto'`,
			`CREATE INDEX idx_invoices_override ON invoices(override)`,
		},
	},
	{
		Version:     3,
		Description: "Cash balance history",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS cash_balances (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				amount REAL NOT NULL,
				source TEXT NOT NULL,
				reference TEXT,
				recorded_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_cash_balances_recorded_at ON cash_balances(recorded_at)`,
		},
	},
	{
		Version:     4,
		Description: "Paid date",
		Statements:  []string{`ALTER TABLE invoices ADD COLUMN paid_at DATETIME`},
		After:       releasePaidOverrides,
	},
}

// releasePaidOverrides drops pins left on invoices that were already paid.
func releasePaidOverrides(ctx context.Context, tx *sql.Tx) error {
	result, err := tx.ExecContext(ctx, `UPDATE invoices SET override = 'Auto' WHERE status = 'Paid' AND override != 'Auto'`)
	if err != nil {
		return fmt.Errorf("failed to release paid overrides: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		slog.Info("Released overrides on paid invoices", "invoices", n)
	}
	return nil
}

func (m Migration) apply(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	if m.After != nil {
		if err := m.After(ctx, tx); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	return tx.Commit()
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the database.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := m.apply(ctx, s.db); err != nil {
			return err
		}
		slog.Debug("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}
