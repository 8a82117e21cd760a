package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
)

const invoiceColumns = `id, vendor, category, invoice_date, due_date, amount, importance, status, override`

// SaveInvoice inserts or replaces a single invoice.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}
	return s.saveInvoiceTx(ctx, s.db, invoice)
}

// SaveInvoices upserts a batch of invoices in one transaction.
func (s *SQLiteStorage) SaveInvoices(ctx context.Context, invoices []model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoices(invoices); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range invoices {
			if err := s.saveInvoiceTx(ctx, tx, &invoices[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) saveInvoiceTx(ctx context.Context, q queryable, invoice *model.Invoice) error {
	var paidAt sql.NullTime
	if invoice.Status == model.StatusPaid {
		paidAt = sql.NullTime{Time: nowUTC(), Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO invoices (
			id, vendor, category, invoice_date, due_date,
			amount, importance, status, override, paid_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vendor = excluded.vendor,
			category = excluded.category,
			invoice_date = excluded.invoice_date,
			due_date = excluded.due_date,
			amount = excluded.amount,
			importance = excluded.importance,
			status = excluded.status,
			override = excluded.override,
			paid_at = CASE
				WHEN excluded.status = 'Paid' THEN COALESCE(invoices.paid_at, excluded.paid_at)
				ELSE NULL
			END,
			updated_at = CURRENT_TIMESTAMP
	`,
		invoice.ID,
		invoice.Vendor,
		string(invoice.Category),
		invoice.InvoiceDate.UTC(),
		invoice.DueDate.UTC(),
		invoice.Amount,
		string(invoice.Importance),
		string(invoice.Status),
		string(invoice.Override),
		paidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", invoice.ID, err)
	}
	return nil
}

// GetInvoice retrieves a single invoice by ID.
func (s *SQLiteStorage) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getInvoiceTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getInvoiceTx(ctx context.Context, q queryable, id string) (*model.Invoice, error) {
	row := q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)

	invoice, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns invoices matching the filter, oldest first.
func (s *SQLiteStorage) ListInvoices(ctx context.Context, filter service.InvoiceFilter) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listInvoicesTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listInvoicesTx(ctx context.Context, q queryable, filter service.InvoiceFilter) ([]model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var conditions []string
	var args []any

	if filter.Vendor != "" {
		conditions = append(conditions, "vendor = ? COLLATE NOCASE")
		args = append(args, filter.Vendor)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.ExcludePaid {
		conditions = append(conditions, "status != ?")
		args = append(args, string(model.StatusPaid))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY invoice_date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var invoices []model.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}

	return invoices, rows.Err()
}

// DeleteInvoice removes an invoice.
func (s *SQLiteStorage) DeleteInvoice(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// ToggleInvoice flips an invoice between Approved and Hold and pins it.
func (s *SQLiteStorage) ToggleInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	return s.updateInvoice(ctx, id, func(invoice model.Invoice) (model.Invoice, error) {
		return invoice.Toggle()
	})
}

// ClearOverride hands an invoice back to allocation.
func (s *SQLiteStorage) ClearOverride(ctx context.Context, id string) (*model.Invoice, error) {
	return s.updateInvoice(ctx, id, func(invoice model.Invoice) (model.Invoice, error) {
		return invoice.ClearOverride(), nil
	})
}

// MarkPaid settles an invoice, recording when it was paid.
func (s *SQLiteStorage) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*model.Invoice, error) {
	var updated *model.Invoice
	err := s.modifyInvoice(ctx, id, func(tx *sql.Tx, invoice model.Invoice) error {
		paid := invoice.MarkPaid()
		if err := s.saveInvoiceTx(ctx, tx, &paid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE invoices SET paid_at = ? WHERE id = ?`, paidAt.UTC(), id); err != nil {
			return fmt.Errorf("failed to record payment date: %w", err)
		}
		updated = &paid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLiteStorage) updateInvoice(ctx context.Context, id string, change func(model.Invoice) (model.Invoice, error)) (*model.Invoice, error) {
	var updated *model.Invoice
	err := s.modifyInvoice(ctx, id, func(tx *sql.Tx, invoice model.Invoice) error {
		next, err := change(invoice)
		if err != nil {
			return err
		}
		if err := s.saveInvoiceTx(ctx, tx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// modifyInvoice loads an invoice and hands it to fn inside one transaction.
func (s *SQLiteStorage) modifyInvoice(ctx context.Context, id string, fn func(tx *sql.Tx, invoice model.Invoice) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		invoice, err := s.getInvoiceTx(ctx, tx, id)
		if err != nil {
			return err
		}
		return fn(tx, *invoice)
	})
}

// ApplyStatuses persists the statuses from an allocation run. Only unpinned,
// unpaid rows change; the count of changed rows is returned.
func (s *SQLiteStorage) ApplyStatuses(ctx context.Context, allocated []model.Invoice) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var changed int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		changed, err = s.applyStatusesTx(ctx, tx, allocated)
		return err
	})
	return changed, err
}

func (s *SQLiteStorage) applyStatusesTx(ctx context.Context, q queryable, allocated []model.Invoice) (int, error) {
	changed := 0
	for _, invoice := range allocated {
		if invoice.Status != model.StatusApproved && invoice.Status != model.StatusHold {
			continue
		}

		result, err := q.ExecContext(ctx, `
			UPDATE invoices
			SET status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND override = ? AND status != ? AND status != ?
		`,
			string(invoice.Status),
			invoice.ID,
			string(model.OverrideAuto),
			string(model.StatusPaid),
			string(invoice.Status),
		)
		if err != nil {
			return changed, fmt.Errorf("failed to apply status to invoice %s: %w", invoice.ID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return changed, fmt.Errorf("failed to get rows affected: %w", err)
		}
		changed += int(rowsAffected)
	}

	slog.Debug("Applied allocation statuses", "invoices", len(allocated), "changed", changed)
	return changed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	var invoice model.Invoice
	var category, importance, status, override string

	err := row.Scan(
		&invoice.ID,
		&invoice.Vendor,
		&category,
		&invoice.InvoiceDate,
		&invoice.DueDate,
		&invoice.Amount,
		&importance,
		&status,
		&override,
	)
	if err != nil {
		return nil, err
	}

	invoice.Category = model.Category(category)
	invoice.Importance = model.Importance(importance)
	invoice.Status = model.InvoiceStatus(status)
	invoice.Override = model.OverrideMode(override)
	return &invoice, nil
}
