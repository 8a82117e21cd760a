package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

const weightsKey = "weights"

type weightsRecord struct {
	Importance float64 `json:"importance"`
	Age        float64 `json:"age"`
	Amount     float64 `json:"amount"`
}

// GetWeights returns the saved ranking weights, or the defaults when none
// have been saved yet.
func (s *SQLiteStorage) GetWeights(ctx context.Context) (model.Weights, error) {
	if err := validateContext(ctx); err != nil {
		return model.Weights{}, err
	}
	return s.getWeightsTx(ctx, s.db)
}

func (s *SQLiteStorage) getWeightsTx(ctx context.Context, q queryable) (model.Weights, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, weightsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultWeights(), nil
	}
	if err != nil {
		return model.Weights{}, fmt.Errorf("failed to get weights: %w", err)
	}

	var record weightsRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return model.Weights{}, fmt.Errorf("failed to parse stored weights: %w", err)
	}

	return model.Weights{
		Importance: record.Importance,
		Age:        record.Age,
		Amount:     record.Amount,
	}, nil
}

// SaveWeights stores the ranking weights.
func (s *SQLiteStorage) SaveWeights(ctx context.Context, weights model.Weights) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.saveWeightsTx(ctx, s.db, weights)
}

func (s *SQLiteStorage) saveWeightsTx(ctx context.Context, q queryable, weights model.Weights) error {
	if err := validateWeights(weights); err != nil {
		return err
	}

	value, err := json.Marshal(weightsRecord{
		Importance: weights.Importance,
		Age:        weights.Age,
		Amount:     weights.Amount,
	})
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, weightsKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}
	return nil
}

// GetCashBalance returns the most recently recorded cash balance.
func (s *SQLiteStorage) GetCashBalance(ctx context.Context) (*model.CashBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCashBalanceTx(ctx, s.db)
}

func (s *SQLiteStorage) getCashBalanceTx(ctx context.Context, q queryable) (*model.CashBalance, error) {
	var balance model.CashBalance
	var source string
	var reference sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT amount, source, reference, recorded_at
		FROM cash_balances
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`).Scan(&balance.Amount, &source, &reference, &balance.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash balance: %w", err)
	}

	balance.Source = model.CashSource(source)
	if reference.Valid {
		balance.Reference = reference.String
	}
	return &balance, nil
}

// SaveCashBalance records a new cash balance. History is kept; the latest
// entry wins.
func (s *SQLiteStorage) SaveCashBalance(ctx context.Context, balance model.CashBalance) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.saveCashBalanceTx(ctx, s.db, balance)
}

func (s *SQLiteStorage) saveCashBalanceTx(ctx context.Context, q queryable, balance model.CashBalance) error {
	if err := validateBalance(balance); err != nil {
		return err
	}

	recordedAt := balance.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = nowUTC()
	}

	var reference sql.NullString
	if balance.Reference != "" {
		reference = sql.NullString{String: balance.Reference, Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO cash_balances (amount, source, reference, recorded_at)
		VALUES (?, ?, ?, ?)
	`, balance.Amount, string(balance.Source), reference, recordedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save cash balance: %w", err)
	}
	return nil
}
