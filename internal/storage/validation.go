// Package storage provides the data persistence layer for payrank.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/payrank/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidInvoice   = errors.New("invalid invoice")
	ErrInvalidWeights   = errors.New("invalid weights")
	ErrInvalidBalance   = errors.New("invalid cash balance")
	ErrDuplicateInvoice = errors.New("duplicate invoice id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateInvoice validates a single invoice.
func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if math.IsNaN(invoice.Amount) || math.IsInf(invoice.Amount, 0) {
		return fmt.Errorf("%w: amount is not a number", ErrInvalidInvoice)
	}
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInvoice, err)
	}
	return nil
}

// validateInvoices validates a batch and rejects repeated IDs.
func validateInvoices(invoices []model.Invoice) error {
	if invoices == nil {
		return fmt.Errorf("%w: invoices", ErrNilParameter)
	}
	if len(invoices) == 0 {
		return fmt.Errorf("%w: invoices", ErrEmptySlice)
	}

	seen := make(map[string]bool, len(invoices))
	for i := range invoices {
		if err := validateInvoice(&invoices[i]); err != nil {
			return fmt.Errorf("invoice at index %d: %w", i, err)
		}
		if seen[invoices[i].ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateInvoice, invoices[i].ID)
		}
		seen[invoices[i].ID] = true
	}
	return nil
}

// validateWeights rejects weights the settings surface could never produce.
func validateWeights(weights model.Weights) error {
	if err := weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	return nil
}

// validateBalance ensures a cash balance can be stored.
func validateBalance(balance model.CashBalance) error {
	if math.IsNaN(balance.Amount) || math.IsInf(balance.Amount, 0) {
		return fmt.Errorf("%w: amount is not a number", ErrInvalidBalance)
	}
	if strings.TrimSpace(string(balance.Source)) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidBalance)
	}
	return nil
}
