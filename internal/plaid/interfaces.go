package plaid

import (
	"context"
)

// BalanceFetcher defines the contract for fetching account balances.
// This interface allows for easy mocking in tests and swapping data sources.
type BalanceFetcher interface {
	GetBalances(ctx context.Context) ([]AccountBalance, error)
}

// AccountBalance is one account's balances as reported by the bank.
type AccountBalance struct {
	Available  *float64
	Current    *float64
	AccountID  string
	Name       string
	Currency   string
	Depository bool
}

// Spendable returns the available balance, falling back to the current one.
func (a AccountBalance) Spendable() (float64, bool) {
	if a.Available != nil {
		return *a.Available, true
	}
	if a.Current != nil {
		return *a.Current, true
	}
	return 0, false
}
