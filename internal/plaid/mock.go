package plaid

import (
	"context"
)

// MockClient is a mock implementation of BalanceFetcher for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetBalancesFn func(ctx context.Context) ([]AccountBalance, error)

	// Call tracking
	GetBalancesCalls int
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetBalances implements BalanceFetcher.GetBalances.
func (m *MockClient) GetBalances(ctx context.Context) ([]AccountBalance, error) {
	m.GetBalancesCalls++

	if m.GetBalancesFn != nil {
		return m.GetBalancesFn(ctx)
	}

	return []AccountBalance{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetBalancesCalls = 0
}

var _ BalanceFetcher = (*MockClient)(nil)
