// Package plaid reads account balances from the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/payrank/internal/common"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
	AccountIDs  []string // optional; empty means every depository account
}

var environments = map[string]plaid.Environment{
	"sandbox":    plaid.Sandbox,
	"production": plaid.Production,
}

// Validate reports the first missing or unsupported setting.
func (c *Config) Validate() error {
	required := []struct{ value, name string }{
		{c.ClientID, "client ID"},
		{c.Secret, "secret"},
		{c.AccessToken, "access token"},
		{c.Environment, "environment"},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: plaid %s is required", common.ErrMissingConfig, r.name)
		}
	}
	if _, ok := environments[c.Environment]; !ok {
		return fmt.Errorf("%w: plaid environment must be sandbox or production, got %q", common.ErrInvalidConfig, c.Environment)
	}
	return nil
}

// Client fetches balances for a single linked item.
type Client struct {
	api         *plaid.APIClient
	logger      *slog.Logger
	retry       common.RetryOptions
	accessToken string
	accountIDs  []string
}

// NewClient validates cfg and builds a client for its environment.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conf := plaid.NewConfiguration()
	conf.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	conf.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	conf.UseEnvironment(environments[cfg.Environment])

	return &Client{
		api:         plaid.NewAPIClient(conf),
		accessToken: cfg.AccessToken,
		accountIDs:  cfg.AccountIDs,
		logger:      slog.Default().With("component", "plaid"),
		retry:       common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 30 * time.Second},
	}, nil
}

// GetBalances fetches the balances of the item's accounts, retrying when
// Plaid throttles.
func (c *Client) GetBalances(ctx context.Context) ([]AccountBalance, error) {
	request := plaid.NewAccountsGetRequest(c.accessToken)
	if len(c.accountIDs) > 0 {
		ids := c.accountIDs
		request.SetOptions(plaid.AccountsGetRequestOptions{AccountIds: &ids})
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		resp, _, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return classifyError(err)
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched accounts", "count", len(accounts))

	balances := make([]AccountBalance, len(accounts))
	for i, account := range accounts {
		balances[i] = mapAccount(account)
	}
	return balances, nil
}

// classifyError marks throttling as retryable and any other Plaid API error
// as permanent. Transport errors are left to the default retry policy.
func classifyError(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage),
			Retryable: true,
		}
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("plaid API error %s: %s", plaidErr.ErrorCode, plaidErr.ErrorMessage),
		Retryable: false,
	}
}

func mapAccount(account plaid.AccountBase) AccountBalance {
	b := account.GetBalances()
	balance := AccountBalance{
		AccountID:  account.GetAccountId(),
		Name:       account.GetName(),
		Depository: account.GetType() == plaid.ACCOUNTTYPE_DEPOSITORY,
		Currency:   b.GetIsoCurrencyCode(),
	}
	if available, ok := b.GetAvailableOk(); ok && available != nil {
		v := *available
		balance.Available = &v
	}
	if current, ok := b.GetCurrentOk(); ok && current != nil {
		v := *current
		balance.Current = &v
	}
	return balance
}
