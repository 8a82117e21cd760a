package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
)

// Source turns Plaid balances into the cash available for a payment run.
type Source struct {
	fetcher BalanceFetcher
	now     func() time.Time
}

// NewSource creates a cash source over a balance fetcher.
func NewSource(fetcher BalanceFetcher) *Source {
	return &Source{fetcher: fetcher, now: time.Now}
}

// CashBalance sums the spendable balance of every depository account.
// Credit and loan accounts are skipped.
func (s *Source) CashBalance(ctx context.Context) (*model.CashBalance, error) {
	accounts, err := s.fetcher.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var used []string
	for _, account := range accounts {
		if !account.Depository {
			continue
		}
		amount, ok := account.Spendable()
		if !ok {
			slog.Warn("Account has no balance", "account", account.AccountID, "name", account.Name)
			continue
		}
		total = total.Add(decimal.NewFromFloat(amount))
		used = append(used, account.AccountID)
	}

	if len(used) == 0 {
		return nil, fmt.Errorf("%w: no depository accounts with a balance", common.ErrNoBalance)
	}

	return &model.CashBalance{
		Amount:     total.Round(2).InexactFloat64(),
		Source:     model.CashSourcePlaid,
		Reference:  strings.Join(used, ","),
		RecordedAt: s.now().UTC(),
	}, nil
}
