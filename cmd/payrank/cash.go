package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ofx"
	"github.com/Veraticus/payrank/internal/plaid"
	"github.com/Veraticus/payrank/internal/service"
)

func cashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Record the cash available for the next payment run",
		Long: `Show or record the cash balance the allocator spends. The latest
recorded balance is used; older balances are kept as history.`,
	}

	// Subcommands
	cmd.AddCommand(cashShowCmd())
	cmd.AddCommand(cashSetCmd())
	cmd.AddCommand(cashOFXCmd())
	cmd.AddCommand(cashPlaidCmd())

	return cmd
}

func cashShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the latest cash balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				balance, err := store.GetCashBalance(ctx)
				if errors.Is(err, common.ErrNoBalance) {
					fmt.Fprintln(out(cmd), cli.FormatWarning("No cash balance recorded. Use 'payrank cash set <amount>'."))
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to load cash balance: %w", err)
				}
				fmt.Fprintln(out(cmd), describeBalance(balance, formatter()))
				return nil
			})
		},
	}
}

func describeBalance(b *model.CashBalance, f cli.Formatter) string {
	line := fmt.Sprintf("%s %s from %s, recorded %s", cli.MoneyIcon, cli.BoldStyle.Render(f.Format(b.Amount)), b.Source, b.RecordedAt.Local().Format("2006-01-02 15:04"))
	if b.Reference != "" {
		line += fmt.Sprintf(" (%s)", b.Reference)
	}
	return line
}

func cashSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <amount>",
		Short: "Record a cash balance by hand",
		Long:  `Record a cash balance by hand. Negative balances are accepted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return common.NewUserError("invalid cash amount", err)
			}
			reference, _ := cmd.Flags().GetString("note")

			balance := model.CashBalance{
				Amount:     amount,
				Source:     model.CashSourceManual,
				Reference:  reference,
				RecordedAt: time.Now().UTC(),
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return recordBalance(ctx, cmd, store, &balance)
			})
		},
	}

	cmd.Flags().String("note", "", "free-form note stored with the balance")

	return cmd
}

func cashOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <file>",
		Short: "Read the cash balance from an OFX/QFX statement",
		Long: `Read the cash balance from a bank statement download. The available
balance is used when the bank reports one, the ledger balance otherwise.
Every bank account in the file is summed unless --account is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("account")
			source := ofx.NewFileSource(config.ExpandPath(args[0]), account)
			return recordFromSource(cmd, source)
		},
	}

	cmd.Flags().String("account", "", "only use this account ID")

	return cmd
}

func cashPlaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plaid",
		Short: "Fetch the cash balance from linked bank accounts",
		Long: `Fetch balances through Plaid and sum the spendable balance of every
depository account. Configure plaid.client_id, plaid.secret, and
plaid.access_token first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := plaid.NewClient(config.LoadPlaidConfig())
			if err != nil {
				return common.NewUserError("plaid is not configured", err)
			}
			return recordFromSource(cmd, plaid.NewSource(client))
		},
	}
}

func recordFromSource(cmd *cobra.Command, source service.CashSource) error {
	ctx := cmd.Context()
	balance, err := source.CashBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cash balance: %w", err)
	}

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		return recordBalance(ctx, cmd, store, balance)
	})
}

func recordBalance(ctx context.Context, cmd *cobra.Command, store service.Storage, balance *model.CashBalance) error {
	if err := store.SaveCashBalance(ctx, *balance); err != nil {
		return fmt.Errorf("failed to save cash balance: %w", err)
	}
	slog.Info("Cash balance recorded", "amount", balance.Amount, "source", balance.Source)
	fmt.Fprintln(out(cmd), cli.FormatSuccess("Recorded "+formatter().Format(balance.Amount)))
	return nil
}
