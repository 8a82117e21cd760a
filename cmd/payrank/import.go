package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/intake"
	"github.com/Veraticus/payrank/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore data from a backup",
		Long:  `Restore data written by 'payrank export dataset'. CSV invoice lists are imported with 'payrank invoices import'.`,
	}

	cmd.AddCommand(importDatasetCmd())

	return cmd
}

func importDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset <file>",
		Short: "Load invoices, weights, and cash from a YAML or JSON dataset",
		Long: `Load a dataset file in one transaction. Invoices with an existing ID
are overwritten; others are added. Weights are replaced, and the cash
balance, when present, is recorded as the latest balance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := datasetFormat(cmd, path)
			if err != nil {
				return common.NewUserError("unknown dataset format", err)
			}

			file, err := os.Open(path) // #nosec G304
			if err != nil {
				return common.NewUserError(fmt.Sprintf("cannot open %s", path), err)
			}
			defer func() { _ = file.Close() }()

			ds, err := intake.ReadDataset(file, format)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%s is not a valid dataset", path), err)
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				n, err := restoreDataset(ctx, store, ds)
				if err != nil {
					return err
				}
				slog.Info("Dataset restored", "file", path, "invoices", n)
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Restored %d invoices from %s", n, path)))
				return nil
			})
		},
	}

	cmd.Flags().String("format", "", "yaml or json (default: from extension)")

	return cmd
}

// restoreDataset writes a dataset atomically and returns the invoice count.
func restoreDataset(ctx context.Context, store service.Storage, ds *intake.Dataset) (int, error) {
	invoices, err := ds.ModelInvoices()
	if err != nil {
		return 0, common.NewUserError("dataset contains an invalid invoice", err)
	}
	weights := ds.ModelWeights()
	if err := weights.Validate(); err != nil {
		return 0, common.NewUserError("dataset contains invalid weights", err)
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(invoices) > 0 {
		if err := tx.SaveInvoices(ctx, invoices); err != nil {
			return 0, fmt.Errorf("failed to save invoices: %w", err)
		}
	}
	if err := tx.SaveWeights(ctx, weights); err != nil {
		return 0, fmt.Errorf("failed to save weights: %w", err)
	}
	if cash := ds.ModelCash(); cash != nil {
		if err := tx.SaveCashBalance(ctx, *cash); err != nil {
			return 0, fmt.Errorf("failed to save cash balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(invoices), nil
}
