package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/intake"
	"github.com/Veraticus/payrank/internal/service"
	"github.com/Veraticus/payrank/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the payment run or a full backup",
	}

	cmd.AddCommand(exportSheetsCmd())
	cmd.AddCommand(exportDatasetCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Publish the planned payment run to Google Sheets",
		Long: `Plan the payment run and write the summary and waterline to a Google
spreadsheet. The sheet is cleared and rewritten on every export.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheetsCfg, err := config.LoadSheetsConfig()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured; run 'payrank auth sheets' first", err)
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default().With("component", "sheets"))
				if err != nil {
					return fmt.Errorf("failed to create sheets writer: %w", err)
				}
				return publishRun(ctx, cmd, store, writer)
			})
		},
	}
}

// publishRun plans and hands the report to a writer.
func publishRun(ctx context.Context, cmd *cobra.Command, store service.Storage, writer service.ReportWriter) error {
	run, err := newEngine(store).Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan payment run: %w", err)
	}
	if err := writer.Write(ctx, run.Report()); err != nil {
		return fmt.Errorf("failed to publish payment run: %w", err)
	}
	fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Published %d invoices", len(run.Rows))))
	return nil
}

func exportDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset [file]",
		Short: "Back up invoices, weights, and cash to YAML or JSON",
		Long: `Write every invoice, the weights, and the latest cash balance to a
dataset file. The format follows the file extension unless --format is
given. Without a file the dataset goes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			format, err := datasetFormat(cmd, path)
			if err != nil {
				return common.NewUserError("unknown dataset format", err)
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				ds, err := loadDataset(ctx, store, time.Now())
				if err != nil {
					return err
				}
				if path == "" {
					return intake.WriteDataset(out(cmd), ds, format)
				}
				if err := writeFile(path, func(w io.Writer) error {
					return intake.WriteDataset(w, ds, format)
				}); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Exported %d invoices to %s", len(ds.Invoices), path)))
				return nil
			})
		},
	}

	cmd.Flags().String("format", "", "yaml or json (default: from extension, else yaml)")

	return cmd
}

// datasetFormat resolves --format, then the extension of path, then YAML.
func datasetFormat(cmd *cobra.Command, path string) (intake.Format, error) {
	if flag, _ := cmd.Flags().GetString("format"); flag != "" {
		return intake.ParseFormat(flag)
	}
	if path == "" {
		return intake.FormatYAML, nil
	}
	return intake.FormatFromPath(path)
}

func loadDataset(ctx context.Context, store service.InvoiceStore, now time.Time) (*intake.Dataset, error) {
	invoices, err := store.ListInvoices(ctx, service.InvoiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	weights, err := store.GetWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	cash, err := store.GetCashBalance(ctx)
	if err != nil && !errors.Is(err, common.ErrNoBalance) {
		return nil, fmt.Errorf("failed to load cash balance: %w", err)
	}
	return intake.NewDataset(invoices, weights, cash, now), nil
}

func writeFile(path string, fn func(w io.Writer) error) error {
	file, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
