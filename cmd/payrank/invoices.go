package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/intake"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"inv"},
		Short:   "Manage vendor invoices",
		Long:    `Add, list, import, and settle the invoices waiting for payment.`,
	}

	// Subcommands
	cmd.AddCommand(invoicesAddCmd())
	cmd.AddCommand(invoicesListCmd())
	cmd.AddCommand(invoicesImportCmd())
	cmd.AddCommand(invoicesExportCmd())
	cmd.AddCommand(invoicesToggleCmd())
	cmd.AddCommand(invoicesClearCmd())
	cmd.AddCommand(invoicesPayCmd())
	cmd.AddCommand(invoicesDeleteCmd())

	return cmd
}

func invoicesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an invoice",
		Long: `Add a single invoice. New invoices start on Hold until the next run
decides whether they fit. A missing vendor or amount is asked for.`,
		Example: `  payrank invoices add --vendor "City Water" --category Utilities --amount 412.80 --importance High`,
		RunE:    runInvoicesAdd,
	}

	cmd.Flags().String("vendor", "", "vendor name")
	cmd.Flags().String("category", string(intake.DefaultCategory), "category (Utilities, Rent, Security, Services, Tax)")
	cmd.Flags().String("amount", "", "amount owed")
	cmd.Flags().String("invoice-date", "", "invoice date YYYY-MM-DD (default: today)")
	cmd.Flags().String("due-date", "", "due date YYYY-MM-DD (default: invoice date)")
	cmd.Flags().String("importance", string(intake.DefaultImportance), "importance (Critical, High, Medium, Low)")

	return cmd
}

func runInvoicesAdd(cmd *cobra.Command, _ []string) error {
	if err := askMissing(cmd, "vendor", "Vendor", "amount", "Amount"); err != nil {
		return err
	}

	inv, err := invoiceFromFlags(cmd, time.Now())
	if err != nil {
		return common.NewUserError("invalid invoice", err)
	}

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		if err := store.SaveInvoice(ctx, &inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		slog.Info("Invoice added", "id", inv.ID, "vendor", inv.Vendor, "amount", inv.Amount)
		fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Added %s: %s %s", inv.ID, inv.Vendor, formatter().Format(inv.Amount))))
		return nil
	})
}

// askMissing prompts for each blank flag given as name, question pairs.
func askMissing(cmd *cobra.Command, pairs ...string) error {
	prompter := cli.NewPrompter(cmd.InOrStdin(), out(cmd))
	for i := 0; i+1 < len(pairs); i += 2 {
		name := pairs[i]
		if value, _ := cmd.Flags().GetString(name); strings.TrimSpace(value) != "" {
			continue
		}
		answer, err := prompter.Ask(cmd.Context(), pairs[i+1], "")
		if err != nil {
			return common.NewUserError(fmt.Sprintf("--%s is required", name), err)
		}
		if err := cmd.Flags().Set(name, answer); err != nil {
			return err
		}
	}
	return nil
}

func invoiceFromFlags(cmd *cobra.Command, now time.Time) (model.Invoice, error) {
	vendor, _ := cmd.Flags().GetString("vendor")
	rawCategory, _ := cmd.Flags().GetString("category")
	rawAmount, _ := cmd.Flags().GetString("amount")
	rawInvoiceDate, _ := cmd.Flags().GetString("invoice-date")
	rawDueDate, _ := cmd.Flags().GetString("due-date")
	rawImportance, _ := cmd.Flags().GetString("importance")

	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return model.Invoice{}, fmt.Errorf("vendor is required")
	}
	category, err := model.ParseCategory(rawCategory)
	if err != nil {
		return model.Invoice{}, err
	}
	importance, err := model.ParseImportance(rawImportance)
	if err != nil {
		return model.Invoice{}, err
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return model.Invoice{}, err
	}
	if amount < 0 {
		return model.Invoice{}, fmt.Errorf("amount cannot be negative: %s", rawAmount)
	}
	invoiceDate, err := parseDay(rawInvoiceDate, now)
	if err != nil {
		return model.Invoice{}, err
	}
	dueDate := invoiceDate
	if rawDueDate != "" {
		if dueDate, err = parseDay(rawDueDate, now); err != nil {
			return model.Invoice{}, err
		}
	}

	return model.NewInvoice(vendor, category, amount, invoiceDate, dueDate, importance), nil
}

func invoicesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored invoices",
		Long:  `List stored invoices with their persisted status and override.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := invoiceFilterFromFlags(cmd)
			if err != nil {
				return common.NewUserError("invalid filter", err)
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				invoices, err := store.ListInvoices(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list invoices: %w", err)
				}
				return cli.RenderInvoices(out(cmd), invoices, formatter())
			})
		},
	}

	cmd.Flags().String("vendor", "", "only invoices from this vendor")
	cmd.Flags().StringSlice("status", nil, "only these statuses (Approved, Hold, Paid)")
	cmd.Flags().Bool("open", false, "hide paid invoices")
	cmd.Flags().Int("limit", 0, "maximum invoices to show (0 for all)")

	return cmd
}

func invoiceFilterFromFlags(cmd *cobra.Command) (service.InvoiceFilter, error) {
	vendor, _ := cmd.Flags().GetString("vendor")
	rawStatuses, _ := cmd.Flags().GetStringSlice("status")
	open, _ := cmd.Flags().GetBool("open")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := service.InvoiceFilter{
		Vendor:      strings.TrimSpace(vendor),
		ExcludePaid: open,
		Limit:       limit,
	}
	for _, raw := range rawStatuses {
		status, err := parseStatus(raw)
		if err != nil {
			return service.InvoiceFilter{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if limit < 0 {
		return service.InvoiceFilter{}, fmt.Errorf("limit cannot be negative")
	}
	return filter, nil
}

func parseStatus(raw string) (model.InvoiceStatus, error) {
	for _, status := range []model.InvoiceStatus{model.StatusApproved, model.StatusHold, model.StatusPaid} {
		if strings.EqualFold(strings.TrimSpace(raw), string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", model.ErrInvalidStatus, raw)
}

func invoicesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import invoices from a CSV file",
		Long: `Import invoices from a CSV file with the columns

  vendor,category,amount,invoiceDate,dueDate,importance

The header row is skipped. Blank cells fall back to defaults. Rows that
cannot be parsed are reported and left out; the rest are saved.`,
		Args: cobra.ExactArgs(1),
		RunE: runInvoicesImport,
	}

	cmd.Flags().Bool("dry-run", false, "parse and report without saving")

	return cmd
}

func runInvoicesImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	path := args[0]

	file, err := os.Open(path) // #nosec G304
	if err != nil {
		return common.NewUserError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer func() { _ = file.Close() }()

	progress := cli.NewImportProgress(cmd.ErrOrStderr())
	result, err := intake.NewImporter(intake.WithProgress(progress.Update)).Import(file)
	progress.Finish()
	if err != nil {
		if errors.Is(err, common.ErrNoInvoices) {
			return common.NewUserError(fmt.Sprintf("%s has no invoice rows", path), err)
		}
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	w := out(cmd)
	for _, rowErr := range result.Errors {
		fmt.Fprintln(w, cli.FormatWarning(rowErr.Error()))
	}
	if result.Skipped > 0 {
		slog.Info("Skipped short rows", "count", result.Skipped)
	}

	if dryRun {
		fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Dry run: %d invoices parsed, %d rejected", len(result.Invoices), len(result.Errors))))
		return cli.RenderInvoices(w, result.Invoices, formatter())
	}
	if len(result.Invoices) == 0 {
		return common.NewUserError("no valid invoices to import", common.ErrNoInvoices)
	}

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		if err := store.SaveInvoices(ctx, result.Invoices); err != nil {
			return fmt.Errorf("failed to save invoices: %w", err)
		}
		slog.Info("Import complete", "file", path, "imported", len(result.Invoices), "rejected", len(result.Errors))
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d invoices", len(result.Invoices))))
		return nil
	})
}

func invoicesExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export invoices to CSV",
		Long:  `Export stored invoices to CSV, or to stdout when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := invoiceFilterFromFlags(cmd)
			if err != nil {
				return common.NewUserError("invalid filter", err)
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				invoices, err := store.ListInvoices(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list invoices: %w", err)
				}
				if len(args) == 0 {
					return intake.WriteCSV(out(cmd), invoices)
				}

				file, err := os.Create(args[0]) // #nosec G304
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				if err := intake.WriteCSV(file, invoices); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Exported %d invoices to %s", len(invoices), args[0])))
				return nil
			})
		},
	}

	cmd.Flags().String("vendor", "", "only invoices from this vendor")
	cmd.Flags().StringSlice("status", nil, "only these statuses (Approved, Hold, Paid)")
	cmd.Flags().Bool("open", false, "leave out paid invoices")
	cmd.Flags().Int("limit", 0, "maximum invoices to export (0 for all)")

	return cmd
}

func invoicesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip an invoice between Approved and Hold and pin it",
		Long: `Flip the status the current plan gives an invoice and pin it there.
Pinned invoices keep their status on every later run until cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				inv, err := newEngine(store).Toggle(ctx, args[0])
				if err != nil {
					return invoiceError(args[0], err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("%s %s pinned %s", cli.PinIcon, inv.ID, cli.FormatStatus(*inv))))
				return nil
			})
		},
	}
}

func invoicesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Return a pinned invoice to automatic allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				inv, err := store.ClearOverride(ctx, args[0])
				if err != nil {
					return invoiceError(args[0], err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("%s is back on automatic allocation", inv.ID)))
				return nil
			})
		},
	}
}

func invoicesPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Mark an invoice paid",
		Long:  `Mark an invoice paid. Paid invoices no longer take part in allocation.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawDate, _ := cmd.Flags().GetString("date")
			paidAt := time.Now()
			if rawDate != "" {
				day, err := parseDay(rawDate, paidAt)
				if err != nil {
					return common.NewUserError("invalid payment date", err)
				}
				paidAt = day
			}

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				inv, err := store.MarkPaid(ctx, args[0], paidAt)
				if err != nil {
					return invoiceError(args[0], err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("%s marked paid (%s)", inv.ID, formatter().Format(inv.Amount))))
				return nil
			})
		},
	}

	cmd.Flags().String("date", "", "payment date YYYY-MM-DD (default: now)")

	return cmd
}

func invoicesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				inv, err := store.GetInvoice(ctx, args[0])
				if err != nil {
					return invoiceError(args[0], err)
				}

				if !yes {
					prompter := cli.NewPrompter(cmd.InOrStdin(), out(cmd))
					question := fmt.Sprintf("Delete %s (%s, %s)?", inv.ID, inv.Vendor, formatter().Format(inv.Amount))
					ok, err := prompter.Confirm(ctx, question, false)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out(cmd), cli.FormatInfo("Nothing deleted"))
						return nil
					}
				}

				if err := store.DeleteInvoice(ctx, inv.ID); err != nil {
					return invoiceError(inv.ID, err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Deleted %s", inv.ID)))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	return cmd
}

// invoiceError turns lookup and toggle failures into messages for the user.
func invoiceError(id string, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError(fmt.Sprintf("no invoice with ID %s", id), err)
	case errors.Is(err, model.ErrCannotToggle):
		return common.NewUserError(fmt.Sprintf("%s is already paid", id), err)
	default:
		return err
	}
}
