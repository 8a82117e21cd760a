package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/engine"
	"github.com/Veraticus/payrank/internal/intake"
	"github.com/Veraticus/payrank/internal/service"
	"github.com/Veraticus/payrank/internal/tui"
	"github.com/Veraticus/payrank/internal/tui/themes"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan the payment run",
		Long: `Rank every unpaid invoice and approve as many as the recorded cash
covers, highest score first. Nothing is written unless --commit is given.

With --interactive the waterline opens in a terminal UI where invoices can
be pinned, released, and paid while the allocation updates live.`,
		RunE: runRun,
	}

	cmd.Flags().Bool("commit", false, "write the planned statuses back to the database")
	cmd.Flags().BoolP("interactive", "i", false, "open the interactive waterline")
	cmd.Flags().BoolP("yes", "y", false, "commit without asking")
	cmd.Flags().String("csv", "", "also write the ranked invoices to this CSV file")

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	commit, _ := cmd.Flags().GetBool("commit")
	interactive, _ := cmd.Flags().GetBool("interactive")
	yes, _ := cmd.Flags().GetBool("yes")
	csvPath, _ := cmd.Flags().GetString("csv")

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		eng := newEngine(store)
		w := out(cmd)

		if interactive {
			interrupted, err := runInteractive(ctx, cmd, eng)
			if err != nil || interrupted {
				return err
			}
		}

		run, err := eng.Plan(ctx)
		if err != nil {
			return fmt.Errorf("failed to plan payment run: %w", err)
		}
		if err := renderRun(w, run); err != nil {
			return err
		}

		if csvPath != "" {
			if err := writeRunCSV(csvPath, run); err != nil {
				return err
			}
			fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Wrote %d invoices to %s", len(run.Allocated), csvPath)))
		}

		if !commit {
			return nil
		}
		if !yes {
			prompter := cli.NewPrompter(cmd.InOrStdin(), w)
			question := fmt.Sprintf("Approve %d invoices totalling %s?", run.Summary.ApprovedCount, formatter().Format(run.Summary.ApprovedTotal))
			ok, err := prompter.Confirm(ctx, question, false)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(w, cli.FormatInfo("Nothing committed"))
				return nil
			}
		}

		changed, err := eng.Commit(ctx, run)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Committed: %d invoices changed status", changed)))
		return nil
	})
}

// runInteractive reports whether the session ended on a signal, in which
// case the caller should stop without planning again.
func runInteractive(ctx context.Context, cmd *cobra.Command, eng *engine.Engine) (bool, error) {
	prefs := config.LoadTUI()
	if !slices.Contains(themes.Names(), prefs.Theme) {
		slog.Warn("Unknown tui.theme, using default", "theme", prefs.Theme, "available", themes.Names())
	}
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = handler.HandleInterrupts(ctx, "Payment run", "Every change you made was saved as you made it.")

	final, err := tui.Run(ctx, eng,
		tui.WithTheme(themes.GetTheme(prefs.Theme)),
		tui.WithCurrency(config.Currency()),
		tui.WithWeightStep(prefs.WeightStep),
		tui.WithHelp(prefs.ShowHelp),
	)
	if handler.WasInterrupted() {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	slog.Debug("Interactive session finished", "changes", final.Changes())
	if final.Changes() > 0 {
		fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("%d changes saved", final.Changes())))
	}
	return false, nil
}

func renderRun(w io.Writer, run *engine.Run) error {
	f := formatter()
	fmt.Fprintln(w, cli.FormatTitle("Payment run "+run.GeneratedAt.Format("Mon Jan 2 2006")))
	fmt.Fprintln(w, describeWeights(run.Snapshot.Weights))
	fmt.Fprintln(w)
	if err := cli.RenderWaterline(w, run.Rows, run.Summary.AvailableCash, f); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return cli.RenderSummary(w, run.Summary, f)
}

func writeRunCSV(path string, run *engine.Run) error {
	file, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := intake.WriteCSV(file, run.Allocated); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard figures for the planned run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				run, err := newEngine(store).Plan(ctx)
				if err != nil {
					return fmt.Errorf("failed to plan payment run: %w", err)
				}
				return cli.RenderSummary(out(cmd), run.Summary, formatter())
			})
		},
	}
}
