package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/engine"
	"github.com/Veraticus/payrank/internal/schedule"
	"github.com/Veraticus/payrank/internal/service"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Payment run dates and the re-planning watcher",
		Long: `Payment runs fall on the fifth business day of each month. The watcher
re-plans on a cron schedule (schedule.cron, default weekdays at 08:00) so the
waterline stays current as cash and invoices change.`,
	}

	cmd.AddCommand(scheduleNextCmd())
	cmd.AddCommand(scheduleWatchCmd())

	return cmd
}

func scheduleNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the upcoming payment run dates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			if count < 1 {
				return common.NewUserError("--count must be at least 1", common.ErrInvalidConfig)
			}
			for _, line := range upcomingRuns(time.Now(), count) {
				fmt.Fprintln(out(cmd), line)
			}

			sched, err := schedule.ParseSpec(config.ScheduleSpec())
			if err != nil {
				return common.NewUserError("schedule.cron is invalid", err)
			}
			fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("Next re-plan (%s): %s", config.ScheduleSpec(), sched.Next(time.Now()).Format("Mon Jan 2 15:04"))))
			return nil
		},
	}

	cmd.Flags().IntP("count", "n", 3, "how many payment runs to list")

	return cmd
}

// upcomingRuns lists the next n payment run dates starting from now.
func upcomingRuns(now time.Time, n int) []string {
	lines := make([]string, 0, n)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	run := schedule.NextPaymentRun(now)
	for range n {
		label := run.Format("Mon Jan 2 2006")
		if run.Equal(today) {
			label += " (today)"
		}
		lines = append(lines, cli.CalendarIcon+" "+label)
		run = schedule.FifthBusinessDay(time.Date(run.Year(), run.Month()+1, 1, 0, 0, 0, 0, run.Location()))
	}
	return lines
}

func scheduleWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-plan the payment run on a schedule until interrupted",
		Long: `Plan the payment run immediately and then on every cron tick. With
--auto-commit the planned statuses are written back whenever a tick lands on
a payment run day.`,
		RunE: runScheduleWatch,
	}

	cmd.Flags().String("cron", "", "cron expression (overrides schedule.cron)")
	cmd.Flags().Bool("auto-commit", false, "commit on payment run days")
	_ = viper.BindPFlag("schedule.auto_commit", cmd.Flags().Lookup("auto-commit"))

	return cmd
}

func runScheduleWatch(cmd *cobra.Command, _ []string) error {
	spec := config.ScheduleSpec()
	if flag, _ := cmd.Flags().GetString("cron"); flag != "" {
		spec = flag
	}

	return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
		f := formatter()
		w := out(cmd)

		watcher, err := schedule.NewWatcher(newEngine(store), spec,
			schedule.WithAutoCommit(viper.GetBool("schedule.auto_commit")),
			schedule.WithOnRun(func(run *engine.Run) {
				fmt.Fprintln(w, runHeadline(run, f))
			}),
		)
		if err != nil {
			return common.NewUserError("invalid schedule", err)
		}

		if _, err := watcher.RunOnce(ctx); err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Watching (%s). Next: %s. Press Ctrl+C to stop.", spec, watcher.Next().Format("Mon Jan 2 15:04"))))
		<-ctx.Done()
		return nil
	})
}

func runHeadline(run *engine.Run, f cli.Formatter) string {
	s := run.Summary
	line := fmt.Sprintf("%s %s  approved %d (%s)  held %d (%s)  cash %s",
		cli.ChartIcon,
		run.GeneratedAt.Format("2006-01-02 15:04"),
		s.ApprovedCount, f.Format(s.ApprovedTotal),
		s.HeldCount, f.Format(s.HeldTotal),
		f.Format(s.AvailableCash))
	if s.IsDanger() {
		line += "  " + cli.ErrorStyle.Render("over budget")
	}
	return line
}
