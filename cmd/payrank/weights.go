package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
)

func weightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Tune how invoices are scored",
		Long: `Each weight runs from 0 to 100 and scales one signal: importance,
age, and amount. They do not need to add up to 100.`,
	}

	cmd.AddCommand(weightsShowCmd())
	cmd.AddCommand(weightsSetCmd())

	return cmd
}

func weightsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				weights, err := store.GetWeights(ctx)
				if err != nil {
					return fmt.Errorf("failed to load weights: %w", err)
				}
				fmt.Fprintln(out(cmd), describeWeights(weights))
				return nil
			})
		},
	}
}

func describeWeights(w model.Weights) string {
	return fmt.Sprintf("%s importance %.0f · age %.0f · amount %.0f", cli.ChartIcon, w.Importance, w.Age, w.Amount)
}

func weightsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more weights",
		Example: `  payrank weights set --age 50
  payrank weights set --reset`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				current, err := store.GetWeights(ctx)
				if err != nil {
					return fmt.Errorf("failed to load weights: %w", err)
				}

				next, err := weightsFromFlags(cmd, current)
				if err != nil {
					return common.NewUserError("invalid weights", err)
				}
				if err := store.SaveWeights(ctx, next); err != nil {
					return fmt.Errorf("failed to save weights: %w", err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess("Weights saved"))
				fmt.Fprintln(out(cmd), describeWeights(next))
				return nil
			})
		},
	}

	cmd.Flags().Float64("importance", 0, "importance weight (0-100)")
	cmd.Flags().Float64("age", 0, "age weight (0-100)")
	cmd.Flags().Float64("amount", 0, "amount weight (0-100)")
	cmd.Flags().Bool("reset", false, "restore the default weights")

	return cmd
}

// weightsFromFlags applies only the flags the user set on top of current.
func weightsFromFlags(cmd *cobra.Command, current model.Weights) (model.Weights, error) {
	flags := cmd.Flags()
	if reset, _ := flags.GetBool("reset"); reset {
		return model.DefaultWeights(), nil
	}

	next := current
	changed := false
	for name, slot := range map[string]*float64{
		"importance": &next.Importance,
		"age":        &next.Age,
		"amount":     &next.Amount,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, _ := flags.GetFloat64(name)
		*slot = v
		changed = true
	}
	if !changed {
		return current, fmt.Errorf("set at least one of --importance, --age, --amount, or --reset")
	}
	return next, next.Validate()
}
