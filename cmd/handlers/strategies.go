package handlers

import (
	"github.com/spf13/cobra"

	"localpress/internal/feedback"
)

// NewStrategiesCmd creates the strategy management command group.
func NewStrategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Inspect and tune prompt strategy versions",
	}

	cmd.AddCommand(newStrategiesListCmd())
	cmd.AddCommand(newStrategiesAdjustCmd())
	return cmd
}

func newStrategiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"stats"},
		Short:   "List all strategy versions with their statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			versions, err := app.Store.AllStrategyVersions()
			if err != nil {
				return err
			}
			return printJSON(versions)
		},
	}
}

func newStrategiesAdjustCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Recompute statistics and shift weights toward winning versions",
		Long: `Recompute per-version success rates from article outcomes and, where
one version clearly outperforms another, move selection weight from the
worst to the best. Weights stay within their bounds and versions with
small samples are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			return printJSON(app.Service.AdjustStrategies(threshold))
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", feedback.SpreadThreshold,
		"success-rate spread (percentage points) required before weights move")
	return cmd
}
