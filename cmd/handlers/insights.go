package handlers

import (
	"time"

	"github.com/spf13/cobra"
)

// NewInsightsCmd creates the performance report command.
func NewInsightsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize recent content performance",
		Long: `Report article volume, quality averages and weekly trends for the
reporting period, with warnings when quality or editing metrics drift.

Examples:
  localpress insights
  localpress insights --days 90`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			return printJSON(app.Service.Insights(time.Duration(days) * 24 * time.Hour))
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "reporting period in days")
	return cmd
}
