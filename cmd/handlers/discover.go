package handlers

import (
	"github.com/spf13/cobra"

	"localpress/internal/topics"
)

// NewDiscoverCmd creates the topic discovery command.
func NewDiscoverCmd() *cobra.Command {
	var (
		count         int
		minScore      float64
		excludeRecent bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover and rank new article topics",
		Long: `Query the configured topic sources, deduplicate near-identical
candidates, score the survivors and persist the best ones as pending
topics.

Examples:
  localpress discover
  localpress discover --count 10 --min-score 60
  localpress discover --exclude-recent=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			envelope := app.Service.Discover(cmd.Context(), topics.DiscoverOptions{
				Count:         count,
				MinScore:      minScore,
				ExcludeRecent: excludeRecent,
			})
			return printJSON(envelope)
		},
	}

	cmd.Flags().IntVar(&count, "count", topics.DefaultCount, "maximum topics to return")
	cmd.Flags().Float64Var(&minScore, "min-score", topics.DefaultMinScore, "minimum total score")
	cmd.Flags().BoolVar(&excludeRecent, "exclude-recent", true, "skip topics covered recently")

	return cmd
}
