package handlers

import (
	"github.com/spf13/cobra"
)

// NewPublishCmd creates the draft publication command.
func NewPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <article-id>",
		Short: "Push a generated draft live on the site",
		Long: `Upload the article to the publishing endpoint and flip the resulting
post to published. The article and its topic advance to published, which
is what feeds the strategy success statistics.

Examples:
  localpress publish <article-id>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			return printJSON(app.Service.Publish(cmd.Context(), args[0]))
		},
	}
}
