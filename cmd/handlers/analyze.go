package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"localpress/internal/analyzer"
)

// NewAnalyzeCmd creates the standalone quality analysis command.
func NewAnalyzeCmd() *cobra.Command {
	var (
		filePath string
		title    string
		metaDesc string
		keyword  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score an HTML file for search and local relevance",
		Long: `Analyze existing content without generating anything. Reads the
HTML body from a file and reports SEO and GEO scores, per-criterion
findings and ranked recommendations.

Examples:
  localpress analyze --file draft.html --title "Mueller Guide" --keyword mueller`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			envelope := app.Service.Analyze(analyzer.Input{
				Title:           title,
				Content:         string(content),
				MetaDescription: metaDesc,
				PrimaryKeyword:  keyword,
			})
			return printJSON(envelope)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "HTML file to analyze (required)")
	cmd.Flags().StringVar(&title, "title", "", "article title")
	cmd.Flags().StringVar(&metaDesc, "meta", "", "meta description")
	cmd.Flags().StringVar(&keyword, "keyword", "", "primary keyword for density scoring")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
