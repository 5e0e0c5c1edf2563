package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"localpress/cmd/handlers"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "localpress",
	Short: "LocalPress generates local real estate content end to end",
	Long: `LocalPress discovers article topics for a local real estate market,
generates drafts with an LLM, scores them for search and local relevance,
and learns which prompt strategies produce articles that survive editing.

Typical flow:
  localpress discover --count 5
  localpress generate <topic-slug>
  localpress publish <article-id>
  localpress feedback record --article <id> --type edit_distance --value 12
  localpress strategies adjust`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { handlers.SetConfigFile(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.localpress.yaml)")

	rootCmd.AddCommand(handlers.NewDiscoverCmd())
	rootCmd.AddCommand(handlers.NewGenerateCmd())
	rootCmd.AddCommand(handlers.NewPublishCmd())
	rootCmd.AddCommand(handlers.NewAnalyzeCmd())
	rootCmd.AddCommand(handlers.NewFeedbackCmd())
	rootCmd.AddCommand(handlers.NewStrategiesCmd())
	rootCmd.AddCommand(handlers.NewInsightsCmd())
	rootCmd.AddCommand(handlers.NewSweepCmd())
}
