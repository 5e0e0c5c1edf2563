package handlers

import (
	"time"

	"github.com/spf13/cobra"
)

// NewSweepCmd creates the topic expiry maintenance command.
func NewSweepCmd() *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Archive expired topics and purge old archives",
		Long: `Archive topics whose freshness window has passed, then delete
archived topics older than the retention period. Safe to run repeatedly;
a second sweep changes nothing.

Examples:
  localpress sweep
  localpress sweep --retention 180`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			archived, deleted, err := app.Store.SweepExpiredTopics(
				time.Now().UTC(),
				time.Duration(retentionDays)*24*time.Hour,
			)
			if err != nil {
				return err
			}
			return printJSON(map[string]int64{"archived": archived, "deleted": deleted})
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention", 90, "days archived topics are kept before deletion")
	return cmd
}
