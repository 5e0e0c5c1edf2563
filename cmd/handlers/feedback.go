package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"localpress/internal/core"
)

var feedbackTypes = map[string]core.FeedbackType{
	"edit_distance":      core.FeedbackEditDistance,
	"user_rating":        core.FeedbackUserRating,
	"engagement":         core.FeedbackEngagement,
	"search_performance": core.FeedbackSearchPerformance,
}

// NewFeedbackCmd creates the feedback command group.
func NewFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record and inspect article outcome signals",
	}

	cmd.AddCommand(newFeedbackRecordCmd())
	return cmd
}

func newFeedbackRecordCmd() *cobra.Command {
	var (
		articleID  string
		eventType  string
		metricName string
		value      float64
		metadata   string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one feedback event against an article",
		Long: `Append an outcome signal. Edit-distance and rating events are also
mirrored onto the article so the strategy learner sees them.

Examples:
  localpress feedback record --article <id> --type edit_distance --value 12.5
  localpress feedback record --article <id> --type user_rating --value 4
  localpress feedback record --article <id> --type engagement --metric page_views --value 1800`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := feedbackTypes[eventType]
			if !ok {
				return fmt.Errorf("unknown feedback type %q", eventType)
			}

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			envelope := app.Service.RecordFeedback(core.FeedbackEvent{
				ArticleID:   articleID,
				Type:        kind,
				MetricName:  metricName,
				MetricValue: value,
				Metadata:    metadata,
			})
			return printJSON(envelope)
		},
	}

	cmd.Flags().StringVar(&articleID, "article", "", "article ID (required)")
	cmd.Flags().StringVar(&eventType, "type", "", "event type: edit_distance, user_rating, engagement, search_performance")
	cmd.Flags().StringVar(&metricName, "metric", "", "metric name, e.g. page_views")
	cmd.Flags().Float64Var(&value, "value", 0, "metric value")
	cmd.Flags().StringVar(&metadata, "metadata", "", "optional JSON metadata")
	_ = cmd.MarkFlagRequired("article")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
