package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"localpress/internal/pipeline"
	"localpress/internal/store"
	"localpress/internal/topics"
)

// NewGenerateCmd creates the article generation command.
func NewGenerateCmd() *cobra.Command {
	var (
		title         string
		description   string
		keywords      []string
		ctaType       string
		contentImages int
		sendDraft     bool
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "generate [topic-id-or-slug]",
		Short: "Generate an article for a discovered or custom topic",
		Long: `Run the full generation pipeline for one topic: strategy
selection, LLM generation, quality analysis, optimization, images and
CTA placement. The finished article is persisted as a draft.

A custom topic can be supplied with --title instead of a discovered
topic's id or slug; it is stored as a pending topic first, so repeating
the same title reuses it.

Examples:
  localpress generate austin-housing-market-report-august-2026
  localpress generate <topic-id> --send-draft
  localpress generate --title "Why Buy in Cedar Park Now" --keywords "cedar park,buying"
  localpress generate <topic-id> --cta valuation --images 3 --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Store.Close() }()

			var topicID string
			switch {
			case len(args) == 1:
				topicID, err = resolveTopicID(app.Store, args[0])
				if err != nil {
					return err
				}
			case title != "":
				topic, err := topics.CreateManualTopic(app.Store, title, description, keywords, time.Now())
				if err != nil {
					return err
				}
				topicID = topic.ID
			default:
				return fmt.Errorf("provide a topic id or slug, or --title for a custom topic")
			}

			envelope := app.Service.Generate(cmd.Context(), topicID, pipeline.Options{
				PreferredCTA:  ctaType,
				ContentImages: contentImages,
				SendDraft:     sendDraft,
				DryRun:        dryRun,
			})
			return printJSON(envelope)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "custom topic title (instead of a topic id/slug)")
	cmd.Flags().StringVar(&description, "description", "", "custom topic description")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "custom topic keywords")
	cmd.Flags().StringVar(&ctaType, "cta", "", "force a CTA type (search, schools, contact, valuation)")
	cmd.Flags().IntVar(&contentImages, "images", 0, "in-content images to resolve (0 = default)")
	cmd.Flags().BoolVar(&sendDraft, "send-draft", false, "upload the result to the publishing sink")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without persisting or uploading")

	return cmd
}

// resolveTopicID accepts either a topic ID or its slug.
func resolveTopicID(st *store.Store, idOrSlug string) (string, error) {
	if _, err := st.GetTopic(idOrSlug); err == nil {
		return idOrSlug, nil
	}
	topic, err := st.GetTopicBySlug(idOrSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("no topic with id or slug %q", idOrSlug)
		}
		return "", err
	}
	return topic.ID, nil
}
