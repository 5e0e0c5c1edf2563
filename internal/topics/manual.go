package topics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"localpress/internal/core"
	"localpress/internal/store"
)

// SourceManual tags topics entered by an operator instead of a discovery
// source.
const SourceManual = "manual"

// Manual topics skip scoring; the operator already decided they are worth
// writing, so they get a flat baseline that clears the discovery filter.
const manualBaseline = 80.0

// ManualStore is the persistence slice manual topic entry needs.
type ManualStore interface {
	InsertTopic(topic core.Topic) error
	GetTopicBySlug(slug string) (*core.Topic, error)
}

// CreateManualTopic coerces a caller-supplied title into a persisted
// pending topic. Idempotent on slug: entering the same title twice returns
// the already-stored topic unchanged.
func CreateManualTopic(st ManualStore, title, description string, keywords []string, now time.Time) (*core.Topic, error) {
	title = strings.TrimSpace(title)
	slug := core.Slugify(title)
	if slug == "" {
		return nil, fmt.Errorf("topic title %q produces an empty slug", title)
	}

	existing, err := st.GetTopicBySlug(slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up topic %q: %w", slug, err)
	}

	now = now.UTC()
	topic := core.Topic{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            slug,
		Description:     strings.TrimSpace(description),
		Keywords:        keywords,
		RelevanceScore:  manualBaseline,
		RecencyScore:    manualBaseline,
		AuthorityScore:  manualBaseline,
		UniquenessScore: manualBaseline,
		TotalScore:      manualBaseline,
		Source:          SourceManual,
		Status:          core.TopicPending,
		ResearchedAt:    now,
		ExpiresAt:       now.Add(TopicTTL),
	}
	if err := st.InsertTopic(topic); err != nil {
		// Lost a race with a concurrent insert; the stored topic wins.
		if errors.Is(err, store.ErrDuplicateSlug) {
			return st.GetTopicBySlug(slug)
		}
		return nil, fmt.Errorf("failed to persist topic %q: %w", slug, err)
	}
	return &topic, nil
}
