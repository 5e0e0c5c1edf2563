package topics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"localpress/internal/core"
	"localpress/internal/logger"
	"localpress/internal/similarity"
	"localpress/internal/store"
)

const (
	// DedupThreshold is the title similarity above which two candidates
	// are considered the same topic.
	DedupThreshold = 70.0
	// DefaultMinScore filters out weak candidates unless overridden.
	DefaultMinScore = 50.0
	// DefaultCount is how many topics a discovery run returns by default.
	DefaultCount = 5
	// RecentWindow is how far back the exclude-recent filter looks.
	RecentWindow = 60 * 24 * time.Hour
	// TopicTTL is how long a discovered topic stays fresh before the
	// expiry sweep archives it.
	TopicTTL = 45 * 24 * time.Hour

	publishedSample   = 50
	recentTopicWindow = 30 * 24 * time.Hour
)

// ErrAllSourcesFailed is returned when every enabled source errors.
// Partial failure is tolerated; total failure is not silently empty.
var ErrAllSourcesFailed = errors.New("all topic sources failed")

// Source supplies raw topic candidates. Sources are independently
// toggleable; Weight orders the merge so that higher-weight sources win
// first-seen-wins deduplication.
type Source interface {
	Name() string
	Weight() float64
	Enabled() bool
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Store is the slice of persistence the discovery engine needs.
type Store interface {
	InsertTopic(topic core.Topic) error
	RecentTopicSlugs(statuses []core.TopicStatus, since time.Time) (map[string]bool, error)
	RecentTopicTitles(since time.Time) ([]string, error)
	PublishedTitles(limit int) ([]string, error)
}

// DiscoverOptions configures one discovery run.
type DiscoverOptions struct {
	Count         int     // maximum topics to return (default DefaultCount)
	ExcludeRecent bool    // drop topics already worked within RecentWindow
	MinScore      float64 // minimum total score (default DefaultMinScore)
}

// Engine merges, deduplicates, scores and persists topic candidates.
type Engine struct {
	sources []Source
	scorer  *Scorer
	store   Store
	now     func() time.Time
}

// NewEngine creates a discovery engine.
func NewEngine(sources []Source, scorer *Scorer, st Store) *Engine {
	return &Engine{sources: sources, scorer: scorer, store: st, now: time.Now}
}

// Discover runs the full discovery pass and returns persisted topics in
// rank order. Ties keep discovery order (the sort is stable).
func (e *Engine) Discover(ctx context.Context, opts DiscoverOptions) ([]core.Topic, error) {
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}

	candidates, err := e.collectCandidates(ctx)
	if err != nil {
		return nil, err
	}

	candidates = dedupeCandidates(candidates)

	history, err := e.loadHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring history: %w", err)
	}

	var excluded map[string]bool
	if opts.ExcludeRecent {
		excluded, err = e.store.RecentTopicSlugs(
			[]core.TopicStatus{core.TopicSelected, core.TopicGenerated, core.TopicPublished},
			e.now().Add(-RecentWindow),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent slugs: %w", err)
		}
	}

	topics := make([]core.Topic, 0, len(candidates))
	for _, candidate := range candidates {
		slug := core.Slugify(candidate.Title)
		if excluded != nil && excluded[slug] {
			logger.Debug("skipping recently covered topic", "slug", slug)
			continue
		}

		scores := e.scorer.Score(candidate, history)
		if scores.Total < opts.MinScore {
			continue
		}

		now := e.now().UTC()
		topics = append(topics, core.Topic{
			ID:               uuid.NewString(),
			Title:            candidate.Title,
			Slug:             slug,
			Description:      candidate.Description,
			Keywords:         candidate.Keywords,
			RelatedLocations: candidate.RelatedLocations,
			RelevanceScore:   scores.Relevance,
			RecencyScore:     scores.Recency,
			AuthorityScore:   scores.Authority,
			UniquenessScore:  scores.Uniqueness,
			TotalScore:       scores.Total,
			Source:           candidate.Source,
			Status:           core.TopicPending,
			MarketStats:      candidate.MarketStats,
			ResearchedAt:     now,
			ExpiresAt:        now.Add(TopicTTL),
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].TotalScore > topics[j].TotalScore
	})
	if len(topics) > opts.Count {
		topics = topics[:opts.Count]
	}

	// Idempotent persist: a topic whose slug already exists is kept in the
	// result but not re-inserted.
	for _, topic := range topics {
		if err := e.store.InsertTopic(topic); err != nil {
			if errors.Is(err, store.ErrDuplicateSlug) {
				logger.Debug("topic already persisted", "slug", topic.Slug)
				continue
			}
			return nil, fmt.Errorf("failed to persist topic %q: %w", topic.Slug, err)
		}
	}

	return topics, nil
}

// collectCandidates queries every enabled source, highest weight first.
// Individual source failures are recorded and tolerated; only total
// failure aborts the run.
func (e *Engine) collectCandidates(ctx context.Context) ([]Candidate, error) {
	enabled := make([]Source, 0, len(e.sources))
	for _, source := range e.sources {
		if source.Enabled() {
			enabled = append(enabled, source)
		}
	}
	if len(enabled) == 0 {
		return nil, ErrAllSourcesFailed
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Weight() > enabled[j].Weight()
	})

	var candidates []Candidate
	failures := 0
	for _, source := range enabled {
		batch, err := source.Fetch(ctx)
		if err != nil {
			failures++
			logger.Warn("topic source failed", "source", source.Name(), "error", err.Error())
			continue
		}
		for i := range batch {
			if batch[i].Source == "" {
				batch[i].Source = source.Name()
			}
		}
		candidates = append(candidates, batch...)
	}

	if failures == len(enabled) {
		return nil, ErrAllSourcesFailed
	}
	return candidates, nil
}

// dedupeCandidates removes near-duplicate titles pairwise. First seen wins,
// which combined with the weight-ordered merge favors authoritative
// sources. Symmetric and idempotent: running it twice yields the same set.
func dedupeCandidates(candidates []Candidate) []Candidate {
	var kept []Candidate
	for _, candidate := range candidates {
		duplicate := false
		for _, existing := range kept {
			if similarity.Similarity(candidate.Title, existing.Title) > DedupThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func (e *Engine) loadHistory() (History, error) {
	published, err := e.store.PublishedTitles(publishedSample)
	if err != nil {
		return History{}, err
	}
	recent, err := e.store.RecentTopicTitles(e.now().Add(-recentTopicWindow))
	if err != nil {
		return History{}, err
	}
	return History{PublishedTitles: published, RecentTopicTitles: recent}, nil
}
