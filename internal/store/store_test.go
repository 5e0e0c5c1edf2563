package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"localpress/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTopic(title string) core.Topic {
	now := time.Now().UTC()
	return core.Topic{
		ID:               uuid.NewString(),
		Title:            title,
		Slug:             core.Slugify(title),
		Description:      "test topic",
		Keywords:         []string{"housing", "market"},
		RelatedLocations: []string{"Mueller"},
		RelevanceScore:   70,
		RecencyScore:     60,
		AuthorityScore:   55,
		UniquenessScore:  80,
		TotalScore:       66.5,
		Source:           "market_data",
		Status:           core.TopicPending,
		ResearchedAt:     now,
		ExpiresAt:        now.Add(30 * 24 * time.Hour),
	}
}

func TestInsertTopic_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)

	topic := testTopic("Austin Market Outlook")
	if err := s.InsertTopic(topic); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dup := testTopic("Austin Market Outlook")
	err := s.InsertTopic(dup)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestGetTopic_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	topic := testTopic("Neighborhood Guide to Mueller")
	if err := s.InsertTopic(topic); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := s.GetTopic(topic.ID)
	if err != nil {
		t.Fatalf("GetTopic failed: %v", err)
	}
	if got.Title != topic.Title || got.Slug != topic.Slug {
		t.Errorf("round trip mismatch: got %q/%q", got.Title, got.Slug)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "housing" {
		t.Errorf("keywords not preserved: %v", got.Keywords)
	}
	if got.Status != core.TopicPending {
		t.Errorf("status not preserved: %v", got.Status)
	}
}

func TestGetTopic_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTopic("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindTopics_Filters(t *testing.T) {
	s := newTestStore(t)

	high := testTopic("High Scoring Topic")
	high.TotalScore = 90
	low := testTopic("Low Scoring Topic")
	low.TotalScore = 30

	for _, topic := range []core.Topic{high, low} {
		if err := s.InsertTopic(topic); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	topics, err := s.FindTopics(TopicFilter{MinScore: 50, Statuses: []core.TopicStatus{core.TopicPending}})
	if err != nil {
		t.Fatalf("FindTopics failed: %v", err)
	}
	if len(topics) != 1 || topics[0].Title != "High Scoring Topic" {
		t.Errorf("expected only the high scoring topic, got %d results", len(topics))
	}
}

func TestUpdateTopicStatus_ForwardOnly(t *testing.T) {
	s := newTestStore(t)

	topic := testTopic("Status Transitions")
	if err := s.InsertTopic(topic); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := s.UpdateTopicStatus(topic.ID, core.TopicPending, core.TopicSelected); err != nil {
		t.Fatalf("pending -> selected should succeed: %v", err)
	}

	// Backwards transition is rejected before touching the database.
	if err := s.UpdateTopicStatus(topic.ID, core.TopicSelected, core.TopicPending); err == nil {
		t.Error("selected -> pending should be rejected")
	}

	// Archived is reachable from any non-terminal state.
	if err := s.UpdateTopicStatus(topic.ID, core.TopicSelected, core.TopicArchived); err != nil {
		t.Errorf("selected -> archived should succeed: %v", err)
	}
}

func TestUpdateTopicStatus_ConditionalOnCurrentStatus(t *testing.T) {
	s := newTestStore(t)

	topic := testTopic("Race Guard")
	if err := s.InsertTopic(topic); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := s.UpdateTopicStatus(topic.ID, core.TopicPending, core.TopicSelected); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	// A second run claiming the same transition loses.
	if err := s.UpdateTopicStatus(topic.ID, core.TopicPending, core.TopicSelected); err == nil {
		t.Error("second claim of the same transition should fail")
	}
}

func TestSweepExpiredTopics(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	expired := testTopic("Expired Topic")
	expired.ExpiresAt = now.Add(-48 * time.Hour)
	fresh := testTopic("Fresh Topic")
	fresh.ExpiresAt = now.Add(48 * time.Hour)

	for _, topic := range []core.Topic{expired, fresh} {
		if err := s.InsertTopic(topic); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	archived, deleted, err := s.SweepExpiredTopics(now, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if archived != 1 || deleted != 0 {
		t.Errorf("expected 1 archived, 0 deleted; got %d/%d", archived, deleted)
	}

	// Sweeping again does nothing: idempotent.
	archived, deleted, err = s.SweepExpiredTopics(now, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if archived != 0 || deleted != 0 {
		t.Errorf("second sweep should be a no-op, got %d/%d", archived, deleted)
	}

	// Past the retention window the archived topic is deleted.
	_, deleted, err = s.SweepExpiredTopics(now.Add(91*24*time.Hour), 90*24*time.Hour)
	if err != nil {
		t.Fatalf("retention sweep failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deletion after retention window, got %d", deleted)
	}
}

func testArticle(title, strategyKey string, version int) core.Article {
	return core.Article{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            core.Slugify(title),
		Content:         "<p>body</p>",
		Status:          core.ArticleDraft,
		StrategyKey:     strategyKey,
		StrategyVersion: version,
		SEOScore:        75,
		GeneratedAt:     time.Now().UTC(),
	}
}

func TestInsertArticle_DuplicateSlugIsHardError(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertArticle(testArticle("Same Title", "blog_post", 1)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := s.InsertArticle(testArticle("Same Title", "blog_post", 1))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestUpdateArticleOutcome(t *testing.T) {
	s := newTestStore(t)

	article := testArticle("Outcome Article", "blog_post", 1)
	if err := s.InsertArticle(article); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.UpdateArticleOutcome(article.ID, 4.5, 12.0); err != nil {
		t.Fatalf("UpdateArticleOutcome failed: %v", err)
	}

	got, err := s.GetArticle(article.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if got.UserRating != 4.5 || got.EditDistance != 12.0 {
		t.Errorf("outcome not persisted: rating=%.1f edit=%.1f", got.UserRating, got.EditDistance)
	}
}

func TestFeedbackEvents_AppendAndFilter(t *testing.T) {
	s := newTestStore(t)

	articleID := uuid.NewString()
	for i, eventType := range []core.FeedbackType{core.FeedbackUserRating, core.FeedbackEngagement} {
		event := core.FeedbackEvent{
			ID:          uuid.NewString(),
			ArticleID:   articleID,
			Type:        eventType,
			MetricName:  "metric",
			MetricValue: float64(i),
			RecordedAt:  time.Now().UTC(),
		}
		if err := s.InsertFeedbackEvent(event); err != nil {
			t.Fatalf("insert event failed: %v", err)
		}
	}

	events, err := s.FindFeedbackEvents(FeedbackFilter{ArticleID: articleID, Type: core.FeedbackUserRating})
	if err != nil {
		t.Fatalf("FindFeedbackEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Type != core.FeedbackUserRating {
		t.Errorf("expected exactly the rating event, got %d events", len(events))
	}
}

func testStrategy(key string, version, weight int) core.StrategyVersion {
	return core.StrategyVersion{
		ID:          uuid.NewString(),
		StrategyKey: key,
		Version:     version,
		Content:     "Write an article about {{topic}}",
		Weight:      weight,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestUpdateStrategyWeight_Clamped(t *testing.T) {
	s := newTestStore(t)

	sv := testStrategy("blog_post", 1, 190)
	if err := s.InsertStrategyVersion(sv); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	weight, err := s.UpdateStrategyWeight(sv.ID, +20)
	if err != nil {
		t.Fatalf("weight update failed: %v", err)
	}
	if weight != MaxStrategyWeight {
		t.Errorf("weight should clamp to %d, got %d", MaxStrategyWeight, weight)
	}

	weight, err = s.UpdateStrategyWeight(sv.ID, -500)
	if err != nil {
		t.Fatalf("weight update failed: %v", err)
	}
	if weight != MinStrategyWeight {
		t.Errorf("weight should clamp to %d, got %d", MinStrategyWeight, weight)
	}
}

func TestAggregateStrategyUsage(t *testing.T) {
	s := newTestStore(t)

	// Two published low-edit articles and one heavily edited draft for v1.
	a1 := testArticle("Usage One", "blog_post", 1)
	a1.Status = core.ArticlePublished
	a1.EditDistance = 10
	a2 := testArticle("Usage Two", "blog_post", 1)
	a2.Status = core.ArticlePublished
	a2.EditDistance = 20
	a3 := testArticle("Usage Three", "blog_post", 1)
	a3.EditDistance = 80

	for _, a := range []core.Article{a1, a2, a3} {
		if err := s.InsertArticle(a); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	usage, err := s.AggregateStrategyUsage(30)
	if err != nil {
		t.Fatalf("AggregateStrategyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("expected 1 usage row, got %d", len(usage))
	}
	row := usage[0]
	if row.TotalUses != 3 || row.SuccessCount != 2 {
		t.Errorf("expected 3 uses / 2 successes, got %d/%d", row.TotalUses, row.SuccessCount)
	}
}
