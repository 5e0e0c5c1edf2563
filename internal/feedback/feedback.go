// Package feedback closes the content loop: it records post-publication
// signals, recomputes per-strategy statistics from real article outcomes,
// and shifts selection weight toward the prompt versions whose articles
// survive editing.
package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"localpress/internal/core"
	"localpress/internal/logger"
	"localpress/internal/store"
)

const (
	// EditDistanceCutoff is the editing threshold below which a published
	// article counts as a success for its strategy.
	EditDistanceCutoff = 30.0
	// MinUsesForAdjustment is the sample floor before weight adjustment
	// considers a version's success rate trustworthy.
	MinUsesForAdjustment = 10
	// SpreadThreshold is the success-rate gap (percentage points) between
	// best and worst version that triggers a weight shift.
	SpreadThreshold = 10.0
	// WeightDelta is how much weight one adjustment moves.
	WeightDelta = 20

	lowQualityFloor = 70.0
	highEditingCeil = 40.0
)

// Store is the persistence surface the learner needs.
type Store interface {
	InsertFeedbackEvent(event core.FeedbackEvent) error
	UpdateArticleOutcome(id string, userRating, editDistance float64) error
	GetArticle(id string) (*core.Article, error)
	FindArticles(filter store.ArticleFilter) ([]core.Article, error)
	FindFeedbackEvents(filter store.FeedbackFilter) ([]core.FeedbackEvent, error)
	AggregateStrategyUsage(editDistanceCutoff float64) ([]store.StrategyUsage, error)
	AllStrategyVersions() ([]core.StrategyVersion, error)
	UpdateStrategyStats(id string, totalUses int, successRate, avgQuality, avgEditDistance float64) error
	UpdateStrategyWeight(id string, delta int) (int, error)
}

// Learner records signals and adjusts strategy weights.
type Learner struct {
	store Store
	now   func() time.Time
}

// NewLearner creates a learner.
func NewLearner(st Store) *Learner {
	return &Learner{store: st, now: time.Now}
}

// Record appends one feedback event. Only validation failures reach the
// caller; once the event is accepted, storage trouble on either write is
// logged and the editorial tooling reporting the signal moves on.
func (l *Learner) Record(event core.FeedbackEvent) (*core.FeedbackEvent, error) {
	if event.ArticleID == "" {
		return nil, fmt.Errorf("feedback event requires an article id")
	}
	if _, err := l.store.GetArticle(event.ArticleID); err != nil {
		return nil, fmt.Errorf("unknown article %s: %w", event.ArticleID, err)
	}

	event.ID = uuid.NewString()
	event.RecordedAt = l.now().UTC()
	if err := l.store.InsertFeedbackEvent(event); err != nil {
		logger.Error("failed to record feedback event", err, "article", event.ArticleID)
	}

	switch event.Type {
	case core.FeedbackEditDistance:
		if err := l.mirrorOutcome(event.ArticleID, -1, event.MetricValue); err != nil {
			logger.Warn("failed to mirror edit distance onto article", "article", event.ArticleID, "error", err.Error())
		}
	case core.FeedbackUserRating:
		if err := l.mirrorOutcome(event.ArticleID, event.MetricValue, -1); err != nil {
			logger.Warn("failed to mirror rating onto article", "article", event.ArticleID, "error", err.Error())
		}
	}

	return &event, nil
}

// mirrorOutcome updates only the outcome field the event carries; -1
// means keep the stored value.
func (l *Learner) mirrorOutcome(articleID string, userRating, editDistance float64) error {
	article, err := l.store.GetArticle(articleID)
	if err != nil {
		return err
	}
	if userRating < 0 {
		userRating = article.UserRating
	}
	if editDistance < 0 {
		editDistance = article.EditDistance
	}
	return l.store.UpdateArticleOutcome(articleID, userRating, editDistance)
}

// RefreshStrategyStats recomputes every version's usage statistics from
// the articles table. Versions with no articles keep their stored zeros.
func (l *Learner) RefreshStrategyStats() error {
	usage, err := l.store.AggregateStrategyUsage(EditDistanceCutoff)
	if err != nil {
		return err
	}

	versions, err := l.store.AllStrategyVersions()
	if err != nil {
		return err
	}
	byKeyVersion := make(map[string]string, len(versions))
	for _, version := range versions {
		byKeyVersion[fmt.Sprintf("%s/%d", version.StrategyKey, version.Version)] = version.ID
	}

	for _, u := range usage {
		id, ok := byKeyVersion[fmt.Sprintf("%s/%d", u.StrategyKey, u.Version)]
		if !ok {
			logger.Warn("articles reference unknown strategy version",
				"strategy", u.StrategyKey, "version", u.Version)
			continue
		}

		successRate := 0.0
		if u.TotalUses > 0 {
			successRate = float64(u.SuccessCount) / float64(u.TotalUses) * 100
		}
		if err := l.store.UpdateStrategyStats(id, u.TotalUses, successRate, u.AvgQuality, u.AvgEditDistance); err != nil {
			return fmt.Errorf("failed to update stats for %s v%d: %w", u.StrategyKey, u.Version, err)
		}
	}
	return nil
}

// Adjustment is one weight change made by AutoAdjustWeights.
type Adjustment struct {
	StrategyKey string
	Version     int
	Delta       int
	NewWeight   int
	Reason      string
}

// AutoAdjustWeights compares active versions within each strategy key and
// moves weight from the worst performer to the best. A key is only
// adjusted when it has at least two active versions, every version has a
// trustworthy sample, and the success-rate spread is at least threshold
// percentage points. A threshold of zero or less means SpreadThreshold.
func (l *Learner) AutoAdjustWeights(threshold float64) ([]Adjustment, error) {
	if threshold <= 0 {
		threshold = SpreadThreshold
	}
	if err := l.RefreshStrategyStats(); err != nil {
		return nil, fmt.Errorf("failed to refresh stats before adjustment: %w", err)
	}

	versions, err := l.store.AllStrategyVersions()
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]core.StrategyVersion)
	for _, version := range versions {
		if version.IsActive {
			byKey[version.StrategyKey] = append(byKey[version.StrategyKey], version)
		}
	}

	var adjustments []Adjustment
	for key, group := range byKey {
		if len(group) < 2 {
			continue
		}

		ready := true
		for _, version := range group {
			if version.TotalUses < MinUsesForAdjustment {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}

		// Stats were just refreshed; re-read so the decision uses them.
		best, worst := group[0], group[0]
		for _, version := range group[1:] {
			if version.SuccessRate > best.SuccessRate {
				best = version
			}
			if version.SuccessRate < worst.SuccessRate {
				worst = version
			}
		}

		spread := best.SuccessRate - worst.SuccessRate
		if spread < threshold {
			continue
		}

		bestWeight, err := l.store.UpdateStrategyWeight(best.ID, WeightDelta)
		if err != nil {
			return adjustments, fmt.Errorf("failed to promote %s v%d: %w", key, best.Version, err)
		}
		adjustments = append(adjustments, Adjustment{
			StrategyKey: key,
			Version:     best.Version,
			Delta:       WeightDelta,
			NewWeight:   bestWeight,
			Reason:      fmt.Sprintf("best success rate %.1f%% (spread %.1f)", best.SuccessRate, spread),
		})

		worstWeight, err := l.store.UpdateStrategyWeight(worst.ID, -WeightDelta)
		if err != nil {
			return adjustments, fmt.Errorf("failed to demote %s v%d: %w", key, worst.Version, err)
		}
		adjustments = append(adjustments, Adjustment{
			StrategyKey: key,
			Version:     worst.Version,
			Delta:       -WeightDelta,
			NewWeight:   worstWeight,
			Reason:      fmt.Sprintf("worst success rate %.1f%% (spread %.1f)", worst.SuccessRate, spread),
		})

		logger.Info("adjusted strategy weights",
			"strategy", key,
			"promoted", best.Version,
			"demoted", worst.Version,
			"spread", spread)
	}

	return adjustments, nil
}

// WeekBucket aggregates article quality for one ISO calendar week.
type WeekBucket struct {
	Year     int     `json:"year"`
	Week     int     `json:"week"`
	Articles int     `json:"articles"`
	AvgSEO   float64 `json:"avg_seo_score"`
	AvgGEO   float64 `json:"avg_geo_score"`
}

// Insights summarizes content performance over a reporting period.
type Insights struct {
	Period          string       `json:"period"`
	TotalArticles   int          `json:"total_articles"`
	PublishedCount  int          `json:"published_count"`
	AvgSEOScore     float64      `json:"avg_seo_score"`
	AvgEditDistance float64      `json:"avg_edit_distance"`
	FeedbackEvents  int          `json:"feedback_events"`
	Weekly          []WeekBucket `json:"weekly"`
	Warnings        []string     `json:"warnings"`
}

// InsightsReport summarizes articles generated within the period, bucketed
// by calendar week, with warnings on systemic quality or editing problems.
func (l *Learner) InsightsReport(period time.Duration) (*Insights, error) {
	since := l.now().Add(-period)

	articles, err := l.store.FindArticles(store.ArticleFilter{GeneratedSince: since})
	if err != nil {
		return nil, fmt.Errorf("failed to load articles for insights: %w", err)
	}
	events, err := l.store.FindFeedbackEvents(store.FeedbackFilter{RecordedSince: since})
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for insights: %w", err)
	}

	insights := &Insights{
		Period:         period.String(),
		TotalArticles:  len(articles),
		FeedbackEvents: len(events),
	}

	type bucketAgg struct {
		bucket WeekBucket
		seoSum float64
		geoSum float64
	}
	buckets := make(map[string]*bucketAgg)
	var bucketOrder []string

	var seoSum, editSum float64
	editSamples := 0
	for _, article := range articles {
		seoSum += article.SEOScore
		if article.EditDistance > 0 {
			editSum += article.EditDistance
			editSamples++
		}
		if article.Status == core.ArticlePublished {
			insights.PublishedCount++
		}

		year, week := article.GeneratedAt.ISOWeek()
		key := fmt.Sprintf("%d-%02d", year, week)
		agg, ok := buckets[key]
		if !ok {
			agg = &bucketAgg{bucket: WeekBucket{Year: year, Week: week}}
			buckets[key] = agg
			bucketOrder = append(bucketOrder, key)
		}
		agg.bucket.Articles++
		agg.seoSum += article.SEOScore
		agg.geoSum += article.GEOScore
	}

	if len(articles) > 0 {
		insights.AvgSEOScore = seoSum / float64(len(articles))
	}
	if editSamples > 0 {
		insights.AvgEditDistance = editSum / float64(editSamples)
	}

	// FindArticles returns newest first; reverse so weeks read forward.
	for i := len(bucketOrder) - 1; i >= 0; i-- {
		agg := buckets[bucketOrder[i]]
		agg.bucket.AvgSEO = agg.seoSum / float64(agg.bucket.Articles)
		agg.bucket.AvgGEO = agg.geoSum / float64(agg.bucket.Articles)
		insights.Weekly = append(insights.Weekly, agg.bucket)
	}

	if len(articles) > 0 && insights.AvgSEOScore < lowQualityFloor {
		insights.Warnings = append(insights.Warnings,
			fmt.Sprintf("average quality score %.1f is below %.0f", insights.AvgSEOScore, lowQualityFloor))
	}
	if editSamples > 0 && insights.AvgEditDistance > highEditingCeil {
		insights.Warnings = append(insights.Warnings,
			fmt.Sprintf("average edit distance %.1f exceeds %.0f; prompts may need rework", insights.AvgEditDistance, highEditingCeil))
	}

	return insights, nil
}
