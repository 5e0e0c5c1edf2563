package core

import (
	"regexp"
	"strings"
	"time"
)

// TopicStatus tracks a topic through its lifecycle. Transitions move forward
// only, except Archived which is reachable from any non-terminal state.
type TopicStatus string

const (
	TopicPending   TopicStatus = "pending"
	TopicSelected  TopicStatus = "selected"
	TopicGenerated TopicStatus = "generated"
	TopicPublished TopicStatus = "published"
	TopicArchived  TopicStatus = "archived"
)

// ArticleStatus tracks a generated article through review and publication.
type ArticleStatus string

const (
	ArticleDraft         ArticleStatus = "draft"
	ArticlePendingReview ArticleStatus = "pending_review"
	ArticlePublished     ArticleStatus = "published"
	ArticleArchived      ArticleStatus = "archived"
)

// FeedbackType identifies the kind of post-publication signal recorded
// against an article.
type FeedbackType string

const (
	FeedbackEditDistance      FeedbackType = "edit_distance"
	FeedbackUserRating        FeedbackType = "user_rating"
	FeedbackEngagement        FeedbackType = "engagement"
	FeedbackSearchPerformance FeedbackType = "search_performance"
)

// ImageSource identifies where an image descriptor came from.
type ImageSource string

const (
	ImageSourcePlatform ImageSource = "platform"
	ImageSourcePexels   ImageSource = "pexels"
	ImageSourceUnsplash ImageSource = "unsplash"
)

// Topic is a candidate subject for a generated article, with a composite
// desirability score.
type Topic struct {
	ID               string      `json:"id"`                // Unique identifier for the topic
	Title            string      `json:"title"`             // Human-readable topic title
	Slug             string      `json:"slug"`              // Globally unique slug derived from the title
	Description      string      `json:"description"`       // Short description of the topic angle
	Keywords         []string    `json:"keywords"`          // Target keywords for the topic
	RelatedLocations []string    `json:"related_locations"` // Neighborhoods/areas the topic covers
	RelevanceScore   float64     `json:"relevance_score"`   // Local-relevance sub-score (0-100)
	RecencyScore     float64     `json:"recency_score"`     // Timeliness sub-score (0-100)
	AuthorityScore   float64     `json:"authority_score"`   // Data/evidence sub-score (0-100)
	UniquenessScore  float64     `json:"uniqueness_score"`  // Novelty sub-score (0-100)
	TotalScore       float64     `json:"total_score"`       // Weighted combination of the four sub-scores
	Source           string      `json:"source"`            // Which discovery source produced the topic
	Status           TopicStatus `json:"status"`            // Lifecycle status
	MarketStats      string      `json:"market_stats"`      // Optional JSON payload of market statistics
	ResearchedAt     time.Time   `json:"researched_at"`     // When the topic was discovered
	ExpiresAt        time.Time   `json:"expires_at"`        // When the topic goes stale
}

// Article is a generated piece of content, owned by the pipeline during
// generation and handed to the publishing sink afterwards.
type Article struct {
	ID              string        `json:"id"`               // Unique identifier for the article
	TopicID         string        `json:"topic_id"`         // Back-reference to the source topic (may be empty)
	Title           string        `json:"title"`            // Article title
	Slug            string        `json:"slug"`             // Globally unique slug
	Content         string        `json:"content"`          // Full article body (HTML)
	MetaDescription string        `json:"meta_description"` // Search-result description
	SEOScore        float64       `json:"seo_score"`        // Composite SEO quality score (0-100)
	GEOScore        float64       `json:"geo_score"`        // Composite local-relevance score (0-100)
	WordCount       int           `json:"word_count"`       // Body word count
	CTAType         string        `json:"cta_type"`         // Selected call-to-action type
	CTAPosition     string        `json:"cta_position"`     // Where the CTA was inserted
	StrategyKey     string        `json:"strategy_key"`     // Generation strategy family
	StrategyVersion int           `json:"strategy_version"` // Strategy version used for generation
	Status          ArticleStatus `json:"status"`           // Lifecycle status
	FeaturedImage   string        `json:"featured_image"`   // URL of the featured image (may be empty)
	GeneratedAt     time.Time     `json:"generated_at"`     // When generation finished
	PublishedAt     time.Time     `json:"published_at"`     // When the article was published (zero if not)
	UserRating      float64       `json:"user_rating"`      // Editor/user rating, written by feedback consumers
	EditDistance    float64       `json:"edit_distance"`    // Percent of content changed by editors
}

// FeedbackEvent is an append-only outcome signal recorded against an article.
type FeedbackEvent struct {
	ID          string       `json:"id"`           // Unique identifier for the event
	ArticleID   string       `json:"article_id"`   // Article the signal belongs to
	Type        FeedbackType `json:"type"`         // Signal category
	MetricName  string       `json:"metric_name"`  // Specific metric (e.g. "page_views")
	MetricValue float64      `json:"metric_value"` // Observed value
	Metadata    string       `json:"metadata"`     // Optional JSON metadata
	RecordedAt  time.Time    `json:"recorded_at"`  // When the event was recorded
}

// StrategyVersion is one competing generation configuration for a logical
// task. Multiple versions share a StrategyKey; selection among active
// versions is weight-proportional. Weight is mutated only by the feedback
// learner's adjustment routine, bounded to [10, 200].
type StrategyVersion struct {
	ID              string    `json:"id"`                // Unique identifier for the record
	StrategyKey     string    `json:"strategy_key"`      // Logical task this version competes for
	Version         int       `json:"version"`           // Version number within the key
	Content         string    `json:"content"`           // Prompt template content
	Weight          int       `json:"weight"`            // Selection probability mass (10-200)
	IsActive        bool      `json:"is_active"`         // Whether the version participates in selection
	TotalUses       int       `json:"total_uses"`        // Articles generated with this version
	SuccessRate     float64   `json:"success_rate"`      // Published-with-low-edits rate (0-100)
	AvgQualityScore float64   `json:"avg_quality_score"` // Mean SEO score of its articles
	AvgEditDistance float64   `json:"avg_edit_distance"` // Mean editor edit distance of its articles
	CreatedAt       time.Time `json:"created_at"`        // When the version was created
}

// CTATemplate is a static call-to-action configuration, matched against
// topic text by the CTA selector. Not persisted.
type CTATemplate struct {
	Type        string   `yaml:"type" json:"type"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	ButtonText  string   `yaml:"button_text" json:"button_text"`
	ButtonURL   string   `yaml:"button_url" json:"button_url"`
	Icon        string   `yaml:"icon" json:"icon"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	TopicTags   []string `yaml:"topic_tags" json:"topic_tags"`
}

// ImageDescriptor is an ephemeral reference to a resolved image. Not
// persisted independently of the article that uses it.
type ImageDescriptor struct {
	Source      ImageSource `json:"source"`
	URL         string      `json:"url"`
	AltText     string      `json:"alt_text"`
	Caption     string      `json:"caption"`
	Attribution string      `json:"attribution,omitempty"`
}

var (
	slugStripPattern    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapsePattern = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a URL-safe slug from a title. The same title always yields
// the same slug, which is what makes topic persistence idempotent.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
