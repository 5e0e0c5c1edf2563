package pipeline

import (
	"context"

	"localpress/internal/analyzer"
	"localpress/internal/core"
	"localpress/internal/cta"
	"localpress/internal/images"
	"localpress/internal/llm"
	"localpress/internal/publish"
	"localpress/internal/seo"
	"localpress/internal/store"
)

// Store is the persistence surface generation needs.
type Store interface {
	// GetTopic retrieves the topic to write about
	GetTopic(id string) (*core.Topic, error)

	// UpdateTopicStatus moves the topic through its forward-only lifecycle
	UpdateTopicStatus(id string, from, to core.TopicStatus) error

	// InsertArticle persists the finished article; duplicate slugs are a
	// hard error
	InsertArticle(article core.Article) error

	// FindArticles is used for slug collision lookups and reporting
	FindArticles(filter store.ArticleFilter) ([]core.Article, error)

	// GetArticle retrieves the article to publish
	GetArticle(id string) (*core.Article, error)

	// UpdateArticleStatus advances the article lifecycle, stamping
	// published_at when it reaches published
	UpdateArticleStatus(id string, status core.ArticleStatus) error
}

// StrategySelector picks the prompt version for a generation run.
type StrategySelector interface {
	// Select returns a value copy of one active version for the key
	Select(key string) (core.StrategyVersion, error)
}

// Generator produces text from a prompt.
type Generator interface {
	// Generate sends the prompt to the model and returns the raw response
	Generate(ctx context.Context, prompt, contextText string, opts llm.Options) (string, error)
}

// QualityAnalyzer scores generated content.
type QualityAnalyzer interface {
	// Analyze extracts signals and produces composite scores
	Analyze(input analyzer.Input) *seo.Report
}

// ContentOptimizer applies mechanical content fixes.
type ContentOptimizer interface {
	// Optimize synthesizes missing alt text and hardens external links
	Optimize(content, title string) (string, error)
}

// ImageResolver finds featured and in-content images.
type ImageResolver interface {
	// Resolve walks the provider chain; empty results are acceptable
	Resolve(ctx context.Context, opts images.ResolveOptions) images.Result
}

// CTASelector picks and renders the call-to-action block.
type CTASelector interface {
	// Select scores templates against the topic
	Select(topic cta.Topic) core.CTATemplate

	// Render produces the HTML block
	Render(template core.CTATemplate) string
}

// Publisher sends finished articles to the site.
type Publisher interface {
	// CreateDraft uploads the article as an unpublished draft
	CreateDraft(ctx context.Context, article *core.Article) (*publish.Post, error)

	// Publish flips an already-uploaded post live by its remote ID
	Publish(ctx context.Context, postID int) (*publish.Post, error)
}
