// Package pipeline orchestrates article generation end to end: topic
// lookup, strategy selection, LLM generation, quality analysis, content
// optimization, image resolution, CTA placement and persistence. Nothing
// is persisted until the whole run succeeds; a failure at any stage
// leaves the store with no partial article.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"localpress/internal/analyzer"
	"localpress/internal/core"
	"localpress/internal/cta"
	"localpress/internal/images"
	"localpress/internal/llm"
	"localpress/internal/logger"
	"localpress/internal/store"
	"localpress/internal/strategy"
)

// Generation stage names used in StageError.
const (
	StageTopic     = "topic"
	StageStrategy  = "strategy"
	StageGenerate  = "generate"
	StageValidate  = "validate"
	StageAnalyze   = "analyze"
	StageOptimize  = "optimize"
	StageImages    = "images"
	StageAssemble  = "assemble"
	StagePersist   = "persist"
	StagePublish   = "publish"
)

const defaultContentImages = 2

// StageError wraps a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// Options configures one generation run.
type Options struct {
	PreferredCTA  string // force a CTA type instead of scoring
	ContentImages int    // in-content images to resolve (default 2)
	SendDraft     bool   // upload the result to the publishing sink
	DryRun        bool   // run the full pipeline but persist and upload nothing
}

// Market describes the business context injected into prompts.
type Market struct {
	RegionName   string
	StateName    string
	BusinessName string
}

// Pipeline wires the generation dependencies together.
type Pipeline struct {
	store     Store
	selector  StrategySelector
	generator Generator
	quality   QualityAnalyzer
	optimizer ContentOptimizer
	resolver  ImageResolver
	ctas      CTASelector
	publisher Publisher // optional
	market    Market
	now       func() time.Time
}

// New creates a pipeline. The publisher may be nil; SendDraft then fails
// with a configuration error instead of a nil dereference.
func New(
	st Store,
	selector StrategySelector,
	generator Generator,
	quality QualityAnalyzer,
	optimizer ContentOptimizer,
	resolver ImageResolver,
	ctas CTASelector,
	publisher Publisher,
	market Market,
) *Pipeline {
	return &Pipeline{
		store:     st,
		selector:  selector,
		generator: generator,
		quality:   quality,
		optimizer: optimizer,
		resolver:  resolver,
		ctas:      ctas,
		publisher: publisher,
		market:    market,
		now:       time.Now,
	}
}

// generated is the shape the model is asked to respond with.
type generated struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
}

// GenerateArticle runs the full pipeline for one topic and returns the
// persisted article.
func (p *Pipeline) GenerateArticle(ctx context.Context, topicID string, opts Options) (*core.Article, error) {
	topic, err := p.store.GetTopic(topicID)
	if err != nil {
		return nil, stageErr(StageTopic, err)
	}

	// Pending topics are claimed first; a topic already selected (e.g. a
	// retried run) passes through. A dry run checks generatability without
	// claiming anything.
	switch {
	case topic.Status == core.TopicPending && !opts.DryRun:
		if err := p.store.UpdateTopicStatus(topic.ID, core.TopicPending, core.TopicSelected); err != nil {
			return nil, stageErr(StageTopic, err)
		}
	case topic.Status == core.TopicPending, topic.Status == core.TopicSelected:
	default:
		return nil, stageErr(StageTopic, fmt.Errorf("topic %s is %s, not generatable", topic.ID, topic.Status))
	}

	version, err := p.selector.Select(strategy.KeyArticlePrompt)
	if err != nil {
		return nil, stageErr(StageStrategy, err)
	}

	prompt := p.renderPrompt(version.Content, topic)
	raw, err := p.generator.Generate(ctx, prompt, "", llm.Options{})
	if err != nil {
		return nil, stageErr(StageGenerate, err)
	}

	draft, err := parseGenerated(raw, topic)
	if err != nil {
		return nil, stageErr(StageValidate, err)
	}

	primaryKeyword := ""
	if len(topic.Keywords) > 0 {
		primaryKeyword = topic.Keywords[0]
	}

	optimized, err := p.optimizer.Optimize(draft.Content, draft.Title)
	if err != nil {
		return nil, stageErr(StageOptimize, err)
	}

	location := p.market.RegionName
	if len(topic.RelatedLocations) > 0 {
		location = topic.RelatedLocations[0]
	}
	contentImages := opts.ContentImages
	if contentImages <= 0 {
		contentImages = defaultContentImages
	}
	resolved := p.resolver.Resolve(ctx, images.ResolveOptions{
		Location:     location,
		Keywords:     topic.Keywords,
		ContentCount: contentImages,
		Orientation:  "landscape",
	})

	body := insertContentImages(optimized, resolved.Content)

	template := p.ctas.Select(cta.Topic{
		Title:         topic.Title,
		Description:   topic.Description,
		Keywords:      topic.Keywords,
		PreferredType: opts.PreferredCTA,
	})
	body = body + "\n" + p.ctas.Render(template)

	report := p.quality.Analyze(analyzer.Input{
		Title:           draft.Title,
		Content:         body,
		MetaDescription: draft.MetaDescription,
		PrimaryKeyword:  primaryKeyword,
	})

	slug, err := p.uniqueSlug(core.Slugify(draft.Title))
	if err != nil {
		return nil, stageErr(StageAssemble, err)
	}

	article := core.Article{
		ID:              uuid.NewString(),
		TopicID:         topic.ID,
		Title:           draft.Title,
		Slug:            slug,
		Content:         body,
		MetaDescription: draft.MetaDescription,
		SEOScore:        report.SEOScore,
		GEOScore:        report.GEOScore,
		WordCount:       report.Signals.WordCount,
		CTAType:         template.Type,
		CTAPosition:     "end",
		StrategyKey:     version.StrategyKey,
		StrategyVersion: version.Version,
		Status:          core.ArticleDraft,
		GeneratedAt:     p.now().UTC(),
	}
	if resolved.Featured != nil {
		article.FeaturedImage = resolved.Featured.URL
	}

	if opts.DryRun {
		logger.Info("dry run, article not persisted", "slug", article.Slug, "seo_score", article.SEOScore)
		return &article, nil
	}

	if err := p.store.InsertArticle(article); err != nil {
		return nil, stageErr(StagePersist, err)
	}
	if err := p.store.UpdateTopicStatus(topic.ID, core.TopicSelected, core.TopicGenerated); err != nil {
		return nil, stageErr(StagePersist, err)
	}

	logger.Info("article generated",
		"slug", article.Slug,
		"seo_score", article.SEOScore,
		"geo_score", article.GEOScore,
		"words", article.WordCount,
		"strategy", fmt.Sprintf("%s/v%d", article.StrategyKey, article.StrategyVersion))

	if opts.SendDraft {
		if p.publisher == nil {
			return &article, stageErr(StagePublish, fmt.Errorf("no publishing sink configured"))
		}
		post, err := p.publisher.CreateDraft(ctx, &article)
		if err != nil {
			// The article is safely persisted; the upload can be retried.
			return &article, stageErr(StagePublish, err)
		}
		logger.Info("draft uploaded", "slug", article.Slug, "remote_id", post.ID)
	}

	return &article, nil
}

// PublishArticle pushes a persisted draft live: the article is uploaded,
// the remote post is flipped to published, and the article and its topic
// advance to published. The remote post is created at publish time, so a
// draft uploaded earlier with SendDraft is left untouched on the site.
func (p *Pipeline) PublishArticle(ctx context.Context, articleID string) (*core.Article, error) {
	if p.publisher == nil {
		return nil, stageErr(StagePublish, fmt.Errorf("no publishing sink configured"))
	}

	article, err := p.store.GetArticle(articleID)
	if err != nil {
		return nil, stageErr(StagePublish, err)
	}
	if article.Status == core.ArticlePublished {
		return nil, stageErr(StagePublish, fmt.Errorf("article %s is already published", articleID))
	}

	post, err := p.publisher.CreateDraft(ctx, article)
	if err != nil {
		return nil, stageErr(StagePublish, err)
	}
	post, err = p.publisher.Publish(ctx, post.ID)
	if err != nil {
		return nil, stageErr(StagePublish, err)
	}

	if err := p.store.UpdateArticleStatus(article.ID, core.ArticlePublished); err != nil {
		return nil, stageErr(StagePersist, err)
	}
	article.Status = core.ArticlePublished
	article.PublishedAt = p.now().UTC()

	// The topic may already be archived or shared by an earlier article;
	// a failed transition is not worth rolling the publication back.
	if article.TopicID != "" {
		if err := p.store.UpdateTopicStatus(article.TopicID, core.TopicGenerated, core.TopicPublished); err != nil {
			logger.Warn("topic not advanced to published", "topic", article.TopicID, "error", err.Error())
		}
	}

	logger.Info("article published", "slug", article.Slug, "remote_id", post.ID, "link", post.Link)
	return article, nil
}

// uniqueSlug appends a numeric suffix when the natural slug is already
// taken by an earlier article.
func (p *Pipeline) uniqueSlug(base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		existing, err := p.store.FindArticles(store.ArticleFilter{Slug: slug, Limit: 1})
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", slug, err)
		}
		if len(existing) == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// renderPrompt fills the strategy template's placeholders from the topic
// and market context. Unknown placeholders are left in place so a broken
// template is visible in the output rather than silently empty.
func (p *Pipeline) renderPrompt(template string, topic *core.Topic) string {
	replacements := map[string]string{
		"{{business_name}}":     p.market.BusinessName,
		"{{region}}":            p.market.RegionName,
		"{{state}}":             p.market.StateName,
		"{{topic_title}}":       topic.Title,
		"{{topic_description}}": topic.Description,
		"{{keywords}}":          strings.Join(topic.Keywords, ", "),
		"{{market_stats}}":      topic.MarketStats,
	}
	for placeholder, value := range replacements {
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}

// parseGenerated extracts the article JSON from the model response. The
// model sometimes wraps JSON in code fences or leading prose; both are
// tolerated. Missing fields are coerced: the topic title stands in for an
// absent title, and a meta description is cut from the content.
func parseGenerated(raw string, topic *core.Topic) (*generated, error) {
	cleaned := llm.StripCodeFences(strings.TrimSpace(raw))

	// Find the outermost JSON object if the model added prose around it.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var draft generated
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse generated article: %w", err)
	}

	draft.Content = strings.TrimSpace(draft.Content)
	if draft.Content == "" {
		return nil, fmt.Errorf("generated article has no content")
	}
	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = topic.Title
	}
	if strings.TrimSpace(draft.MetaDescription) == "" {
		draft.MetaDescription = synthesizeMeta(draft.Content)
	}
	return &draft, nil
}

// synthesizeMeta derives a meta description from the first paragraph-ish
// run of text, trimmed to the length band the quality criteria reward.
func synthesizeMeta(content string) string {
	text := content
	if idx := strings.Index(text, "<p>"); idx != -1 {
		text = text[idx+3:]
	}
	if idx := strings.Index(text, "</p>"); idx != -1 {
		text = text[:idx]
	}
	text = strings.TrimSpace(stripTags(text))
	if len(text) > 150 {
		cut := strings.LastIndex(text[:150], " ")
		if cut < 100 {
			cut = 150
		}
		text = text[:cut]
	}
	return text
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// insertContentImages places resolved images after successive section
// headings. Images beyond the available headings are appended at the end.
func insertContentImages(content string, resolved []*core.ImageDescriptor) string {
	offset := 0
	for _, image := range resolved {
		figure := renderFigure(image)
		idx := strings.Index(content[offset:], "</h2>")
		if idx == -1 {
			content = content + "\n" + figure
			continue
		}
		insertAt := offset + idx + len("</h2>")
		content = content[:insertAt] + "\n" + figure + content[insertAt:]
		offset = insertAt + len(figure) + 1
	}
	return content
}

func renderFigure(image *core.ImageDescriptor) string {
	var b strings.Builder
	b.WriteString("<figure>")
	fmt.Fprintf(&b, `<img src="%s" alt="%s">`, image.URL, image.AltText)
	if image.Caption != "" {
		fmt.Fprintf(&b, "<figcaption>%s</figcaption>", image.Caption)
	}
	b.WriteString("</figure>")
	return b.String()
}
