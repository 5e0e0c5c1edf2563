// Package services exposes the pipeline's operations behind a uniform
// envelope, so CLI commands and any future HTTP surface share one calling
// convention and one error shape.
package services

import (
	"context"
	"time"

	"localpress/internal/analyzer"
	"localpress/internal/core"
	"localpress/internal/feedback"
	"localpress/internal/pipeline"
	"localpress/internal/seo"
	"localpress/internal/topics"
)

// Envelope is the uniform response wrapper. Exactly one of Data and Error
// is set.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(data interface{}) *Envelope {
	return &Envelope{Success: true, Data: data}
}

func fail(err error) *Envelope {
	return &Envelope{Success: false, Error: err.Error()}
}

// Discoverer runs topic discovery.
type Discoverer interface {
	Discover(ctx context.Context, opts topics.DiscoverOptions) ([]core.Topic, error)
}

// ArticleGenerator runs the generation pipeline and the publish step.
type ArticleGenerator interface {
	GenerateArticle(ctx context.Context, topicID string, opts pipeline.Options) (*core.Article, error)
	PublishArticle(ctx context.Context, articleID string) (*core.Article, error)
}

// ContentAnalyzer scores arbitrary content.
type ContentAnalyzer interface {
	Analyze(input analyzer.Input) *seo.Report
}

// FeedbackRecorder records outcome signals and produces insights.
type FeedbackRecorder interface {
	Record(event core.FeedbackEvent) (*core.FeedbackEvent, error)
	AutoAdjustWeights(threshold float64) ([]feedback.Adjustment, error)
	InsightsReport(period time.Duration) (*feedback.Insights, error)
}

// Service is the operation facade.
type Service struct {
	discoverer Discoverer
	generator  ArticleGenerator
	quality    ContentAnalyzer
	learner    FeedbackRecorder
}

// New wires the facade.
func New(discoverer Discoverer, generator ArticleGenerator, quality ContentAnalyzer, learner FeedbackRecorder) *Service {
	return &Service{
		discoverer: discoverer,
		generator:  generator,
		quality:    quality,
		learner:    learner,
	}
}

// Discover runs topic discovery and wraps the ranked topics.
func (s *Service) Discover(ctx context.Context, opts topics.DiscoverOptions) *Envelope {
	found, err := s.discoverer.Discover(ctx, opts)
	if err != nil {
		return fail(err)
	}
	return ok(found)
}

// Generate runs the article pipeline for one topic.
func (s *Service) Generate(ctx context.Context, topicID string, opts pipeline.Options) *Envelope {
	article, err := s.generator.GenerateArticle(ctx, topicID, opts)
	if err != nil {
		return fail(err)
	}
	return ok(article)
}

// Publish pushes a persisted draft article live.
func (s *Service) Publish(ctx context.Context, articleID string) *Envelope {
	article, err := s.generator.PublishArticle(ctx, articleID)
	if err != nil {
		return fail(err)
	}
	return ok(article)
}

// Analyze scores content without generating anything.
func (s *Service) Analyze(input analyzer.Input) *Envelope {
	return ok(s.quality.Analyze(input))
}

// RecordFeedback appends one outcome signal.
func (s *Service) RecordFeedback(event core.FeedbackEvent) *Envelope {
	recorded, err := s.learner.Record(event)
	if err != nil {
		return fail(err)
	}
	return ok(recorded)
}

// AdjustStrategies runs the weight-adjustment pass and wraps the actions
// taken. A non-positive threshold uses the learner's default spread.
func (s *Service) AdjustStrategies(threshold float64) *Envelope {
	adjustments, err := s.learner.AutoAdjustWeights(threshold)
	if err != nil {
		return fail(err)
	}
	return ok(adjustments)
}

// Insights summarizes recent content performance.
func (s *Service) Insights(period time.Duration) *Envelope {
	insights, err := s.learner.InsightsReport(period)
	if err != nil {
		return fail(err)
	}
	return ok(insights)
}
