package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"localpress/internal/analyzer"
	"localpress/internal/core"
	"localpress/internal/feedback"
	"localpress/internal/pipeline"
	"localpress/internal/seo"
	"localpress/internal/topics"
)

type stubDiscoverer struct {
	topics []core.Topic
	err    error
}

func (s *stubDiscoverer) Discover(context.Context, topics.DiscoverOptions) ([]core.Topic, error) {
	return s.topics, s.err
}

type stubGenerator struct {
	article *core.Article
	err     error
}

func (s *stubGenerator) GenerateArticle(context.Context, string, pipeline.Options) (*core.Article, error) {
	return s.article, s.err
}

func (s *stubGenerator) PublishArticle(context.Context, string) (*core.Article, error) {
	return s.article, s.err
}

type stubLearner struct {
	err error
}

func (s *stubLearner) Record(event core.FeedbackEvent) (*core.FeedbackEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &event, nil
}

func (s *stubLearner) AutoAdjustWeights(float64) ([]feedback.Adjustment, error) {
	return nil, s.err
}

func (s *stubLearner) InsightsReport(time.Duration) (*feedback.Insights, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &feedback.Insights{}, nil
}

func testService(disc Discoverer, gen ArticleGenerator, learner FeedbackRecorder) *Service {
	market := analyzer.Market{RegionName: "Austin"}
	return New(disc, gen, seo.NewQualityAnalyzer(analyzer.New(market, "")), learner)
}

func TestDiscover_Envelope(t *testing.T) {
	svc := testService(&stubDiscoverer{topics: []core.Topic{{Title: "T"}}}, nil, nil)
	envelope := svc.Discover(context.Background(), topics.DiscoverOptions{})
	if !envelope.Success || envelope.Error != "" || envelope.Data == nil {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestDiscover_ErrorEnvelope(t *testing.T) {
	svc := testService(&stubDiscoverer{err: errors.New("all sources down")}, nil, nil)
	envelope := svc.Discover(context.Background(), topics.DiscoverOptions{})
	if envelope.Success || envelope.Error == "" || envelope.Data != nil {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestGenerate_ErrorEnvelope(t *testing.T) {
	svc := testService(nil, &stubGenerator{err: errors.New("model down")}, nil)
	envelope := svc.Generate(context.Background(), "id", pipeline.Options{})
	if envelope.Success || envelope.Error != "model down" {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestPublish_Envelope(t *testing.T) {
	svc := testService(nil, &stubGenerator{article: &core.Article{ID: "a1", Status: core.ArticlePublished}}, nil)
	envelope := svc.Publish(context.Background(), "a1")
	if !envelope.Success || envelope.Data == nil {
		t.Errorf("unexpected envelope: %+v", envelope)
	}

	svc = testService(nil, &stubGenerator{err: errors.New("sink down")}, nil)
	envelope = svc.Publish(context.Background(), "a1")
	if envelope.Success || envelope.Error != "sink down" {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestAnalyze_AlwaysSucceeds(t *testing.T) {
	svc := testService(nil, nil, nil)
	envelope := svc.Analyze(analyzer.Input{Title: "T", Content: "<p>Austin</p>"})
	if !envelope.Success {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
	if _, ok := envelope.Data.(*seo.Report); !ok {
		t.Errorf("data is not a report: %T", envelope.Data)
	}
}

func TestRecordFeedback_Envelope(t *testing.T) {
	svc := testService(nil, nil, &stubLearner{})
	envelope := svc.RecordFeedback(core.FeedbackEvent{ArticleID: "a", Type: core.FeedbackUserRating})
	if !envelope.Success {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestEnvelope_SerializesCleanly(t *testing.T) {
	raw, err := json.Marshal(fail(errors.New("boom")))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["success"] != false || decoded["error"] != "boom" {
		t.Errorf("unexpected serialization: %s", raw)
	}
	if _, present := decoded["data"]; present {
		t.Error("empty data should be omitted")
	}
}
