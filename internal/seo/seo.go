package seo

import (
	"encoding/json"
	"math"
	"sort"

	"localpress/internal/analyzer"
)

// Finding is the classification of one criterion.
type Finding struct {
	Criterion string `json:"criterion"`
	Status    Status `json:"status"`
	MaxPoints int    `json:"max_points"`
}

// Recommendation carries the remediation advice for a non-good criterion.
type Recommendation struct {
	Criterion string `json:"criterion"`
	Status    Status `json:"status"`
	Advice    string `json:"advice"`
}

// Report is the full quality-analysis output for one article.
type Report struct {
	SEOScore        float64          `json:"seo_score"`
	GEOScore        float64          `json:"geo_score"`
	SEOFindings     []Finding        `json:"seo_findings"`
	GEOFindings     []Finding        `json:"geo_findings"`
	Recommendations []Recommendation `json:"recommendations"`
	Schema          string           `json:"schema"`
	Signals         analyzer.Signals `json:"signals"`
}

// QualityAnalyzer scores articles against the SEO and GEO criteria tables.
type QualityAnalyzer struct {
	content *analyzer.Analyzer
}

// NewQualityAnalyzer creates a quality analyzer on top of a content
// analyzer.
func NewQualityAnalyzer(content *analyzer.Analyzer) *QualityAnalyzer {
	return &QualityAnalyzer{content: content}
}

// Analyze extracts signals from the article and classifies every criterion,
// producing composite scores and ranked recommendations.
func (qa *QualityAnalyzer) Analyze(input analyzer.Input) *Report {
	signals := qa.content.Analyze(input)

	report := &Report{Signals: signals}
	report.SEOFindings, report.SEOScore = classifyAll(seoCriteria, signals)
	report.GEOFindings, report.GEOScore = classifyAll(geoCriteria, signals)

	report.Recommendations = collectRecommendations(
		append(append([]Finding{}, report.SEOFindings...), report.GEOFindings...),
	)
	report.Schema = buildArticleSchema(input)

	return report
}

// classifyAll runs every criterion and computes the composite:
// sum(points x status weight) / sum(points) x 100.
func classifyAll(criteria []Criterion, signals analyzer.Signals) ([]Finding, float64) {
	findings := make([]Finding, 0, len(criteria))
	earned := 0.0
	possible := 0.0

	for _, criterion := range criteria {
		status := criterion.Classify(signals)
		findings = append(findings, Finding{
			Criterion: criterion.Name,
			Status:    status,
			MaxPoints: criterion.MaxPoints,
		})
		earned += float64(criterion.MaxPoints) * statusWeight[status]
		possible += float64(criterion.MaxPoints)
	}

	if possible == 0 {
		return findings, 0
	}
	return findings, round2(earned / possible * 100.0)
}

// collectRecommendations emits one recommendation per non-good criterion,
// poor before ok. The sort is stable so criteria keep their table order
// within each tier.
func collectRecommendations(findings []Finding) []Recommendation {
	var recs []Recommendation
	for _, finding := range findings {
		if finding.Status == StatusGood {
			continue
		}
		recs = append(recs, Recommendation{
			Criterion: finding.Criterion,
			Status:    finding.Status,
			Advice:    remediationFor(finding.Criterion),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Status == StatusPoor && recs[j].Status != StatusPoor
	})
	return recs
}

func remediationFor(name string) string {
	for _, criterion := range seoCriteria {
		if criterion.Name == name {
			return criterion.Remediation
		}
	}
	for _, criterion := range geoCriteria {
		if criterion.Name == name {
			return criterion.Remediation
		}
	}
	return ""
}

// buildArticleSchema produces a JSON-LD Article snippet for the page head.
func buildArticleSchema(input analyzer.Input) string {
	schema := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    input.Title,
		"description": input.MetaDescription,
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
