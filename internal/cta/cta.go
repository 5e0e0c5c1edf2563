// Package cta selects and renders the call-to-action block appended to
// generated articles.
package cta

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"localpress/internal/core"
)

// CTA types. Every selector result is one of these.
const (
	TypeSearch    = "search"
	TypeSchools   = "schools"
	TypeContact   = "contact"
	TypeValuation = "valuation"
)

const (
	keywordPoints  = 10
	topicTagPoints = 20
)

// builtinTemplates are the defaults shipped with the binary. An override
// file replaces matching types and can add new ones.
var builtinTemplates = []core.CTATemplate{
	{
		Type:        TypeSearch,
		Title:       "Find Your Next Home",
		Description: "Browse current listings across the area, updated daily.",
		ButtonText:  "Search Listings",
		ButtonURL:   "/listings",
		Icon:        "search",
		Keywords:    []string{"buy", "buyer", "listing", "home search", "for sale", "house hunting"},
		TopicTags:   []string{"buying", "listings", "first-time buyer"},
	},
	{
		Type:        TypeSchools,
		Title:       "Explore Neighborhood Schools",
		Description: "Compare school ratings and attendance zones before you move.",
		ButtonText:  "View School Guide",
		ButtonURL:   "/schools",
		Icon:        "school",
		Keywords:    []string{"school", "family", "district", "kids", "education"},
		TopicTags:   []string{"schools", "family", "neighborhood guide"},
	},
	{
		Type:        TypeContact,
		Title:       "Talk to a Local Expert",
		Description: "Our agents know this market street by street. Get answers today.",
		ButtonText:  "Contact Us",
		ButtonURL:   "/contact",
		Icon:        "phone",
		Keywords:    []string{"market", "investment", "trends", "report", "forecast", "analysis"},
		TopicTags:   []string{"market report", "investment", "trends"},
	},
	{
		Type:        TypeValuation,
		Title:       "What Is Your Home Worth?",
		Description: "Get a free, data-backed estimate of your home's current value.",
		ButtonText:  "Get My Valuation",
		ButtonURL:   "/valuation",
		Icon:        "chart",
		Keywords:    []string{"sell", "seller", "home value", "equity", "appraisal", "worth"},
		TopicTags:   []string{"selling", "valuation"},
	},
}

// Fallback rules, checked in order when scoring finds no signal at all.
var fallbackRules = []struct {
	pattern *regexp.Regexp
	ctaType string
}{
	{regexp.MustCompile(`(?i)first[- ]time|starter home|down payment`), TypeSearch},
	{regexp.MustCompile(`(?i)school|family|kid`), TypeSchools},
	{regexp.MustCompile(`(?i)market|invest`), TypeContact},
}

// Topic is the slice of topic data the selector reads.
type Topic struct {
	Title         string
	Description   string
	Keywords      []string
	PreferredType string
}

// Selector scores templates against topic text.
type Selector struct {
	templates []core.CTATemplate
	siteURL   string
}

// NewSelector builds a selector over the built-in templates. siteURL is
// prepended to relative button URLs at render time.
func NewSelector(siteURL string) *Selector {
	templates := make([]core.CTATemplate, len(builtinTemplates))
	copy(templates, builtinTemplates)
	return &Selector{templates: templates, siteURL: strings.TrimRight(siteURL, "/")}
}

// LoadOverrides merges templates from a YAML file: an entry whose type
// matches a built-in replaces it, others are appended.
func (s *Selector) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read CTA overrides: %w", err)
	}

	var overrides struct {
		Templates []core.CTATemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("failed to parse CTA overrides: %w", err)
	}

	for _, override := range overrides.Templates {
		if override.Type == "" {
			continue
		}
		replaced := false
		for i, existing := range s.templates {
			if existing.Type == override.Type {
				s.templates[i] = override
				replaced = true
				break
			}
		}
		if !replaced {
			s.templates = append(s.templates, override)
		}
	}
	return nil
}

// Select returns the best-matching template for the topic. A preferred
// type wins outright when a template of that type exists; otherwise
// keyword and tag scoring decides, with a regex fallback chain so the
// result is never empty.
func (s *Selector) Select(topic Topic) core.CTATemplate {
	if topic.PreferredType != "" {
		if template, ok := s.byType(topic.PreferredType); ok {
			return template
		}
	}

	text := strings.ToLower(topic.Title + " " + topic.Description + " " + strings.Join(topic.Keywords, " "))

	best := -1
	bestScore := 0
	for i, template := range s.templates {
		score := scoreTemplate(template, text)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 {
		return s.templates[best]
	}

	for _, rule := range fallbackRules {
		if rule.pattern.MatchString(text) {
			if template, ok := s.byType(rule.ctaType); ok {
				return template
			}
		}
	}

	// Search is the universal default.
	if template, ok := s.byType(TypeSearch); ok {
		return template
	}
	return s.templates[0]
}

func (s *Selector) byType(ctaType string) (core.CTATemplate, bool) {
	for _, template := range s.templates {
		if template.Type == ctaType {
			return template, true
		}
	}
	return core.CTATemplate{}, false
}

func scoreTemplate(template core.CTATemplate, text string) int {
	score := 0
	for _, keyword := range template.Keywords {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			score += keywordPoints
		}
	}
	for _, tag := range template.TopicTags {
		if tag != "" && strings.Contains(text, strings.ToLower(tag)) {
			score += topicTagPoints
		}
	}
	return score
}

// Render produces the HTML block for a template. Relative button URLs
// become absolute against the site URL so the block survives syndication.
func (s *Selector) Render(template core.CTATemplate) string {
	buttonURL := template.ButtonURL
	if strings.HasPrefix(buttonURL, "/") && s.siteURL != "" {
		buttonURL = s.siteURL + buttonURL
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="cta cta-%s">`+"\n", html.EscapeString(template.Type))
	if template.Icon != "" {
		fmt.Fprintf(&b, `  <span class="cta-icon cta-icon-%s"></span>`+"\n", html.EscapeString(template.Icon))
	}
	fmt.Fprintf(&b, "  <h3>%s</h3>\n", html.EscapeString(template.Title))
	fmt.Fprintf(&b, "  <p>%s</p>\n", html.EscapeString(template.Description))
	fmt.Fprintf(&b, `  <a class="cta-button" href="%s">%s</a>`+"\n",
		html.EscapeString(buttonURL), html.EscapeString(template.ButtonText))
	b.WriteString("</div>")
	return b.String()
}
