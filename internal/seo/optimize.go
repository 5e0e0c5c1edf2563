package seo

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Optimizer auto-repairs the two mechanically fixable quality issues:
// missing image alt text and missing safety attributes on external links.
type Optimizer struct {
	siteHost string
}

// NewOptimizer creates an optimizer. siteHost identifies links that are
// internal and therefore left untouched.
func NewOptimizer(siteHost string) *Optimizer {
	return &Optimizer{siteHost: siteHost}
}

// Optimize rewrites content, synthesizing alt text from the article title
// for images that lack it and adding rel/target safety attributes to
// external links. Pure string rewriting: visible link text and all other
// markup are preserved. Idempotent: a second application changes nothing.
func (o *Optimizer) Optimize(content, title string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse content: %w", err)
	}

	altIndex := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if alt, ok := sel.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			return
		}
		altIndex++
		alt := title
		if altIndex > 1 {
			alt = fmt.Sprintf("%s - image %d", title, altIndex)
		}
		sel.SetAttr("alt", alt)
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !o.isExternal(href) {
			return
		}

		rel, _ := sel.Attr("rel")
		relParts := strings.Fields(rel)
		for _, required := range []string{"noopener", "noreferrer"} {
			if !containsString(relParts, required) {
				relParts = append(relParts, required)
			}
		}
		sel.SetAttr("rel", strings.Join(relParts, " "))

		if _, ok := sel.Attr("target"); !ok {
			sel.SetAttr("target", "_blank")
		}
	})

	// goquery parses fragments into a full document; return just the body.
	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}
	return html, nil
}

func (o *Optimizer) isExternal(href string) bool {
	if !strings.HasPrefix(href, "http") {
		return false
	}
	return o.siteHost == "" || !strings.Contains(href, o.siteHost)
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
