// Package images resolves featured and in-content images through a
// fallback chain of providers: the local property-photo catalog first,
// then external stock APIs.
package images

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"localpress/internal/core"
	"localpress/internal/logger"
)

// Provider returns one image for a query, or (nil, nil) when it has
// nothing suitable. Errors are reserved for conditions worth logging;
// the resolver treats both the same way and moves down the chain.
type Provider interface {
	Name() string
	Search(ctx context.Context, query, orientation string, page int) (*core.ImageDescriptor, error)
}

// CatalogEntry is one photo in the local property catalog.
type CatalogEntry struct {
	URL      string   `yaml:"url"`
	AltText  string   `yaml:"alt_text"`
	Caption  string   `yaml:"caption"`
	Location string   `yaml:"location"`
	Tags     []string `yaml:"tags"`
}

// CatalogProvider serves photos the business owns. It outranks stock
// providers because its photos show the actual market.
type CatalogProvider struct {
	entries []CatalogEntry
}

// NewCatalogProvider creates a catalog over a fixed entry set.
func NewCatalogProvider(entries []CatalogEntry) *CatalogProvider {
	return &CatalogProvider{entries: entries}
}

// LoadCatalog reads catalog entries from a YAML file.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image catalog: %w", err)
	}
	var catalog struct {
		Images []CatalogEntry `yaml:"images"`
	}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse image catalog: %w", err)
	}
	return catalog.Images, nil
}

func (p *CatalogProvider) Name() string { return "catalog" }

// Search matches the query against entry locations and tags. Page selects
// among multiple matches so repeated calls can vary the photo.
func (p *CatalogProvider) Search(_ context.Context, query, _ string, page int) (*core.ImageDescriptor, error) {
	queryLower := strings.ToLower(query)

	var matches []CatalogEntry
	for _, entry := range p.entries {
		if entry.Location != "" && strings.Contains(queryLower, strings.ToLower(entry.Location)) {
			matches = append(matches, entry)
			continue
		}
		for _, tag := range entry.Tags {
			if tag != "" && strings.Contains(queryLower, strings.ToLower(tag)) {
				matches = append(matches, entry)
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	if page < 1 {
		page = 1
	}
	entry := matches[(page-1)%len(matches)]
	return &core.ImageDescriptor{
		Source:  core.ImageSourcePlatform,
		URL:     entry.URL,
		AltText: entry.AltText,
		Caption: entry.Caption,
	}, nil
}

// ResolveOptions configures one resolution pass.
type ResolveOptions struct {
	Location     string   // market location used for the featured query
	Keywords     []string // topic keywords driving content image queries
	ContentCount int      // how many in-content images to resolve
	Orientation  string   // passed through to providers, e.g. "landscape"
}

// Result holds the resolved image set. Featured may be nil when every
// provider came up empty; articles still publish without images.
type Result struct {
	Featured *core.ImageDescriptor
	Content  []*core.ImageDescriptor
}

// Resolver walks a provider chain in priority order.
type Resolver struct {
	providers []Provider
}

// NewResolver creates a resolver. Provider order is the fallback order.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve finds a featured image and up to ContentCount in-content images.
// Provider misses and failures both fall through to the next provider.
func (r *Resolver) Resolve(ctx context.Context, opts ResolveOptions) Result {
	result := Result{}

	featuredQuery := strings.TrimSpace(opts.Location + " real estate")
	result.Featured = r.search(ctx, featuredQuery, opts.Orientation, 1)

	if opts.ContentCount <= 0 {
		return result
	}

	queries := contentQueries(opts.Location, opts.Keywords)
	page := 1
	for _, query := range queries {
		if len(result.Content) >= opts.ContentCount {
			break
		}
		if image := r.search(ctx, query, opts.Orientation, page); image != nil {
			result.Content = append(result.Content, image)
			page++
		}
	}
	return result
}

// search walks the chain once for a single query.
func (r *Resolver) search(ctx context.Context, query, orientation string, page int) *core.ImageDescriptor {
	for _, provider := range r.providers {
		image, err := provider.Search(ctx, query, orientation, page)
		if err != nil {
			logger.Warn("image provider failed", "provider", provider.Name(), "query", query, "error", err.Error())
			continue
		}
		if image != nil {
			return image
		}
	}
	return nil
}

// contentQueries builds the candidate query list for in-content images:
// keyword-specific queries first, then generic local fallbacks so the
// list is never empty.
func contentQueries(location string, keywords []string) []string {
	var queries []string
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		queries = append(queries, strings.TrimSpace(location+" "+keyword))
	}
	queries = append(queries,
		strings.TrimSpace(location+" neighborhood"),
		strings.TrimSpace(location+" homes"),
		"modern house exterior",
		"home interior",
	)
	return queries
}
