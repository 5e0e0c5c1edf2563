// Package strategy selects among competing prompt versions. Selection is
// weight-proportional, which keeps exploration alive: a losing version at
// the weight floor still gets occasional traffic, so its statistics keep
// accruing and a later recovery stays possible.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"localpress/internal/core"
	"localpress/internal/store"
)

// Strategy keys the generator uses.
const (
	KeyArticlePrompt = "article_prompt"
)

// ErrNoActiveVersions is returned when a key has nothing to select from.
var ErrNoActiveVersions = errors.New("no active strategy versions")

// Store is the slice of persistence selection needs.
type Store interface {
	ActiveStrategyVersions(key string) ([]core.StrategyVersion, error)
	InsertStrategyVersion(sv core.StrategyVersion) error
}

// Selector picks strategy versions weight-proportionally.
type Selector struct {
	store Store
	rng   *rand.Rand
}

// NewSelector creates a selector with its own seeded RNG.
func NewSelector(st Store) *Selector {
	return &Selector{
		store: st,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select returns a value copy of one active version for the key. The
// probability of each version is its weight divided by the key's total
// weight.
func (s *Selector) Select(key string) (core.StrategyVersion, error) {
	versions, err := s.store.ActiveStrategyVersions(key)
	if err != nil {
		return core.StrategyVersion{}, fmt.Errorf("failed to load strategy versions: %w", err)
	}
	if len(versions) == 0 {
		return core.StrategyVersion{}, ErrNoActiveVersions
	}

	total := 0
	for _, version := range versions {
		weight := version.Weight
		if weight < store.MinStrategyWeight {
			weight = store.MinStrategyWeight
		}
		total += weight
	}

	pick := s.rng.Intn(total)
	for _, version := range versions {
		weight := version.Weight
		if weight < store.MinStrategyWeight {
			weight = store.MinStrategyWeight
		}
		pick -= weight
		if pick < 0 {
			return version, nil
		}
	}
	return versions[len(versions)-1], nil
}

// defaultArticlePrompt is the v1 article template seeded on first run.
const defaultArticlePrompt = `You are a local real estate content writer for {{business_name}} in {{region}}, {{state}}.

Write a complete article in HTML about: {{topic_title}}

Topic angle: {{topic_description}}
Target keywords: {{keywords}}
Market statistics (cite these where relevant): {{market_stats}}

Requirements:
- 1200 to 2500 words
- One H1 heading, 3 to 8 H2 section headings
- Mention {{region}} naturally throughout, plus specific neighborhoods
- Reference local schools and market data where the topic allows
- Write for buyers and sellers, not other agents

Respond with a JSON object: {"title": "...", "meta_description": "...", "content": "<h1>...</h1>..."}`

// SeedDefaults inserts the v1 article prompt when the key has no versions
// yet. Idempotent: an existing version set is left untouched.
func SeedDefaults(st Store) error {
	versions, err := st.ActiveStrategyVersions(KeyArticlePrompt)
	if err != nil {
		return fmt.Errorf("failed to check existing strategies: %w", err)
	}
	if len(versions) > 0 {
		return nil
	}

	return st.InsertStrategyVersion(core.StrategyVersion{
		ID:          uuid.NewString(),
		StrategyKey: KeyArticlePrompt,
		Version:     1,
		Content:     defaultArticlePrompt,
		Weight:      100,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	})
}
