// Package similarity provides fuzzy string matching used by topic
// deduplication and uniqueness scoring.
package similarity

import (
	"regexp"
	"strings"
)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
var spacePattern = regexp.MustCompile(`\s+`)

// Normalize lowercases text, strips punctuation and collapses whitespace so
// that cosmetic differences ("5-Year" vs "5 Year") do not affect matching.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = nonAlnumPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Similarity returns a normalized similarity percentage (0-100) between two
// strings, based on Levenshtein edit distance over normalized text.
// Symmetric: Similarity(a, b) == Similarity(b, a).
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == "" && nb == "" {
		return 100.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 100.0
	}

	distance := levenshtein(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}

	return (1.0 - float64(distance)/float64(longest)) * 100.0
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
