package catalog

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minSuggestDistance keeps short queries from matching nothing at all.
const minSuggestDistance = 2

type candidate struct {
	name string
	dist int
}

// Suggest returns up to limit item names that are close to query by edit
// distance, nearest first. Ties keep item order.
func (c *Catalog) Suggest(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []string{}
	}

	threshold := max(minSuggestDistance, utf8.RuneCountInString(q)/3)

	candidates := make([]candidate, 0, len(c.items))
	for _, name := range c.items {
		d := levenshtein.ComputeDistance(q, strings.ToLower(name))
		if d > threshold {
			continue
		}
		candidates = append(candidates, candidate{name: name, dist: d})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.dist, b.dist)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.name
	}
	return out
}
