// Package canonicalize resolves a raw, possibly misspelled or synonymous
// value against a segment's controlled vocabulary using the search engine's
// per-segment index. Grounded on
// original_source/backend/backend/es/fuzzy_matcher.py, reworked around
// internal/searchengine's query builders.
package canonicalize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/driftwell/discoveryengine/internal/searchengine"
	"github.com/driftwell/discoveryengine/internal/segment"
)

const maxCandidates = 50

// Canonicalizer resolves raw values to canonical vocabulary strings via the
// search engine.
type Canonicalizer struct {
	engine *searchengine.Engine
}

// New constructs a Canonicalizer over engine.
func New(engine *searchengine.Engine) *Canonicalizer {
	return &Canonicalizer{engine: engine}
}

// Canonicalize resolves a single raw value for seg. Non-fuzzy segments
// return the input unchanged in a single-element slice (spec §4.1).
func (c *Canonicalizer) Canonicalize(ctx context.Context, seg segment.Name, raw string, threshold float64) ([]string, error) {
	if !segment.IsFuzzy(seg) {
		return []string{raw}, nil
	}

	hits, err := c.engine.Search(ctx, indexFor(seg), buildQuery(seg, raw), maxCandidates)
	if err != nil {
		// Search engine unreachable: return empty, never fail the request
		// (spec §4.1 "Failure modes").
		return nil, nil
	}
	return scoreAndFilter(hits, raw, threshold), nil
}

// CanonicalizeMany resolves every value in raws for seg in a single engine
// round trip via _msearch (spec §4.1, §5: "one engine round trip per
// segment, all values in parallel on the engine side").
func (c *Canonicalizer) CanonicalizeMany(ctx context.Context, seg segment.Name, raws []string, threshold float64) (map[string][]string, error) {
	out := make(map[string][]string, len(raws))
	if len(raws) == 0 {
		return out, nil
	}

	if !segment.IsFuzzy(seg) {
		for _, raw := range raws {
			out[raw] = []string{raw}
		}
		return out, nil
	}

	bodies := make([]map[string]any, len(raws))
	for i, raw := range raws {
		bodies[i] = buildQuery(seg, raw)
	}

	results, err := c.engine.MultiSearch(ctx, indexFor(seg), bodies, maxCandidates)
	if err != nil {
		// Engine unreachable: empty mapping for every raw value, extraction
		// drops the corresponding rules.
		return out, nil
	}

	for i, raw := range raws {
		var hits []searchengine.Hit
		if i < len(results) {
			hits = results[i]
		}
		out[raw] = scoreAndFilter(hits, raw, threshold)
	}
	return out, nil
}

func indexFor(seg segment.Name) string {
	return "vocab_" + string(seg)
}

// scoreAndFilter applies the quality filter of spec §4.1 to hits returned
// for a query against raw, keeping every candidate whose composite quality
// clears the threshold.
func scoreAndFilter(hits []searchengine.Hit, raw string, threshold float64) []string {
	if len(hits) == 0 {
		return nil
	}

	topScore := hits[0].Score
	if topScore <= 0 {
		return nil
	}

	floor := threshold
	if len([]rune(raw)) <= 3 {
		floor = max64(0.60, 0.8*threshold)
	}

	queryTokens := tokenize(raw)

	var names []string
	for _, h := range hits {
		name, _ := h.Source["name"].(string)
		if name == "" {
			continue
		}
		normalized := h.Score / topScore
		overlap := tokenOverlap(queryTokens, tokenize(name))
		quality := 0.7*normalized + 0.3*overlap
		if quality >= floor {
			names = append(names, name)
		}
	}
	return lo.Uniq(names)
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func tokenOverlap(query, candidate []string) float64 {
	if len(query) == 0 {
		return 0
	}
	candSet := make(map[string]bool, len(candidate))
	for _, t := range candidate {
		candSet[t] = true
	}
	matched := 0
	for _, t := range query {
		if candSet[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// buildQuery assembles the multi-strategy should-clause query described in
// spec §4.1: keyword exact match and phrase prefix always; token-AND,
// 75%-minimum-should-match, fuzzy, and short-input prefix-wildcard only for
// synonym-bearing segments; a plain fuzzy match for the rest.
func buildQuery(seg segment.Name, raw string) map[string]any {
	clauses := []map[string]any{
		{"term": map[string]any{"name.keyword": map[string]any{"value": raw, "boost": 4.0}}},
		{"match_phrase_prefix": map[string]any{"name": map[string]any{"query": raw, "boost": 2.0}}},
	}

	if segment.HasSynonyms(seg) {
		clauses = append(clauses,
			map[string]any{"match": map[string]any{"name.synonyms": map[string]any{"query": raw, "operator": "and"}}},
			map[string]any{"match": map[string]any{"name.synonyms": map[string]any{"query": raw, "minimum_should_match": "75%"}}},
			map[string]any{"match": map[string]any{"name.synonyms": map[string]any{"query": raw, "fuzziness": "AUTO"}}},
		)
		if len([]rune(raw)) <= 5 {
			clauses = append(clauses, map[string]any{
				"wildcard": map[string]any{"name.keyword": map[string]any{"value": strings.ToLower(raw) + "*"}},
			})
		}
	} else {
		clauses = append(clauses, map[string]any{
			"match": map[string]any{"name": map[string]any{"query": raw, "fuzziness": "AUTO"}},
		})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               clauses,
				"minimum_should_match": 1,
			},
		},
	}
}

// CanonicalizeSegments runs CanonicalizeMany concurrently across several
// segments, one engine round trip per segment, using an errgroup to bound
// and propagate failures the way internal/searchengine's batch call does
// per segment (spec §4.4 step 3: "batch-canonicalize all rule values for
// the segment in a single search-engine round trip").
func (c *Canonicalizer) CanonicalizeSegments(ctx context.Context, byRaws map[segment.Name][]string, threshold float64) (map[segment.Name]map[string][]string, error) {
	out := make(map[segment.Name]map[string][]string, len(byRaws))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for seg, raws := range byRaws {
		seg, raws := seg, raws
		g.Go(func() error {
			mapping, err := c.CanonicalizeMany(gctx, seg, raws, threshold)
			if err != nil {
				return fmt.Errorf("canonicalize: segment %q: %w", seg, err)
			}
			mu.Lock()
			out[seg] = mapping
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
