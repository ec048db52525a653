package canonicalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwell/discoveryengine/internal/searchengine"
)

func TestScoreAndFilter_ShortInputStricterFloor(t *testing.T) {
	hits := []searchengine.Hit{
		{Score: 10, Source: map[string]any{"name": "AI & Machine Learning"}},
		{Score: 1, Source: map[string]any{"name": "Air Transport"}},
	}
	// threshold 0.9 would normally reject low-overlap hits outright; the
	// ≤3-char floor instead uses max(0.60, 0.8*0.9)=0.72.
	got := scoreAndFilter(hits, "AI", 0.9)
	assert.Contains(t, got, "AI & Machine Learning")
	assert.NotContains(t, got, "Air Transport")
}

func TestScoreAndFilter_EmptyHits(t *testing.T) {
	assert.Nil(t, scoreAndFilter(nil, "fintech", 0.5))
}

func TestScoreAndFilter_ZeroTopScoreIsSafe(t *testing.T) {
	hits := []searchengine.Hit{{Score: 0, Source: map[string]any{"name": "FinTech"}}}
	assert.Nil(t, scoreAndFilter(hits, "fintech", 0.5))
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, tokenOverlap([]string{"ai"}, []string{"ai", "machine", "learning"}))
	assert.Equal(t, 0.0, tokenOverlap([]string{"air"}, []string{"ai", "machine", "learning"}))
	assert.Equal(t, 0.5, tokenOverlap([]string{"b2b", "saas"}, []string{"saas"}))
}

func TestBuildQuery_SynonymSegmentAddsExtraStrategies(t *testing.T) {
	q := buildQuery("industries", "ai")
	boolClause := q["query"].(map[string]any)["bool"].(map[string]any)
	should := boolClause["should"].([]map[string]any)
	// keyword, phrase-prefix, token-AND, msm75, fuzzy, and (len<=5) wildcard
	assert.Len(t, should, 6)
}

func TestBuildQuery_NonSynonymSegmentIsPlainFuzzy(t *testing.T) {
	q := buildQuery("location", "san francisco")
	boolClause := q["query"].(map[string]any)["bool"].(map[string]any)
	should := boolClause["should"].([]map[string]any)
	// keyword, phrase-prefix, fuzzy
	assert.Len(t, should, 3)
}

func TestCanonicalize_NonFuzzySegmentPassesThrough(t *testing.T) {
	c := New(nil)
	got, err := c.Canonicalize(nil, "funding_stage", "Series A", 0.5)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Series A"}, got)
}
