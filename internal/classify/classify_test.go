package classify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwell/discoveryengine/internal/llm"
)

type fakeModel struct {
	resp string
	err  error
}

func (f fakeModel) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.resp}, nil
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return string(b)
}

func TestClassify_HappyPath(t *testing.T) {
	resp := mustJSON(t, schemaResult{Class: "portfolio-analysis", IsConceptual: true, Confidence: 0.9, Reasoning: "holdings mentioned"})
	got := Classify(context.Background(), fakeModel{resp: resp}, "my investments include...")
	assert.Equal(t, PortfolioAnalysis, got.Class)
	assert.True(t, got.IsConceptual)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestClassify_UnknownClassCoercedToExplicitSearch(t *testing.T) {
	resp := mustJSON(t, schemaResult{Class: "something-else", Confidence: 0.4})
	got := Classify(context.Background(), fakeModel{resp: resp}, "q")
	assert.Equal(t, ExplicitSearch, got.Class)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	resp := mustJSON(t, schemaResult{Class: "explicit-search", Confidence: 5.0})
	got := Classify(context.Background(), fakeModel{resp: resp}, "q")
	assert.Equal(t, 1.0, got.Confidence)

	resp2 := mustJSON(t, schemaResult{Class: "explicit-search", Confidence: -5.0})
	got2 := Classify(context.Background(), fakeModel{resp: resp2}, "q")
	assert.Equal(t, 0.0, got2.Confidence)
}

func TestClassify_FailureFallsBack(t *testing.T) {
	got := Classify(context.Background(), fakeModel{err: errors.New("boom")}, "q")
	assert.Equal(t, Fallback(), got)
}
