package thesis

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

func TestAnalyzePortfolio_HappyPath(t *testing.T) {
	resp := mustJSON(t, portfolioSchema{
		ExpandedQuery:      "B2B financial infrastructure APIs, AI healthcare billing",
		Summary:            "diversify consumer credit",
		Themes:             []string{"consumer credit", "AI automation"},
		ComplementaryAreas: []string{"B2B fintech infra"},
	})
	got := AnalyzePortfolio(context.Background(), fakeModel{resp: resp}, "my investments include consumer credit")
	assert.NotNil(t, got)
	assert.Equal(t, TypePortfolio, got.Context.Type)
	assert.Contains(t, got.Context.Themes, "consumer credit")
}

func TestAnalyzePortfolio_FailureReturnsNil(t *testing.T) {
	got := AnalyzePortfolio(context.Background(), fakeModel{err: errors.New("boom")}, "q")
	assert.Nil(t, got)
}

func TestAnalyzePortfolio_EmptyExpandedQueryReturnsNil(t *testing.T) {
	resp := mustJSON(t, portfolioSchema{})
	got := AnalyzePortfolio(context.Background(), fakeModel{resp: resp}, "q")
	assert.Nil(t, got)
}

func TestExpandConceptual_HappyPath(t *testing.T) {
	resp := mustJSON(t, conceptualSchema{
		ExpandedQuery: "decentralized energy grid software",
		CoreConcepts:  CoreConcepts{Technology: []string{"energy storage"}, Industries: []string{"CleanTech"}},
	})
	got := ExpandConceptual(context.Background(), fakeModel{resp: resp}, "the future of decentralized energy")
	assert.NotNil(t, got)
	assert.Equal(t, TypeConceptual, got.Context.Type)
	assert.NotNil(t, got.Context.CoreConcepts)
	assert.Contains(t, got.Context.CoreConcepts.Industries, "CleanTech")
}
