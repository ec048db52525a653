// Package rewrite implements the Query Rewriter (spec §4.6), grounded on
// _examples/Tangerg-lynx/ai/rag/query_transformer_rewrite.go's prompt
// template and original-on-failure semantics.
package rewrite

import (
	"context"
	"strings"

	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/llm"
)

const promptTemplate = `Given a user query for a company-discovery search engine, rewrite it into a
concise, industry/technology-keyword query suitable for embedding into a semantic search.
Strip portfolio or meta framing ("my investments include...", "suggest additions", "I'm looking for...").
Bias the rewrite toward these already-applied filter values when they are relevant: {{.FilterSummary}}

Original query:
{{.Query}}

Rewritten query (keywords only, no commentary):`

// Rewrite implements the Query Rewriter. On any failure or empty model
// output, the original query is returned unchanged (spec §4.6 "Idempotent
// in effect").
func Rewrite(ctx context.Context, model llm.ChatModel, query string, appliedFilters filterdsl.QueryFilters) string {
	prompt, err := llm.NewPromptTemplate(promptTemplate).
		WithVariable("FilterSummary", summarizeFilters(appliedFilters)).
		WithVariable("Query", query).
		Render()
	if err != nil {
		return query
	}

	resp, err := model.Complete(ctx, &llm.Request{
		Messages: []llm.Message{llm.User(prompt)},
	})
	if err != nil {
		return query
	}

	rewritten := strings.TrimSpace(resp.Text)
	if rewritten == "" {
		return query
	}
	return rewritten
}

func summarizeFilters(filters filterdsl.QueryFilters) string {
	if filters.IsEmpty() {
		return "(none)"
	}

	var parts []string
	for _, sf := range filters.Filters {
		for _, r := range sf.Rules {
			parts = append(parts, string(sf.Segment)+" "+string(r.Op)+" "+r.Value.AsText())
		}
	}
	return strings.Join(parts, ", ")
}
