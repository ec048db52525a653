// Package classify implements the Query Classifier (spec §4.2): a single
// advisory language-model call that routes a query to explicit-search or
// portfolio-analysis and flags conceptual phrasing.
package classify

import (
	"context"
	"strings"

	"github.com/driftwell/discoveryengine/internal/llm"
)

// Class is the routing decision for a query.
type Class string

const (
	ExplicitSearch    Class = "explicit-search"
	PortfolioAnalysis Class = "portfolio-analysis"
)

// Result is the classifier's output.
type Result struct {
	Class        Class
	IsConceptual bool
	Confidence   float64
	Reasoning    string
}

const systemPrompt = `You are a routing classifier for a company-discovery search engine.
Decide whether the user's query is:
- "explicit-search": a direct search for companies matching concrete criteria.
- "portfolio-analysis": the user describes existing investments/holdings and asks for complementary suggestions.

Also decide whether an explicit-search query is "conceptual": phrased as an abstract thesis
or theme rather than concrete, filterable criteria (e.g. "the future of decentralized energy"
vs. "AI companies in San Francisco with Series A funding").

Respond with the structured fields only.`

// schemaResult mirrors Result but with a plain-string class field, so
// out-of-range model output (unknown class, out-of-bounds confidence,
// non-bool is_conceptual already enforced by the schema) can be coerced
// before becoming the typed Result (spec §4.2 "Inputs out of range are
// coerced").
type schemaResult struct {
	Class        string  `json:"class" jsonschema:"enum=explicit-search,enum=portfolio-analysis"`
	IsConceptual bool    `json:"is_conceptual"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Fallback is returned on any classification failure (spec §4.2).
func Fallback() Result {
	return Result{Class: ExplicitSearch, IsConceptual: false, Confidence: 0.5, Reasoning: "fallback"}
}

// Classify runs the classifier over query.
func Classify(ctx context.Context, model llm.ChatModel, query string) Result {
	out, err := llm.Structured[schemaResult](ctx, model, []llm.Message{
		llm.System(systemPrompt),
		llm.User(query),
	})
	if err != nil {
		return Fallback()
	}

	class := Class(strings.TrimSpace(out.Class))
	if class != ExplicitSearch && class != PortfolioAnalysis {
		class = ExplicitSearch
	}

	confidence := out.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Class:        class,
		IsConceptual: out.IsConceptual,
		Confidence:   confidence,
		Reasoning:    out.Reasoning,
	}
}
