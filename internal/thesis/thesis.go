// Package thesis implements the Thesis Expander (spec §4.3): for
// portfolio-analysis or conceptual queries, produce an expanded search
// query plus a structured thesis context describing the reasoning behind
// it. Both entry points are language-model calls with structured-output
// schemas; either returns nil on failure and the pipeline proceeds with
// the original query.
package thesis

import (
	"context"

	"github.com/driftwell/discoveryengine/internal/llm"
)

// Type discriminates the tagged-union Context (spec §3 "Thesis context").
type Type string

const (
	TypePortfolio  Type = "portfolio"
	TypeConceptual Type = "conceptual"
)

// CoreConcepts is the conceptual-context payload.
type CoreConcepts struct {
	Technology    []string `json:"technology"`
	BusinessModel []string `json:"business_model"`
	Industries    []string `json:"industries"`
	UseCase       string   `json:"use_case"`
}

// Context is the tagged-union thesis output, returned verbatim to the
// client as purely informational metadata.
type Context struct {
	Type Type `json:"type"`

	Summary string `json:"summary"`

	// Portfolio fields.
	Themes             []string `json:"themes,omitempty"`
	Gaps               []string `json:"gaps,omitempty"`
	ComplementaryAreas []string `json:"complementary_areas,omitempty"`
	StrategicReasoning string   `json:"strategic_reasoning,omitempty"`

	// Conceptual fields.
	CoreConcepts   *CoreConcepts `json:"core_concepts,omitempty"`
	StrategicFocus string        `json:"strategic_focus,omitempty"`
}

// Expansion is the pair an entry point returns on success.
type Expansion struct {
	ExpandedQuery string
	Context       Context
}

type portfolioSchema struct {
	ExpandedQuery      string   `json:"expanded_query"`
	Summary            string   `json:"summary"`
	Themes             []string `json:"themes"`
	Gaps               []string `json:"gaps"`
	ComplementaryAreas []string `json:"complementary_areas"`
	StrategicReasoning string   `json:"strategic_reasoning"`
}

const portfolioSystemPrompt = `You analyze an investor's described portfolio holdings.
Extract the underlying themes, identify gaps in the portfolio, and propose complementary
investment areas that would diversify or strengthen it. Produce a concise expanded search
query (industry/technology/business-model keywords only, no investor framing) that a
semantic search engine can embed.`

// AnalyzePortfolio implements the portfolio entry point. Returns nil on
// failure.
func AnalyzePortfolio(ctx context.Context, model llm.ChatModel, query string) *Expansion {
	out, err := llm.Structured[portfolioSchema](ctx, model, []llm.Message{
		llm.System(portfolioSystemPrompt),
		llm.User(query),
	})
	if err != nil || out.ExpandedQuery == "" {
		return nil
	}

	return &Expansion{
		ExpandedQuery: out.ExpandedQuery,
		Context: Context{
			Type:               TypePortfolio,
			Summary:            out.Summary,
			Themes:             out.Themes,
			Gaps:               out.Gaps,
			ComplementaryAreas: out.ComplementaryAreas,
			StrategicReasoning: out.StrategicReasoning,
		},
	}
}

type conceptualSchema struct {
	ExpandedQuery  string       `json:"expanded_query"`
	Summary        string       `json:"summary"`
	CoreConcepts   CoreConcepts `json:"core_concepts"`
	StrategicFocus string       `json:"strategic_focus"`
}

const conceptualSystemPrompt = `You decompose an abstract investment thesis or theme into concrete,
filterable terms: relevant technologies, business models, industries, and the core use case.
Produce a concise expanded search query (industry/technology/business-model keywords only)
that a semantic search engine can embed.`

// ExpandConceptual implements the conceptual entry point. Returns nil on
// failure.
func ExpandConceptual(ctx context.Context, model llm.ChatModel, query string) *Expansion {
	out, err := llm.Structured[conceptualSchema](ctx, model, []llm.Message{
		llm.System(conceptualSystemPrompt),
		llm.User(query),
	})
	if err != nil || out.ExpandedQuery == "" {
		return nil
	}

	concepts := out.CoreConcepts
	return &Expansion{
		ExpandedQuery: out.ExpandedQuery,
		Context: Context{
			Type:           TypeConceptual,
			Summary:        out.Summary,
			CoreConcepts:   &concepts,
			StrategicFocus: out.StrategicFocus,
		},
	}
}
