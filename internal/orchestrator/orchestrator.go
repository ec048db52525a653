// Package orchestrator implements the Search Orchestrator (spec §4.9): the
// sequential, per-request pipeline that strings together every other
// pipeline stage and is what the HTTP layer actually calls.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/driftwell/discoveryengine/internal/canonicalize"
	"github.com/driftwell/discoveryengine/internal/classify"
	"github.com/driftwell/discoveryengine/internal/company"
	"github.com/driftwell/discoveryengine/internal/embeddings"
	"github.com/driftwell/discoveryengine/internal/explain"
	"github.com/driftwell/discoveryengine/internal/extract"
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/llm"
	"github.com/driftwell/discoveryengine/internal/merge"
	"github.com/driftwell/discoveryengine/internal/rewrite"
	"github.com/driftwell/discoveryengine/internal/safe"
	"github.com/driftwell/discoveryengine/internal/searchengine"
	"github.com/driftwell/discoveryengine/internal/searchtranslate"
	"github.com/driftwell/discoveryengine/internal/thesis"
	"github.com/driftwell/discoveryengine/internal/vocabulary"
)

// DefaultSize is used when the caller requests a non-positive page size.
const DefaultSize = 20

// Hydrator resolves engine-ranked ids into full Company records,
// preserving rank order (spec §4.9 step 9). Satisfied by *relational.DB;
// declared here so the orchestrator depends on the capability it needs
// rather than the relational package's concrete type.
type Hydrator interface {
	Hydrate(ctx context.Context, ids []int64) ([]company.Company, error)
}

// SearchEngine runs a single query body and returns its hits in rank
// order. Satisfied by *searchengine.Engine.
type SearchEngine interface {
	Search(ctx context.Context, index string, body map[string]any, size int) ([]searchengine.Hit, error)
}

// SearchLogger appends a row to the append-only search_logs table (spec
// §6). Satisfied by *relational.DB. Optional: a nil SearchLog on
// Orchestrator skips logging entirely rather than failing the request —
// this is analytics, not part of the pipeline's result contract.
type SearchLogger interface {
	LogSearch(ctx context.Context, query string) error
}

// Orchestrator wires every pipeline stage collaborator into the single
// sequential-by-data-dependence request flow (spec §4.9, §5). It holds no
// per-request state; every field is a process-wide singleton safe for
// concurrent use across requests.
type Orchestrator struct {
	Model    llm.ChatModel
	Embedder embeddings.Embedder
	Engine   SearchEngine
	DB       Hydrator
	Canon    *canonicalize.Canonicalizer
	Vocab    vocabulary.Store
	Cache    *explain.Cache

	// SearchLog records every non-empty query to search_logs (spec §6),
	// best-effort. Nil disables logging.
	SearchLog SearchLogger
	Logger    *zap.Logger

	// ConceptualExpansionEnabled gates pipeline step 3 (spec §4.9 step 3,
	// SPEC_FULL.md §10 config flag).
	ConceptualExpansionEnabled bool
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// RankedResult pairs a hydrated Company with its per-result explanation,
// in engine rank order.
type RankedResult struct {
	Company     company.Company
	Explanation string
}

// Response is the orchestrator's return value, matching the §4.9 contract
// `search(...) → (ranked [(record, explanation)], applied-filters,
// thesis-context)`.
type Response struct {
	Results        []RankedResult
	AppliedFilters filterdsl.QueryFilters
	ThesisContext  *thesis.Context
}

// Search runs the full 11-step pipeline described in spec §4.9. It never
// returns an error for auxiliary-model or search-engine degradation — those
// fall back per stage (spec §7) — only for the unrecoverable relational
// hydration failure named in spec §7 ("relational store down during
// hydration → 5xx").
func (o *Orchestrator) Search(ctx context.Context, query string, userFilters filterdsl.QueryFilters, excludedValues []filterdsl.ExcludedFilterValue, size int) (Response, error) {
	if size <= 0 {
		size = DefaultSize
	}

	if query != "" && o.SearchLog != nil {
		o.logSearchAsync(query)
	}

	searchQuery := query
	var thesisCtx *thesis.Context

	// Steps 1-3: classify, then conditionally expand.
	if query != "" {
		classification := classify.Classify(ctx, o.Model, query)

		switch {
		case classification.Class == classify.PortfolioAnalysis:
			if expansion := thesis.AnalyzePortfolio(ctx, o.Model, query); expansion != nil {
				searchQuery = expansion.ExpandedQuery
				thesisCtx = &expansion.Context
			}
		case classification.IsConceptual && o.ConceptualExpansionEnabled:
			if expansion := thesis.ExpandConceptual(ctx, o.Model, query); expansion != nil {
				searchQuery = expansion.ExpandedQuery
				thesisCtx = &expansion.Context
			}
		}
	}

	// Step 4: extract filters from the (possibly expanded) search query.
	extracted := extract.Extract(ctx, o.Model, o.Canon, o.Vocab, searchQuery, excludedValues)

	// Step 5: merge user-supplied and extracted filters.
	appliedFilters := merge.Merge(userFilters, extracted, excludedValues)

	// Step 6: rewrite, but only on the non-thesis path (a thesis expansion
	// already produced a keyword-dense query; rewriting it again would
	// re-introduce the framing the expander just stripped).
	if thesisCtx == nil && searchQuery != "" {
		searchQuery = rewrite.Rewrite(ctx, o.Model, searchQuery, appliedFilters)
	}

	// Step 7: embed, skipping if the search query is empty.
	var queryVector []float32
	if searchQuery != "" && o.Embedder != nil {
		if vec, err := o.Embedder.Embed(ctx, searchQuery); err == nil {
			queryVector = vec
		}
	}

	// Step 8: translate and run.
	body := searchtranslate.ToSearch(appliedFilters, queryVector, size)
	hits, err := o.Engine.Search(ctx, searchengine.CompanyIndex, body, size)
	if err != nil {
		hits = nil
	}

	ids := make([]int64, 0, len(hits))
	scoreByID := make(map[int64]float64, len(hits))
	for _, h := range hits {
		id, err := h.IDAsInt64()
		if err != nil {
			continue
		}
		ids = append(ids, id)
		scoreByID[id] = h.Score
	}

	// Step 9: hydrate, preserving engine rank order. A relational failure
	// here is unrecoverable (spec §7).
	companies, err := o.DB.Hydrate(ctx, ids)
	if err != nil {
		return Response{}, err
	}

	scored := make([]explain.Scored, 0, len(companies))
	for _, c := range companies {
		scored = append(scored, explain.Scored{Company: c, Score: scoreByID[c.ID]})
	}

	// Step 10: explain in batch.
	explanations := explain.ExplainBatch(ctx, o.Model, o.Cache, scored, searchQuery, appliedFilters, thesisCtx)

	results := make([]RankedResult, 0, len(companies))
	for _, c := range companies {
		results = append(results, RankedResult{Company: c, Explanation: explanations[c.ID]})
	}

	return Response{
		Results:        results,
		AppliedFilters: appliedFilters,
		ThesisContext:  thesisCtx,
	}, nil
}

// logSearchAsync records the query to search_logs off the request path: a
// slow or unavailable relational store must never add latency to, or fail,
// a search (spec §7). Runs detached from the request context, which is
// cancelled the moment the handler returns.
func (o *Orchestrator) logSearchAsync(query string) {
	safe.Go(func() {
		if err := o.SearchLog.LogSearch(context.Background(), query); err != nil {
			o.logger().Warn("orchestrator: search log write failed", zap.Error(err))
		}
	}, func(err error) {
		o.logger().Error("orchestrator: panic recovered in search log write", zap.Error(err))
	})
}
