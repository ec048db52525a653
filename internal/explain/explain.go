// Package explain implements the Explanation Engine (spec §4.8): produces a
// per-result rationale for a search response, batching language-model calls
// across the results not already served by the cache, and falling back to a
// rule-based explanation for anything the model call can't cover.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/driftwell/discoveryengine/internal/company"
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/llm"
	"github.com/driftwell/discoveryengine/internal/thesis"
)

// Scored pairs a hydrated Company with its engine relevance score, the
// input unit for a batch explanation request.
type Scored struct {
	Company company.Company
	Score   float64
}

const systemPrompt = `You write one-sentence explanations of why each company in a list matches a
user's search query and filters. Be specific: name the matched attribute (industry, location,
funding stage, or a concept from the query) rather than a generic statement. One sentence per
company.`

type llmItem struct {
	CompanyID   int64  `json:"company_id"`
	Explanation string `json:"explanation"`
}

type llmRequest struct {
	Query          string       `json:"query"`
	AppliedFilters string       `json:"applied_filters"`
	Companies      []llmCompany `json:"companies"`
}

type llmCompany struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Industries     []string `json:"industries"`
	TargetMarkets  []string `json:"target_markets"`
	BusinessModels []string `json:"business_models"`
	RevenueModels  []string `json:"revenue_models"`
	Location       string   `json:"location"`
	Stage          string   `json:"stage"`
	FundingAmount  *int64   `json:"funding_amount,omitempty"`
	EmployeeCount  *int     `json:"employee_count,omitempty"`
}

type llmResponseSchema struct {
	Explanations []llmItem `json:"explanations"`
}

// ExplainBatch implements `explain-batch(results[], query, applied-filters) →
// mapping id→explanation` (spec §4.8): one explanation per result id,
// order-independent.
func ExplainBatch(ctx context.Context, model llm.ChatModel, cache *Cache, results []Scored, query string, appliedFilters filterdsl.QueryFilters, thesisCtx *thesis.Context) map[int64]string {
	out := make(map[int64]string, len(results))
	if len(results) == 0 {
		return out
	}

	digest := NormalizeQuery(query)

	var uncached []Scored
	for _, r := range results {
		if cache != nil {
			if explanation, ok := cache.Get(r.Company.ID, digest); ok {
				out[r.Company.ID] = explanation
				continue
			}
		}
		uncached = append(uncached, r)
	}

	if len(uncached) > 0 {
		fresh := callModel(ctx, model, uncached, query, appliedFilters)
		for id, explanation := range fresh {
			out[id] = explanation
			if cache != nil {
				cache.Set(id, digest, explanation)
			}
		}
	}

	for _, r := range results {
		if _, ok := out[r.Company.ID]; ok {
			continue
		}
		out[r.Company.ID] = ruleBased(r, appliedFilters, thesisCtx)
	}

	return out
}

// callModel issues the single batch language-model call for items and
// tolerates either a JSON array, an object with an "explanations" or
// "companies" key, or a lone object (spec §4.8 steps 3-4). Any failure
// returns an empty map; the caller falls back per-id to the rule-based
// explanation.
func callModel(ctx context.Context, model llm.ChatModel, items []Scored, query string, appliedFilters filterdsl.QueryFilters) map[int64]string {
	req := llmRequest{
		Query:          query,
		AppliedFilters: summarizeFilters(appliedFilters),
	}
	for _, item := range items {
		req.Companies = append(req.Companies, toLLMCompany(item.Company))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil
	}

	schema, err := llm.SchemaOf(llmResponseSchema{})
	if err != nil {
		return nil
	}

	resp, err := model.Complete(ctx, &llm.Request{
		Messages: []llm.Message{
			llm.System(systemPrompt),
			llm.User(string(body)),
		},
		ResponseSchema: schema,
		SchemaName:     "batch_explanations",
	})
	if err != nil {
		return nil
	}

	parsed := parseExplanations(resp.Text)
	out := make(map[int64]string, len(parsed))
	for _, item := range parsed {
		if item.CompanyID == 0 || item.Explanation == "" {
			continue
		}
		out[item.CompanyID] = item.Explanation
	}
	return out
}

// parseExplanations tolerates the response shapes named in spec §4.8 step
// 4: a top-level array, `{explanations: [...]}`, `{companies: [...]}`, or a
// single object (wrapped into a one-element list).
func parseExplanations(text string) []llmItem {
	var asArray []llmItem
	if err := json.Unmarshal([]byte(text), &asArray); err == nil {
		return asArray
	}

	var asWrapped struct {
		Explanations []llmItem `json:"explanations"`
		Companies    []llmItem `json:"companies"`
	}
	if err := json.Unmarshal([]byte(text), &asWrapped); err == nil {
		if len(asWrapped.Explanations) > 0 {
			return asWrapped.Explanations
		}
		if len(asWrapped.Companies) > 0 {
			return asWrapped.Companies
		}
	}

	var single llmItem
	if err := json.Unmarshal([]byte(text), &single); err == nil && single.CompanyID != 0 {
		return []llmItem{single}
	}

	return nil
}

func toLLMCompany(c company.Company) llmCompany {
	return llmCompany{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Industries:     c.Industries,
		TargetMarkets:  c.TargetMarkets,
		BusinessModels: c.BusinessModels,
		RevenueModels:  c.RevenueModels,
		Location:       c.Location,
		Stage:          c.FundingStage,
		FundingAmount:  c.FundingAmountUSD,
		EmployeeCount:  c.EmployeeCount,
	}
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

// ruleBased builds the §4.8.1 fallback explanation: a per-filter match
// description plus a coarse relevance band from the engine score, with a
// thesis-aware strategic-fit sentence prepended for thesis queries.
func ruleBased(r Scored, appliedFilters filterdsl.QueryFilters, thesisCtx *thesis.Context) string {
	var sentences []string

	if strategic := strategicFitSentence(r.Company, thesisCtx); strategic != "" {
		sentences = append(sentences, strategic)
	}

	for _, sf := range appliedFilters.Filters {
		if s := matchDescription(r.Company, sf); s != "" {
			sentences = append(sentences, s)
		}
	}

	sentences = append(sentences, relevanceBand(r.Score))

	return strings.Join(sentences, " ")
}

// relevanceBand normalizes the engine score back to [0,1] (subtracting 1
// when >1, since cosine-similarity legs are shifted by +1.0 in
// internal/searchengine.ScriptScore) and bands it (spec §4.8.1).
func relevanceBand(score float64) string {
	normalized := score
	if normalized > 1 {
		normalized -= 1
	}
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	switch {
	case normalized >= 0.75:
		return "High semantic relevance to the query."
	case normalized >= 0.35:
		return "Good semantic relevance to the query."
	default:
		return "Some semantic relevance to the query."
	}
}

func matchDescription(c company.Company, sf filterdsl.SegmentFilter) string {
	field := string(sf.Segment)
	for _, r := range sf.Rules {
		switch r.Op {
		case filterdsl.EQ:
			return fmt.Sprintf("Matches %s = %s.", field, r.Value.AsText())
		case filterdsl.NEQ:
			return fmt.Sprintf("Excludes %s = %s.", field, r.Value.AsText())
		case filterdsl.GT, filterdsl.GTE:
			return fmt.Sprintf("Meets %s >= %s.", field, formatValue(field, r.Value))
		case filterdsl.LT, filterdsl.LTE:
			return fmt.Sprintf("Meets %s <= %s.", field, formatValue(field, r.Value))
		}
	}
	return ""
}

func formatValue(field string, v filterdsl.Value) string {
	if field == "funding_amount" {
		digits := fmt.Sprintf("%.0f", v.AsNumber())
		sign := ""
		if strings.HasPrefix(digits, "-") {
			sign, digits = "-", digits[1:]
		}
		for i := len(digits) - 3; i > 0; i -= 3 {
			digits = digits[:i] + "," + digits[i:]
		}
		return sign + "$" + digits
	}
	return v.AsText()
}

// strategicFitSentence names the matched complementary-area (portfolio
// queries) or matched industry/technology/business-model concept
// (conceptual queries) per spec §4.8.1.
func strategicFitSentence(c company.Company, thesisCtx *thesis.Context) string {
	if thesisCtx == nil {
		return ""
	}

	switch thesisCtx.Type {
	case thesis.TypePortfolio:
		if area := firstOverlap(thesisCtx.ComplementaryAreas, c.Industries); area != "" {
			return fmt.Sprintf("Fills the %q gap identified in your portfolio.", area)
		}
		if len(thesisCtx.ComplementaryAreas) > 0 {
			return fmt.Sprintf("Complements your portfolio's focus on %s.", thesisCtx.ComplementaryAreas[0])
		}
	case thesis.TypeConceptual:
		if thesisCtx.CoreConcepts == nil {
			return ""
		}
		if concept := firstOverlap(thesisCtx.CoreConcepts.Industries, c.Industries); concept != "" {
			return fmt.Sprintf("Aligns with the %q industry in your thesis.", concept)
		}
		if concept := firstOverlap(thesisCtx.CoreConcepts.BusinessModel, c.BusinessModels); concept != "" {
			return fmt.Sprintf("Aligns with the %q business model in your thesis.", concept)
		}
		if len(thesisCtx.CoreConcepts.Technology) > 0 {
			return fmt.Sprintf("Relevant to the %q technology concept in your thesis.", thesisCtx.CoreConcepts.Technology[0])
		}
	}
	return ""
}

func firstOverlap(candidates, values []string) string {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	for _, c := range candidates {
		if set[strings.ToLower(c)] {
			return c
		}
	}
	return ""
}
