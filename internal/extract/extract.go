// Package extract implements the Filter Extractor (spec §4.4): a
// language-model call that proposes a structured filter object from a
// query, followed by per-segment canonicalization of text values against
// the controlled vocabulary and tracking of vocabulary misses.
package extract

import (
	"context"

	"github.com/samber/lo"

	"github.com/driftwell/discoveryengine/internal/canonicalize"
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/llm"
	"github.com/driftwell/discoveryengine/internal/segment"
	"github.com/driftwell/discoveryengine/internal/vocabulary"
)

// defaultQualityThreshold is the canonicalization acceptance threshold
// used for extraction; it is not itself an Open Question of the spec
// (only the ≤3-char floor and the formula are), so a single fixed value
// is used across every extracted segment.
const defaultQualityThreshold = 0.65

const systemPrompt = `You extract structured search filters from a natural-language company-discovery query.
Only propose a filter segment when the query states a concrete constraint; do not invent values.
Valid segments: location, industries, target_markets, business_models, revenue_models, funding_stage
(text values, operators EQ/NEQ), employee_count, funding_amount, stage_order (numeric values,
operators EQ/NEQ/GT/GTE/LT/LTE). Logic per segment and at the top level is AND or OR.`

type llmRule struct {
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type llmSegmentFilter struct {
	Segment string    `json:"segment"`
	Logic   string    `json:"logic"`
	Rules   []llmRule `json:"rules"`
}

type llmQueryFilters struct {
	Logic   string             `json:"logic"`
	Filters []llmSegmentFilter `json:"filters"`
}

func normalizeLogic(raw string) filterdsl.Logic {
	l := filterdsl.Logic(raw)
	if filterdsl.ValidLogic(l) {
		return l
	}
	return filterdsl.AND
}

// Extract runs the full extraction pipeline described in spec §4.4.
// Any failure in the language-model call returns the empty QueryFilters.
func Extract(
	ctx context.Context,
	model llm.ChatModel,
	canon *canonicalize.Canonicalizer,
	vocab vocabulary.Store,
	query string,
	excludedValues []filterdsl.ExcludedFilterValue,
) filterdsl.QueryFilters {
	raw, err := llm.Structured[llmQueryFilters](ctx, model, []llm.Message{
		llm.System(systemPrompt),
		llm.User(query),
	})
	if err != nil {
		return filterdsl.Empty()
	}

	// Step 3: split into funding-stage (exact-match validated) and
	// fuzzy-canonicalized segments so the latter can batch in one round
	// trip per segment.
	byRaws := make(map[segment.Name][]string)
	for _, sf := range raw.Filters {
		seg := segment.Name(sf.Segment)
		if !segment.Known(seg) || segment.KindOf(seg) != segment.KindText || seg == segment.FundingStage {
			continue
		}
		for _, r := range sf.Rules {
			if s, ok := r.Value.(string); ok {
				byRaws[seg] = append(byRaws[seg], s)
			}
		}
	}

	canonMapping, _ := canon.CanonicalizeSegments(ctx, byRaws, defaultQualityThreshold)

	var filters []filterdsl.SegmentFilter
	for _, sf := range raw.Filters {
		seg := segment.Name(sf.Segment)
		if !segment.Known(seg) {
			continue
		}
		logic := normalizeLogic(sf.Logic) // step 2: scrub bad logic tokens

		var rules []filterdsl.Rule
		switch {
		case seg == segment.FundingStage:
			rules = validateFundingStage(ctx, vocab, sf.Rules)
		case segment.KindOf(seg) == segment.KindText:
			rules = canonicalizeRules(ctx, vocab, seg, sf.Rules, canonMapping[seg])
		default:
			rules = coerceNumericRules(sf.Rules)
		}
		if len(rules) == 0 {
			continue
		}

		built, err := filterdsl.NewSegmentFilter(seg, logic, rules)
		if err != nil {
			continue
		}
		filters = append(filters, built)
	}

	filters = applyDomainExpansion(filters)

	result := filterdsl.QueryFilters{Logic: normalizeLogic(raw.Logic), Filters: filters}
	result = filterdsl.ApplyExclusions(result, excludedValues)
	return result
}

func validateFundingStage(ctx context.Context, vocab vocabulary.Store, rules []llmRule) []filterdsl.Rule {
	var out []filterdsl.Rule
	for _, r := range rules {
		raw, ok := r.Value.(string)
		if !ok {
			continue
		}
		canonical, found, err := vocab.ExactMatch(ctx, segment.FundingStage, raw)
		if err != nil || !found {
			continue
		}
		op := filterdsl.Operator(r.Operator)
		if !filterdsl.ValidForText(op) {
			continue
		}
		out = append(out, filterdsl.NewRule(op, filterdsl.Text(canonical)))
	}
	return dedupeRules(out)
}

func canonicalizeRules(ctx context.Context, vocab vocabulary.Store, seg segment.Name, rules []llmRule, mapping map[string][]string) []filterdsl.Rule {
	var out []filterdsl.Rule
	for _, r := range rules {
		raw, ok := r.Value.(string)
		if !ok {
			continue
		}
		op := filterdsl.Operator(r.Operator)
		if !filterdsl.ValidForText(op) {
			continue
		}

		matches := mapping[raw]
		if len(matches) == 0 {
			_ = vocab.RecordUnknown(ctx, seg, raw)
			continue
		}
		for _, canonical := range matches {
			out = append(out, filterdsl.NewRule(op, filterdsl.Text(canonical)))
		}
	}
	return dedupeRules(out)
}

func coerceNumericRules(rules []llmRule) []filterdsl.Rule {
	var out []filterdsl.Rule
	for _, r := range rules {
		op := filterdsl.Operator(r.Operator)
		if !filterdsl.ValidForNumeric(op) {
			continue
		}
		value, err := filterdsl.FromAny(r.Value, false)
		if err != nil {
			continue
		}
		out = append(out, filterdsl.NewRule(op, value))
	}
	return out
}

// dedupeRules removes rules with an identical (operator, value) pair,
// matching spec §4.4 step 3's "deduplicate within the segment by
// (canonical value)" — distinct raw inputs frequently canonicalize to the
// same value.
func dedupeRules(rules []filterdsl.Rule) []filterdsl.Rule {
	return lo.UniqBy(rules, func(r filterdsl.Rule) string {
		return string(r.Op) + "|" + r.Value.AsText()
	})
}

// applyDomainExpansion implements spec §4.4 step 4: if business_models
// contains a SaaS subtype without the parent "SaaS" category, add it.
func applyDomainExpansion(filters []filterdsl.SegmentFilter) []filterdsl.SegmentFilter {
	for i, sf := range filters {
		if sf.Segment != segment.BusinessModels {
			continue
		}

		values := lo.Map(sf.Rules, func(r filterdsl.Rule, _ int) string { return r.Value.AsText() })
		hasSubtype := lo.Contains(values, "Vertical SaaS") || lo.Contains(values, "Horizontal SaaS")
		hasSaaS := lo.Contains(values, "SaaS")

		if hasSubtype && !hasSaaS {
			filters[i].Rules = append(filters[i].Rules, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("SaaS")))
		}
	}
	return filters
}
