// Package searchtranslate implements the Search Translator (spec §4.7):
// converts filterdsl.QueryFilters and an optional query vector into the
// engine query body, using internal/searchengine's DSL builder helpers.
package searchtranslate

import (
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/searchengine"
	"github.com/driftwell/discoveryengine/internal/segment"
)

// VectorField is the document field the kNN/script-score legs rank
// against (spec §4.7 "Field names at the boundary").
const VectorField = "description_vector"

// ToSearch builds the engine query body for filters and an optional
// queryVector, sized for size results.
func ToSearch(filters filterdsl.QueryFilters, queryVector []float32, size int) map[string]any {
	filterQuery := translateFilters(filters)

	switch {
	case filterQuery != nil && queryVector != nil:
		return searchengine.ScriptScore(filterQuery, VectorField, queryVector)
	case filterQuery != nil:
		return searchengine.FilterOnly(filterQuery)
	case queryVector != nil:
		return searchengine.KNN(VectorField, queryVector, size)
	default:
		return searchengine.MatchAll()
	}
}

// translateFilters builds the boolean predicate tree for filters, or nil
// if there are no segment filters at all (spec §4.7 case 4, "neither").
func translateFilters(filters filterdsl.QueryFilters) map[string]any {
	if filters.IsEmpty() {
		return nil
	}

	clauses := make([]map[string]any, 0, len(filters.Filters))
	for _, sf := range filters.Filters {
		clauses = append(clauses, translateSegment(sf))
	}

	if filters.Logic == filterdsl.OR {
		return searchengine.BoolShould(clauses...)
	}
	return searchengine.BoolMust(clauses...)
}

// translateSegment converts one SegmentFilter's rules into a single
// clause, combining multiple rules under the segment's intra-segment
// logic (spec §4.7 "Intra-segment logic").
func translateSegment(sf filterdsl.SegmentFilter) map[string]any {
	clauses := make([]map[string]any, 0, len(sf.Rules))
	for _, r := range sf.Rules {
		clauses = append(clauses, translateRule(sf, r))
	}

	if sf.Logic == filterdsl.OR {
		return searchengine.BoolShould(clauses...)
	}
	return searchengine.BoolMust(clauses...)
}

func translateRule(sf filterdsl.SegmentFilter, r filterdsl.Rule) map[string]any {
	field := string(sf.Segment)

	if sf.Kind == segment.KindNumeric {
		switch r.Op {
		case filterdsl.EQ:
			return searchengine.Term(field, r.Value.AsNumber())
		case filterdsl.NEQ:
			return searchengine.MustNot(searchengine.Term(field, r.Value.AsNumber()))
		case filterdsl.GT:
			return searchengine.Range(field, "gt", r.Value.AsNumber())
		case filterdsl.GTE:
			return searchengine.Range(field, "gte", r.Value.AsNumber())
		case filterdsl.LT:
			return searchengine.Range(field, "lt", r.Value.AsNumber())
		case filterdsl.LTE:
			return searchengine.Range(field, "lte", r.Value.AsNumber())
		}
	}

	// Text segment: only EQ/NEQ are valid (enforced by filterdsl).
	if r.Op == filterdsl.NEQ {
		return searchengine.MustNot(searchengine.Term(field, r.Value.AsText()))
	}
	return searchengine.Term(field, r.Value.AsText())
}
