package searchengine

// Query helpers build the raw map[string]any bodies the engine accepts.
// Keeping these as small composable functions (rather than a generated
// client's strongly-typed request structs) mirrors how
// original_source/backend/backend/es/filter_converter.py assembles query
// dicts, and keeps the boundary field names (spec §4.7) exactly as specified
// without a remapping layer.

// Term builds an exact-match clause on field.
func Term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// MustNot negates clause.
func MustNot(clause map[string]any) map[string]any {
	return map[string]any{"bool": map[string]any{"must_not": clause}}
}

// Range builds a range clause. bound is one of "gt", "gte", "lt", "lte".
func Range(field string, bound string, value any) map[string]any {
	return map[string]any{"range": map[string]any{field: map[string]any{bound: value}}}
}

// BoolMust combines clauses with AND semantics. A single clause is returned
// unwrapped (spec §4.7: "Single-clause shortcuts omit the bool wrapper").
func BoolMust(clauses ...map[string]any) map[string]any {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return map[string]any{"bool": map[string]any{"must": clauses}}
}

// BoolShould combines clauses with OR semantics and
// minimum_should_match=1. A single clause is returned unwrapped.
func BoolShould(clauses ...map[string]any) map[string]any {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return map[string]any{
		"bool": map[string]any{
			"should":               clauses,
			"minimum_should_match": 1,
		},
	}
}

// MatchAll builds the fallback query used when there are neither filters
// nor a query vector.
func MatchAll() map[string]any {
	return map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
}

// FilterOnly wraps a boolean predicate tree as a plain query (no vector leg).
func FilterOnly(filterQuery map[string]any) map[string]any {
	return map[string]any{"query": filterQuery}
}

// ScriptScore wraps filterQuery in a script-score query that ranks by cosine
// similarity against vectorField, shifted by +1.0 to keep scores
// non-negative (spec §4.7).
func ScriptScore(filterQuery map[string]any, vectorField string, queryVector []float32) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"script_score": map[string]any{
				"query": filterQuery,
				"script": map[string]any{
					"source": "cosineSimilarity(params.query_vector, '" + vectorField + "') + 1.0",
					"params": map[string]any{"query_vector": queryVector},
				},
			},
		},
	}
}

// KNN builds a pure kNN clause with k=size and num_candidates=10*size.
func KNN(vectorField string, queryVector []float32, size int) map[string]any {
	return map[string]any{
		"knn": map[string]any{
			"field":          vectorField,
			"query_vector":   queryVector,
			"k":              size,
			"num_candidates": size * 10,
		},
	}
}
