// Package merge implements the Filter Merger (spec §4.5): combines
// user-supplied and model-extracted filters with per-segment override and
// value-level exclusion.
package merge

import "github.com/driftwell/discoveryengine/internal/filterdsl"

// Merge combines userFilters and extractedFilters per spec §4.5:
//  1. exclusions apply to both inputs first;
//  2. per-segment, a user-supplied SegmentFilter fully discards the
//     extracted one for that segment;
//  3. top-level logic prefers the user's, falling back to the extracted
//     side's, defaulting to AND.
func Merge(userFilters, extractedFilters filterdsl.QueryFilters, excludedValues []filterdsl.ExcludedFilterValue) filterdsl.QueryFilters {
	user := filterdsl.ApplyExclusions(userFilters, excludedValues)
	extracted := filterdsl.ApplyExclusions(extractedFilters, excludedValues)

	userSegments := user.Segments()

	merged := make([]filterdsl.SegmentFilter, 0, len(user.Filters)+len(extracted.Filters))
	merged = append(merged, user.Filters...)
	for _, sf := range extracted.Filters {
		if userSegments[sf.Segment] {
			continue
		}
		merged = append(merged, sf)
	}

	logic := filterdsl.AND
	switch {
	case !user.IsEmpty() && filterdsl.ValidLogic(user.Logic):
		logic = user.Logic
	case !extracted.IsEmpty() && filterdsl.ValidLogic(extracted.Logic):
		logic = extracted.Logic
	}

	return filterdsl.QueryFilters{Logic: logic, Filters: merged}
}
