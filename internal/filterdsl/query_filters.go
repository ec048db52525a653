package filterdsl

import "github.com/driftwell/discoveryengine/internal/segment"

// QueryFilters is the top-level, possibly-empty list of SegmentFilters
// combined under a top-level Logic.
type QueryFilters struct {
	Logic   Logic
	Filters []SegmentFilter
}

// Empty returns the canonical empty filter set: (AND, []).
func Empty() QueryFilters {
	return QueryFilters{Logic: AND, Filters: nil}
}

// IsEmpty reports whether there are no segment filters at all.
func (q QueryFilters) IsEmpty() bool {
	return len(q.Filters) == 0
}

// Get returns the SegmentFilter for name, if present.
func (q QueryFilters) Get(name segment.Name) (SegmentFilter, bool) {
	for _, sf := range q.Filters {
		if sf.Segment == name {
			return sf, true
		}
	}
	return SegmentFilter{}, false
}

// Segments returns the set of segment names present in q.
func (q QueryFilters) Segments() map[segment.Name]bool {
	out := make(map[segment.Name]bool, len(q.Filters))
	for _, sf := range q.Filters {
		out[sf.Segment] = true
	}
	return out
}

// ExcludedFilterValue forbids a specific (segment, operator, value) triple
// from re-appearing in merged filters, e.g. after a user dismisses a prior
// suggestion (spec §3, §4.5).
type ExcludedFilterValue struct {
	Segment segment.Name
	Op      Operator
	Value   Value
}

// Matches reports whether rule, scoped to segmentName, is the one this
// exclusion forbids.
func (e ExcludedFilterValue) Matches(segmentName segment.Name, rule Rule) bool {
	return e.Segment == segmentName && e.Op == rule.Op && e.Value.AsText() == rule.Value.AsText()
}

// ApplyExclusions removes every rule matching any entry in excluded from q,
// dropping any SegmentFilter whose rule list becomes empty as a result.
func ApplyExclusions(q QueryFilters, excluded []ExcludedFilterValue) QueryFilters {
	if len(excluded) == 0 || q.IsEmpty() {
		return q
	}

	out := QueryFilters{Logic: q.Logic}
	for _, sf := range q.Filters {
		filtered, ok := sf.WithoutRules(func(r Rule) bool {
			for _, ev := range excluded {
				if ev.Matches(sf.Segment, r) {
					return true
				}
			}
			return false
		})
		if ok {
			out.Filters = append(out.Filters, filtered)
		}
	}
	return out
}
