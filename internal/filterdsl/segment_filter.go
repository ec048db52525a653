package filterdsl

import (
	"fmt"

	"github.com/driftwell/discoveryengine/internal/segment"
)

// SegmentFilter is a single segment's constraint: a non-empty ordered list of
// Rules combined under an intra-segment Logic.
//
// Invariants (spec §3): Segment must be a known segment name; every Rule's
// operator must be valid for Kind; every Rule's Value must match Kind.
type SegmentFilter struct {
	Segment segment.Name
	Kind    segment.Kind
	Logic   Logic
	Rules   []Rule
}

// NewSegmentFilter validates and constructs a SegmentFilter.
func NewSegmentFilter(name segment.Name, logic Logic, rules []Rule) (SegmentFilter, error) {
	if !segment.Known(name) {
		return SegmentFilter{}, fmt.Errorf("filterdsl: unknown segment %q", name)
	}
	if !ValidLogic(logic) {
		return SegmentFilter{}, fmt.Errorf("filterdsl: invalid logic %q", logic)
	}
	if len(rules) == 0 {
		return SegmentFilter{}, fmt.Errorf("filterdsl: segment %q has no rules", name)
	}

	kind := segment.KindOf(name)
	for _, r := range rules {
		switch kind {
		case segment.KindText:
			if !ValidForText(r.Op) {
				return SegmentFilter{}, fmt.Errorf("filterdsl: operator %q invalid for text segment %q", r.Op, name)
			}
			if !r.Value.IsText() {
				return SegmentFilter{}, fmt.Errorf("filterdsl: non-text value on text segment %q", name)
			}
		case segment.KindNumeric:
			if !ValidForNumeric(r.Op) {
				return SegmentFilter{}, fmt.Errorf("filterdsl: operator %q invalid for numeric segment %q", r.Op, name)
			}
			if r.Value.IsText() {
				return SegmentFilter{}, fmt.Errorf("filterdsl: non-numeric value on numeric segment %q", name)
			}
		}
	}

	return SegmentFilter{Segment: name, Kind: kind, Logic: logic, Rules: rules}, nil
}

// WithoutRules returns a copy of sf containing only the rules for which drop
// returns false, or (zero, false) if none remain — callers must drop the
// SegmentFilter entirely in that case (spec §4.4 step 6, §4.5).
func (sf SegmentFilter) WithoutRules(drop func(Rule) bool) (SegmentFilter, bool) {
	kept := make([]Rule, 0, len(sf.Rules))
	for _, r := range sf.Rules {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return SegmentFilter{}, false
	}
	out := sf
	out.Rules = kept
	return out, true
}
