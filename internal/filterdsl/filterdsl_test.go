package filterdsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwell/discoveryengine/internal/segment"
)

func TestNewSegmentFilter_RejectsUnknownSegment(t *testing.T) {
	_, err := NewSegmentFilter("not-a-segment", AND, []Rule{NewRule(EQ, Text("x"))})
	assert.Error(t, err)
}

func TestNewSegmentFilter_RejectsEmptyRules(t *testing.T) {
	_, err := NewSegmentFilter(segment.Industries, AND, nil)
	assert.Error(t, err)
}

func TestNewSegmentFilter_RejectsNumericOperatorOnTextSegment(t *testing.T) {
	_, err := NewSegmentFilter(segment.Location, AND, []Rule{NewRule(GT, Text("Austin"))})
	assert.Error(t, err)
}

func TestNewSegmentFilter_RejectsTextValueOnNumericSegment(t *testing.T) {
	_, err := NewSegmentFilter(segment.EmployeeCount, AND, []Rule{NewRule(EQ, Text("fifty"))})
	assert.Error(t, err)
}

func TestNewSegmentFilter_AcceptsWellFormedNumericFilter(t *testing.T) {
	sf, err := NewSegmentFilter(segment.EmployeeCount, AND, []Rule{NewRule(GTE, Number(50))})
	require.NoError(t, err)
	assert.Equal(t, segment.KindNumeric, sf.Kind)
}

func TestWithoutRules_DropsEntireFilterWhenNoneRemain(t *testing.T) {
	sf, err := NewSegmentFilter(segment.Industries, AND, []Rule{NewRule(EQ, Text("FinTech"))})
	require.NoError(t, err)

	_, ok := sf.WithoutRules(func(r Rule) bool { return true })
	assert.False(t, ok)
}

func TestWithoutRules_KeepsFilterWithRemainingRules(t *testing.T) {
	sf, err := NewSegmentFilter(segment.Industries, OR, []Rule{
		NewRule(EQ, Text("FinTech")),
		NewRule(EQ, Text("SaaS")),
	})
	require.NoError(t, err)

	kept, ok := sf.WithoutRules(func(r Rule) bool { return r.Value.AsText() == "SaaS" })
	require.True(t, ok)
	require.Len(t, kept.Rules, 1)
	assert.Equal(t, "FinTech", kept.Rules[0].Value.AsText())
}

func TestApplyExclusions_RemovesMatchingRuleAndDropsEmptiedSegment(t *testing.T) {
	q := QueryFilters{
		Logic: AND,
		Filters: []SegmentFilter{
			mustFilter(t, segment.Industries, AND, NewRule(EQ, Text("FinTech"))),
		},
	}
	excluded := []ExcludedFilterValue{{Segment: segment.Industries, Op: EQ, Value: Text("FinTech")}}

	got := ApplyExclusions(q, excluded)
	assert.True(t, got.IsEmpty())
}

func TestApplyExclusions_NoOpWhenNothingMatches(t *testing.T) {
	q := QueryFilters{
		Logic: AND,
		Filters: []SegmentFilter{
			mustFilter(t, segment.Industries, AND, NewRule(EQ, Text("FinTech"))),
		},
	}
	excluded := []ExcludedFilterValue{{Segment: segment.Location, Op: EQ, Value: Text("Austin")}}

	got := ApplyExclusions(q, excluded)
	assert.False(t, got.IsEmpty())
}

func TestFromAny_CoercesNumericStringForNumericSegment(t *testing.T) {
	v, err := FromAny("50", false)
	require.NoError(t, err)
	assert.Equal(t, float64(50), v.AsNumber())
}

func TestFromAny_RejectsNilValue(t *testing.T) {
	_, err := FromAny(nil, true)
	assert.Error(t, err)
}

func TestQueryFilters_GetAndSegments(t *testing.T) {
	q := QueryFilters{Filters: []SegmentFilter{
		mustFilter(t, segment.Industries, AND, NewRule(EQ, Text("FinTech"))),
	}}

	sf, ok := q.Get(segment.Industries)
	require.True(t, ok)
	assert.Equal(t, segment.Industries, sf.Segment)
	assert.True(t, q.Segments()[segment.Industries])
	_, ok = q.Get(segment.Location)
	assert.False(t, ok)
}

func mustFilter(t *testing.T, name segment.Name, logic Logic, rules ...Rule) SegmentFilter {
	t.Helper()
	sf, err := NewSegmentFilter(name, logic, rules)
	require.NoError(t, err)
	return sf
}
