package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/segment"
)

func sf(t *testing.T, name segment.Name, logic filterdsl.Logic, rules ...filterdsl.Rule) filterdsl.SegmentFilter {
	t.Helper()
	out, err := filterdsl.NewSegmentFilter(name, logic, rules)
	require.NoError(t, err)
	return out
}

func TestMerge_UserOverridesSegment(t *testing.T) {
	user := filterdsl.QueryFilters{Logic: filterdsl.AND, Filters: []filterdsl.SegmentFilter{
		sf(t, segment.Location, filterdsl.AND, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("New York"))),
	}}
	extracted := filterdsl.QueryFilters{Logic: filterdsl.AND, Filters: []filterdsl.SegmentFilter{
		sf(t, segment.Location, filterdsl.AND, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("San Francisco"))),
		sf(t, segment.FundingStage, filterdsl.AND, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("Series A"))),
	}}

	got := Merge(user, extracted, nil)

	loc, ok := got.Get(segment.Location)
	require.True(t, ok)
	assert.Equal(t, "New York", loc.Rules[0].Value.AsText())

	_, hasStage := got.Get(segment.FundingStage)
	assert.True(t, hasStage, "non-overridden extracted segments are retained")
}

func TestMerge_ExcludedValueDroppedFromBothSides(t *testing.T) {
	extracted := filterdsl.QueryFilters{Logic: filterdsl.AND, Filters: []filterdsl.SegmentFilter{
		sf(t, segment.Industries, filterdsl.OR, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("FinTech"))),
	}}
	excluded := []filterdsl.ExcludedFilterValue{
		{Segment: segment.Industries, Op: filterdsl.EQ, Value: filterdsl.Text("FinTech")},
	}

	got := Merge(filterdsl.Empty(), extracted, excluded)
	_, ok := got.Get(segment.Industries)
	assert.False(t, ok)
}

func TestMerge_TopLevelLogicPrefersUser(t *testing.T) {
	user := filterdsl.QueryFilters{Logic: filterdsl.OR, Filters: []filterdsl.SegmentFilter{
		sf(t, segment.Location, filterdsl.AND, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("NYC"))),
	}}
	extracted := filterdsl.QueryFilters{Logic: filterdsl.AND}

	got := Merge(user, extracted, nil)
	assert.Equal(t, filterdsl.OR, got.Logic)
}

func TestMerge_TopLevelLogicFallsBackToExtracted(t *testing.T) {
	extracted := filterdsl.QueryFilters{Logic: filterdsl.OR, Filters: []filterdsl.SegmentFilter{
		sf(t, segment.Location, filterdsl.AND, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("NYC"))),
	}}

	got := Merge(filterdsl.Empty(), extracted, nil)
	assert.Equal(t, filterdsl.OR, got.Logic)
}

func TestMerge_DefaultsToAND(t *testing.T) {
	got := Merge(filterdsl.Empty(), filterdsl.Empty(), nil)
	assert.Equal(t, filterdsl.AND, got.Logic)
	assert.True(t, got.IsEmpty())
}
