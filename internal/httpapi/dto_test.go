package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/segment"
)

func TestToQueryFilters_NilDTOIsEmpty(t *testing.T) {
	got := toQueryFilters(nil)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, filterdsl.AND, got.Logic)
}

func TestToQueryFilters_UnknownSegmentIsDropped(t *testing.T) {
	dto := &queryFiltersDTO{
		Logic: "AND",
		Filters: []segmentFilterDTO{
			{Segment: "not-a-real-segment", Logic: "AND", Rules: []ruleDTO{{Operator: "EQ", Value: "x"}}},
		},
	}
	got := toQueryFilters(dto)
	assert.True(t, got.IsEmpty())
}

func TestToQueryFilters_NumericSegmentCoercesValue(t *testing.T) {
	dto := &queryFiltersDTO{
		Logic: "AND",
		Filters: []segmentFilterDTO{
			{Segment: "employee_count", Logic: "AND", Rules: []ruleDTO{{Operator: "GTE", Value: float64(50)}}},
		},
	}
	got := toQueryFilters(dto)
	sf, ok := got.Get(segment.EmployeeCount)
	require.True(t, ok)
	require.Len(t, sf.Rules, 1)
	assert.Equal(t, float64(50), sf.Rules[0].Value.AsNumber())
}

func TestToQueryFilters_InvalidOperatorForKindIsDropped(t *testing.T) {
	dto := &queryFiltersDTO{
		Logic: "AND",
		Filters: []segmentFilterDTO{
			{Segment: "location", Logic: "AND", Rules: []ruleDTO{{Operator: "GT", Value: "Austin"}}},
		},
	}
	got := toQueryFilters(dto)
	assert.True(t, got.IsEmpty())
}

func TestToExcludedValues_RoundTripsSegmentOpValue(t *testing.T) {
	dtos := []excludedValueDTO{
		{Segment: "industries", Operator: "EQ", Value: "FinTech"},
	}
	got := toExcludedValues(dtos)
	require.Len(t, got, 1)
	assert.Equal(t, segment.Industries, got[0].Segment)
	assert.Equal(t, filterdsl.EQ, got[0].Op)
	assert.Equal(t, "FinTech", got[0].Value.AsText())
}

func TestFromQueryFilters_RoundTripsThroughToQueryFilters(t *testing.T) {
	original := filterdsl.QueryFilters{
		Logic: filterdsl.AND,
		Filters: []filterdsl.SegmentFilter{
			mustSegmentFilter(t, segment.Industries, filterdsl.OR, filterdsl.NewRule(filterdsl.EQ, filterdsl.Text("FinTech"))),
		},
	}

	dto := fromQueryFilters(original)
	back := toQueryFilters(&dto)

	sf, ok := back.Get(segment.Industries)
	require.True(t, ok)
	require.Len(t, sf.Rules, 1)
	assert.Equal(t, "FinTech", sf.Rules[0].Value.AsText())
	assert.Equal(t, filterdsl.OR, sf.Logic)
}

func mustSegmentFilter(t *testing.T, name segment.Name, logic filterdsl.Logic, rules ...filterdsl.Rule) filterdsl.SegmentFilter {
	t.Helper()
	sf, err := filterdsl.NewSegmentFilter(name, logic, rules)
	require.NoError(t, err)
	return sf
}
