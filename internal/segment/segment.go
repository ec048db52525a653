// Package segment defines the named attribute axes a company can be filtered
// and canonicalized on, and which operators are valid for each.
package segment

// Kind classifies a Segment's value domain, which in turn determines which
// Operators are legal and whether the Segment Canonicalizer applies.
type Kind string

const (
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
)

// Name identifies a single filterable/canonicalizable attribute.
type Name string

const (
	Location        Name = "location"
	Industries      Name = "industries"
	TargetMarkets   Name = "target_markets"
	BusinessModels  Name = "business_models"
	RevenueModels   Name = "revenue_models"
	FundingStage    Name = "funding_stage"
	EmployeeCount   Name = "employee_count"
	FundingAmount   Name = "funding_amount"
	StageOrder      Name = "stage_order"
)

// textSegments are segments whose values are strings drawn from a controlled
// vocabulary (possibly via fuzzy canonicalization).
var textSegments = map[Name]bool{
	Location:       true,
	Industries:     true,
	TargetMarkets:  true,
	FundingStage:   true,
	BusinessModels: true,
	RevenueModels:  true,
}

// numericSegments are segments whose values are plain numbers.
var numericSegments = map[Name]bool{
	EmployeeCount: true,
	FundingAmount: true,
	StageOrder:    true,
}

// fuzzySegments are the text segments backed by a per-segment vocabulary
// index in the search engine and resolved via the Segment Canonicalizer's
// multi-strategy lookup. FundingStage is a text segment but is validated by
// exact case-insensitive match against the vocabulary table instead.
var fuzzySegments = map[Name]bool{
	Location:       true,
	Industries:     true,
	TargetMarkets:  true,
	BusinessModels: true,
	RevenueModels:  true,
}

// synonymSegments are the fuzzy segments that carry a seeded synonym list,
// which enables the extra synonym-driven scoring strategies in §4.1.
var synonymSegments = map[Name]bool{
	Industries:     true,
	BusinessModels: true,
	RevenueModels:  true,
}

// Known reports whether name is a recognized segment of any kind.
func Known(name Name) bool {
	return textSegments[name] || numericSegments[name]
}

// KindOf returns the Kind of a known segment, or "" if unknown.
func KindOf(name Name) Kind {
	switch {
	case textSegments[name]:
		return KindText
	case numericSegments[name]:
		return KindNumeric
	default:
		return ""
	}
}

// IsFuzzy reports whether name is resolved via the Segment Canonicalizer's
// multi-strategy search rather than exact match.
func IsFuzzy(name Name) bool {
	return fuzzySegments[name]
}

// HasSynonyms reports whether name's vocabulary index carries a seeded
// synonym analyzer.
func HasSynonyms(name Name) bool {
	return synonymSegments[name]
}

// All returns every known segment name in a stable order.
func All() []Name {
	return []Name{
		Location,
		Industries,
		TargetMarkets,
		BusinessModels,
		RevenueModels,
		FundingStage,
		EmployeeCount,
		FundingAmount,
		StageOrder,
	}
}
