// Package httpapi is the HTTP surface described in spec §6: a thin
// transport layer in front of the orchestrator. It owns request/response
// wire types and their conversion to/from the internal domain packages —
// filterdsl and company expose no json tags of their own (they are pure
// domain types; wire format is a transport concern), so this package is
// where that boundary is drawn, mirroring the decode-into-`any`-then-build
// shape internal/extract already uses for loosely-typed filter JSON.
package httpapi

import (
	"github.com/driftwell/discoveryengine/internal/company"
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/segment"
	"github.com/driftwell/discoveryengine/internal/thesis"
)

// ruleDTO is the wire shape of a single filterdsl.Rule.
type ruleDTO struct {
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value" validate:"required"`
}

// segmentFilterDTO is the wire shape of a filterdsl.SegmentFilter.
type segmentFilterDTO struct {
	Segment string    `json:"segment" validate:"required"`
	Logic   string    `json:"logic" validate:"required,oneof=AND OR"`
	Rules   []ruleDTO `json:"rules" validate:"required,min=1,dive"`
}

// queryFiltersDTO is the wire shape of a filterdsl.QueryFilters.
type queryFiltersDTO struct {
	Logic   string             `json:"logic" validate:"omitempty,oneof=AND OR"`
	Filters []segmentFilterDTO `json:"filters" validate:"dive"`
}

// excludedValueDTO is the wire shape of a filterdsl.ExcludedFilterValue.
type excludedValueDTO struct {
	Segment  string `json:"segment" validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value" validate:"required"`
}

// submitQueryRequest is the body of POST /api/submit-query (spec §6).
type submitQueryRequest struct {
	Query          string             `json:"query" validate:"omitempty,max=2000"`
	Filters        *queryFiltersDTO   `json:"filters"`
	ExcludedValues []excludedValueDTO `json:"excluded_values" validate:"dive"`
}

// toQueryFilters converts a decoded DTO into filterdsl.QueryFilters,
// dropping (per spec §7 "client errors") anything that fails validation
// rather than rejecting the whole request — the orchestrator already
// tolerates an under-populated filter set.
func toQueryFilters(dto *queryFiltersDTO) filterdsl.QueryFilters {
	if dto == nil {
		return filterdsl.Empty()
	}

	logic := filterdsl.Logic(dto.Logic)
	if !filterdsl.ValidLogic(logic) {
		logic = filterdsl.AND
	}

	var filters []filterdsl.SegmentFilter
	for _, sfDTO := range dto.Filters {
		name := segment.Name(sfDTO.Segment)
		if !segment.Known(name) {
			continue
		}
		rules := toRules(name, sfDTO.Rules)
		if len(rules) == 0 {
			continue
		}
		sfLogic := filterdsl.Logic(sfDTO.Logic)
		if !filterdsl.ValidLogic(sfLogic) {
			sfLogic = filterdsl.AND
		}
		built, err := filterdsl.NewSegmentFilter(name, sfLogic, rules)
		if err != nil {
			continue
		}
		filters = append(filters, built)
	}

	return filterdsl.QueryFilters{Logic: logic, Filters: filters}
}

func toRules(name segment.Name, dtos []ruleDTO) []filterdsl.Rule {
	isText := segment.KindOf(name) == segment.KindText
	var out []filterdsl.Rule
	for _, r := range dtos {
		op := filterdsl.Operator(r.Operator)
		value, err := filterdsl.FromAny(r.Value, isText)
		if err != nil {
			continue
		}
		valid := filterdsl.ValidForText(op)
		if !isText {
			valid = filterdsl.ValidForNumeric(op)
		}
		if !valid {
			continue
		}
		out = append(out, filterdsl.NewRule(op, value))
	}
	return out
}

func toExcludedValues(dtos []excludedValueDTO) []filterdsl.ExcludedFilterValue {
	var out []filterdsl.ExcludedFilterValue
	for _, e := range dtos {
		name := segment.Name(e.Segment)
		if !segment.Known(name) {
			continue
		}
		isText := segment.KindOf(name) == segment.KindText
		value, err := filterdsl.FromAny(e.Value, isText)
		if err != nil {
			continue
		}
		out = append(out, filterdsl.ExcludedFilterValue{
			Segment: name,
			Op:      filterdsl.Operator(e.Operator),
			Value:   value,
		})
	}
	return out
}

// fromQueryFilters is the inverse conversion, used to echo applied_filters
// back in the response (spec §6).
func fromQueryFilters(q filterdsl.QueryFilters) queryFiltersDTO {
	out := queryFiltersDTO{Logic: string(q.Logic)}
	for _, sf := range q.Filters {
		rules := make([]ruleDTO, 0, len(sf.Rules))
		for _, r := range sf.Rules {
			rules = append(rules, ruleDTO{Operator: string(r.Op), Value: ruleValue(r.Value)})
		}
		out.Filters = append(out.Filters, segmentFilterDTO{
			Segment: string(sf.Segment),
			Logic:   string(sf.Logic),
			Rules:   rules,
		})
	}
	return out
}

func ruleValue(v filterdsl.Value) any {
	if v.IsText() {
		return v.AsText()
	}
	return v.AsNumber()
}

// companyResponse is a single CompanyResponse (spec §6). company_id
// duplicates id verbatim; the spec lists both names as separate optional
// fields on the wire contract, most likely a holdover from the original
// service's response shape, so both are populated.
type companyResponse struct {
	ID            int64    `json:"id"`
	CompanyName   string   `json:"company_name"`
	CompanyID     int64    `json:"company_id,omitempty"`
	City          string   `json:"city,omitempty"`
	Description   string   `json:"description,omitempty"`
	WebsiteURL    string   `json:"website_url,omitempty"`
	EmployeeCount *int     `json:"employee_count,omitempty"`
	Stage         string   `json:"stage,omitempty"`
	FundingAmount *int64   `json:"funding_amount,omitempty"`
	Location      string   `json:"location,omitempty"`
	Industries    []string `json:"industries"`
	TargetMarkets []string `json:"target_markets"`
	Explanation   string   `json:"explanation,omitempty"`
}

func toCompanyResponse(c company.Company, explanation string) companyResponse {
	return companyResponse{
		ID:            c.ID,
		CompanyName:   c.Name,
		CompanyID:     c.ID,
		City:          c.Location,
		Description:   c.Description,
		WebsiteURL:    c.WebsiteURL,
		EmployeeCount: c.EmployeeCount,
		Stage:         c.FundingStage,
		FundingAmount: c.FundingAmountUSD,
		Location:      c.Location,
		Industries:    c.Industries,
		TargetMarkets: c.TargetMarkets,
		Explanation:   explanation,
	}
}

// submitQueryResponse is the body of POST /api/submit-query's 200 response.
type submitQueryResponse struct {
	Companies      []companyResponse `json:"companies"`
	AppliedFilters queryFiltersDTO   `json:"applied_filters"`
	ThesisContext  *thesis.Context   `json:"thesis_context"`
}

// errorResponse is the body of every 4xx/5xx response.
type errorResponse struct {
	Error string `json:"error"`
}
