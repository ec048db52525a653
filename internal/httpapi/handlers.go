package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/orchestrator"
	"github.com/driftwell/discoveryengine/internal/research"
	"github.com/driftwell/discoveryengine/internal/segment"
	"github.com/driftwell/discoveryengine/internal/vocabulary"
)

// defaultResearchTimeout bounds a single company's research fan-out task
// (spec §5 "independent timeout per task").
const defaultResearchTimeout = 8 * time.Second

// Searcher is the orchestrator capability this handler needs. Satisfied by
// *orchestrator.Orchestrator; declared here so handlers can be tested
// against a fake instead of a fully wired pipeline.
type Searcher interface {
	Search(ctx context.Context, query string, userFilters filterdsl.QueryFilters, excludedValues []filterdsl.ExcludedFilterValue, size int) (orchestrator.Response, error)
}

// UnknownExtractionLister backs the admin collaborator endpoint (spec §6).
// Satisfied by *relational.DB.
type UnknownExtractionLister interface {
	ListUnknownExtractions(ctx context.Context) ([]vocabulary.UnknownExtraction, error)
}

// Handler holds the collaborators the HTTP surface calls through.
type Handler struct {
	Search     Searcher
	Vocab      vocabulary.Store
	Admin      UnknownExtractionLister
	Researcher research.Researcher
	Logger     *zap.Logger
	PageSize   int
}

func (h *Handler) researcher() research.Researcher {
	if h.Researcher != nil {
		return h.Researcher
	}
	return research.NoOp{}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger().Error("httpapi: encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// SubmitQuery handles POST /api/submit-query (spec §6).
func (h *Handler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req submitQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	userFilters := toQueryFilters(req.Filters)
	excluded := toExcludedValues(req.ExcludedValues)
	size := h.PageSize
	if size <= 0 {
		size = orchestrator.DefaultSize
	}

	resp, err := h.Search.Search(r.Context(), req.Query, userFilters, excluded, size)
	if err != nil {
		h.logger().Error("httpapi: search failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "search is temporarily unavailable")
		return
	}

	companies := make([]companyResponse, 0, len(resp.Results))
	for _, res := range resp.Results {
		companies = append(companies, toCompanyResponse(res.Company, res.Explanation))
	}

	h.writeJSON(w, http.StatusOK, submitQueryResponse{
		Companies:      companies,
		AppliedFilters: fromQueryFilters(resp.AppliedFilters),
		ThesisContext:  resp.ThesisContext,
	})
}

// filterOptionsResponse is the body of GET /api/filter-options.
type filterOptionsResponse struct {
	Segments map[string][]string `json:"segments"`
}

// FilterOptions handles GET /api/filter-options (spec §6): the
// vocabularies for each segment, in sorted order.
func (h *Handler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	out := filterOptionsResponse{Segments: make(map[string][]string)}
	for _, name := range segment.All() {
		entries, err := h.Vocab.List(r.Context(), name)
		if err != nil {
			h.logger().Warn("httpapi: vocabulary list failed", zap.String("segment", string(name)), zap.Error(err))
			continue
		}
		values := make([]string, 0, len(entries))
		for _, e := range entries {
			values = append(values, e.Name)
		}
		if name != segment.FundingStage {
			sort.Strings(values)
		}
		out.Segments[string(name)] = values
	}
	h.writeJSON(w, http.StatusOK, out)
}

// unknownExtractionResponse is a single row of GET /api/admin/unknown-extractions.
type unknownExtractionResponse struct {
	RawValue  string `json:"raw_value"`
	Segment   string `json:"segment"`
	Count     int    `json:"count"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
	Status    string `json:"status"`
	MatchedTo string `json:"matched_to,omitempty"`
}

// UnknownExtractions handles GET /api/admin/unknown-extractions: the
// minimal admin collaborator surface named in spec §6 for reviewing
// vocabulary gaps the extractor logged.
func (h *Handler) UnknownExtractions(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		h.writeError(w, http.StatusNotImplemented, "admin collaborator not configured")
		return
	}
	rows, err := h.Admin.ListUnknownExtractions(r.Context())
	if err != nil {
		h.logger().Error("httpapi: list unknown extractions failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "unknown-extraction log is temporarily unavailable")
		return
	}

	out := make([]unknownExtractionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, unknownExtractionResponse{
			RawValue:  row.RawValue,
			Segment:   string(row.Segment),
			Count:     row.Count,
			FirstSeen: row.FirstSeen.Format(timeFormat),
			LastSeen:  row.LastSeen.Format(timeFormat),
			Status:    string(row.Status),
			MatchedTo: row.MatchedTo,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// researchRequest is the body of POST /api/research.
type researchRequest struct {
	Companies []researchTarget `json:"companies" validate:"required,min=1,max=50,dive"`
}

type researchTarget struct {
	CompanyID   int64  `json:"company_id" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`
}

// Research handles POST /api/research: the optional per-result enrichment
// fan-out (spec §5), available as a standalone collaborator endpoint
// outside the core submit-query pipeline.
func (h *Handler) Research(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	tasks := make([]research.Task, 0, len(req.Companies))
	for _, c := range req.Companies {
		tasks = append(tasks, research.Task{CompanyID: c.CompanyID, CompanyName: c.CompanyName})
	}

	h.writeJSON(w, http.StatusOK, map[string]map[int64]string{
		"results": research.RunAll(r.Context(), h.researcher(), tasks, defaultResearchTimeout),
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
