package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwell/discoveryengine/internal/company"
	"github.com/driftwell/discoveryengine/internal/filterdsl"
	"github.com/driftwell/discoveryengine/internal/orchestrator"
	"github.com/driftwell/discoveryengine/internal/segment"
	"github.com/driftwell/discoveryengine/internal/vocabulary"
)

type fakeSearcher struct {
	resp orchestrator.Response
	err  error

	gotQuery   string
	gotFilters filterdsl.QueryFilters
}

func (f *fakeSearcher) Search(ctx context.Context, query string, userFilters filterdsl.QueryFilters, excludedValues []filterdsl.ExcludedFilterValue, size int) (orchestrator.Response, error) {
	f.gotQuery = query
	f.gotFilters = userFilters
	return f.resp, f.err
}

type fakeVocab struct {
	entries map[segment.Name][]vocabulary.Entry
}

func (f fakeVocab) List(ctx context.Context, seg segment.Name) ([]vocabulary.Entry, error) {
	return f.entries[seg], nil
}
func (f fakeVocab) ExactMatch(ctx context.Context, seg segment.Name, raw string) (string, bool, error) {
	return "", false, nil
}
func (f fakeVocab) RecordUnknown(ctx context.Context, seg segment.Name, rawValue string) error {
	return nil
}

type fakeAdmin struct {
	rows []vocabulary.UnknownExtraction
	err  error
}

func (f fakeAdmin) ListUnknownExtractions(ctx context.Context) ([]vocabulary.UnknownExtraction, error) {
	return f.rows, f.err
}

func TestSubmitQuery_HappyPathReturnsCompaniesAndAppliedFilters(t *testing.T) {
	searcher := &fakeSearcher{
		resp: orchestrator.Response{
			Results: []orchestrator.RankedResult{
				{Company: company.Company{ID: 1, Name: "Acme", Location: "Austin"}, Explanation: "Good fit."},
			},
			AppliedFilters: filterdsl.Empty(),
		},
	}
	h := &Handler{Search: searcher}

	body := strings.NewReader(`{"query":"fintech startups"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/submit-query", body)
	w := httptest.NewRecorder()

	h.SubmitQuery(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp submitQueryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Companies, 1)
	assert.Equal(t, int64(1), resp.Companies[0].ID)
	assert.Equal(t, "Acme", resp.Companies[0].CompanyName)
	assert.Equal(t, "Good fit.", resp.Companies[0].Explanation)
	assert.Equal(t, "fintech startups", searcher.gotQuery)
}

func TestSubmitQuery_InvalidJSONReturns400(t *testing.T) {
	h := &Handler{Search: &fakeSearcher{}}
	req := httptest.NewRequest(http.MethodPost, "/api/submit-query", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	h.SubmitQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitQuery_QueryTooLongFailsValidation(t *testing.T) {
	h := &Handler{Search: &fakeSearcher{}}
	longQuery := strings.Repeat("a", 2001)
	body, err := json.Marshal(map[string]string{"query": longQuery})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/submit-query", strings.NewReader(string(body)))
	w := httptest.NewRecorder()

	h.SubmitQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitQuery_SearchFailureReturns500(t *testing.T) {
	h := &Handler{Search: &fakeSearcher{err: assertError{"engine down"}}}
	req := httptest.NewRequest(http.MethodPost, "/api/submit-query", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.SubmitQuery(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSubmitQuery_UserFiltersAreParsedFromWireShape(t *testing.T) {
	searcher := &fakeSearcher{}
	h := &Handler{Search: searcher}

	body := `{"filters":{"logic":"AND","filters":[{"segment":"industries","logic":"OR","rules":[{"operator":"EQ","value":"FinTech"}]}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/submit-query", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SubmitQuery(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sf, ok := searcher.gotFilters.Get(segment.Industries)
	require.True(t, ok)
	require.Len(t, sf.Rules, 1)
	assert.Equal(t, "FinTech", sf.Rules[0].Value.AsText())
}

func TestFilterOptions_ReturnsSortedVocabularyPerSegment(t *testing.T) {
	h := &Handler{Vocab: fakeVocab{entries: map[segment.Name][]vocabulary.Entry{
		segment.Industries: {{Name: "SaaS"}, {Name: "FinTech"}},
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/filter-options", nil)
	w := httptest.NewRecorder()

	h.FilterOptions(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp filterOptionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"FinTech", "SaaS"}, resp.Segments["industries"])
}

func TestUnknownExtractions_NoAdminCollaboratorReturns501(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/unknown-extractions", nil)
	w := httptest.NewRecorder()

	h.UnknownExtractions(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestUnknownExtractions_ReturnsLoggedRows(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := &Handler{Admin: fakeAdmin{rows: []vocabulary.UnknownExtraction{
		{RawValue: "Web3", Segment: segment.Industries, Count: 2, FirstSeen: now, LastSeen: now, Status: vocabulary.StatusPending},
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/unknown-extractions", nil)
	w := httptest.NewRecorder()

	h.UnknownExtractions(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rows []unknownExtractionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Web3", rows[0].RawValue)
	assert.Equal(t, "pending", rows[0].Status)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }

type fakeResearcher struct{}

func (fakeResearcher) Research(ctx context.Context, companyID int64, companyName string) (string, error) {
	return "enriched:" + companyName, nil
}

func TestResearch_HappyPathReturnsPerCompanyResults(t *testing.T) {
	h := &Handler{Researcher: fakeResearcher{}}

	body := `{"companies":[{"company_id":1,"company_name":"Acme"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Research(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results map[string]string `json:"results"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "enriched:Acme", resp.Results["1"])
}

func TestResearch_EmptyCompaniesFailsValidation(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{"companies":[]}`))
	w := httptest.NewRecorder()

	h.Research(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearch_DefaultsToNoOpResearcher(t *testing.T) {
	h := &Handler{}
	body := `{"companies":[{"company_id":1,"company_name":"Acme"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Research(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results map[string]string `json:"results"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Results["1"], "research unavailable")
}
