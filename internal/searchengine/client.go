// Package searchengine wraps the text-search engine described in spec §1/§6:
// it holds company document vectors, the per-segment vocabulary indices, and
// serves both boolean predicate queries and approximate-nearest-neighbor
// search. Grounded on original_source/backend/backend/es/client.py
// (elasticsearch-py); this Go port uses github.com/elastic/go-elasticsearch.
package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CompanyIndex is the document index holding company records, their
// description_vector, and the semantic field names fixed at the boundary by
// spec §4.7.
const CompanyIndex = "companies"

// Engine is a thin, process-wide wrapper over the search engine connection
// pool. Like the LLM client, it is an immutable singleton constructed once
// at startup and shared across requests (spec §5).
type Engine struct {
	client *elasticsearch.Client
}

// Config configures Engine construction.
type Config struct {
	URL    string
	APIKey string
}

func (c *Config) validate() error {
	if c == nil || c.URL == "" {
		return fmt.Errorf("searchengine: config URL is required")
	}
	return nil
}

// New constructs an Engine from cfg.
func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
	}
	if cfg.APIKey != "" {
		esCfg.APIKey = cfg.APIKey
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("searchengine: new client: %w", err)
	}

	return &Engine{client: client}, nil
}

// Hit is a single search result: the document id, its relevance score, and
// its decoded _source fields.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// IDAsInt64 parses the document id as the numeric company id. Documents in
// CompanyIndex are keyed by the company's relational id (spec §6).
func (h Hit) IDAsInt64() (int64, error) {
	return strconv.ParseInt(h.ID, 10, 64)
}

// Search runs a single query body against index and returns its hits in
// engine rank order.
func (e *Engine) Search(ctx context.Context, index string, body map[string]any, size int) ([]Hit, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("searchengine: marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(raw),
	}
	if size > 0 {
		req.Size = &size
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("searchengine: search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searchengine: search %s: engine returned %s", index, res.Status())
	}

	return decodeHits(res.Body)
}

// MultiSearch runs one query per entry of bodies against index in a single
// round trip (the ES _msearch API), returning one hit slice per query in the
// same order. This backs the Segment Canonicalizer's batch lookup (spec
// §4.1, §5): "one engine round trip per segment, all values in parallel on
// the engine side."
func (e *Engine) MultiSearch(ctx context.Context, index string, bodies []map[string]any, size int) ([][]Hit, error) {
	if len(bodies) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	header := map[string]any{"index": index}
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	for _, body := range bodies {
		if size > 0 {
			body = withSize(body, size)
		}
		bodyRaw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("searchengine: marshal msearch body: %w", err)
		}
		buf.Write(headerRaw)
		buf.WriteByte('\n')
		buf.Write(bodyRaw)
		buf.WriteByte('\n')
	}

	req := esapi.MsearchRequest{
		Body: bytes.NewReader(buf.Bytes()),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("searchengine: msearch %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searchengine: msearch %s: engine returned %s", index, res.Status())
	}

	var decoded struct {
		Responses []struct {
			Hits struct {
				Hits []struct {
					ID     string         `json:"_id"`
					Score  *float64       `json:"_score"`
					Source map[string]any `json:"_source"`
				} `json:"hits"`
			} `json:"hits"`
			Error map[string]any `json:"error"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("searchengine: decode msearch response: %w", err)
	}

	out := make([][]Hit, len(decoded.Responses))
	for i, resp := range decoded.Responses {
		if resp.Error != nil {
			out[i] = nil
			continue
		}
		hits := make([]Hit, 0, len(resp.Hits.Hits))
		for _, h := range resp.Hits.Hits {
			score := 0.0
			if h.Score != nil {
				score = *h.Score
			}
			hits = append(hits, Hit{ID: h.ID, Score: score, Source: h.Source})
		}
		out[i] = hits
	}
	return out, nil
}

func withSize(body map[string]any, size int) map[string]any {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out["size"] = size
	return out
}

func decodeHits(body io.Reader) ([]Hit, error) {
	var decoded struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Score  *float64       `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("searchengine: decode response: %w", err)
	}

	hits := make([]Hit, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		hits = append(hits, Hit{ID: h.ID, Score: score, Source: h.Source})
	}
	return hits, nil
}
