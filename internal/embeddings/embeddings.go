// Package embeddings is the embedding-model collaborator: it turns a
// rewritten query string into the dense vector the search engine's kNN leg
// scores against (spec §4.7/§6). Grounded on the OpenAI embedding model in
// _examples/Tangerg-lynx/ai/extensions/models/openai/embedding.go
// (Config+validate, single/batch call shape).
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultDimensions is the output dimensionality used when Config.Dimensions
// is left at zero (SPEC_FULL.md §10, §13).
const DefaultDimensions = 384

// Embedder embeds text into the vector space the search engine's
// description_vector field was indexed with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config configures Model construction.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

func (c *Config) validate() error {
	if c == nil || c.APIKey == "" {
		return errors.New("embeddings: API key is required")
	}
	if c.Model == "" {
		return errors.New("embeddings: model is required")
	}
	return nil
}

var _ Embedder = (*Model)(nil)

// Model is the OpenAI-backed Embedder.
type Model struct {
	client     openai.Client
	model      string
	dimensions int
}

// New constructs a Model from cfg.
func New(cfg *Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Model{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		dimensions: dims,
	}, nil
}

// Dimensions reports the configured output dimensionality.
func (m *Model) Dimensions() int {
	return m.dimensions
}

// Embed implements Embedder.
func (m *Model) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := m.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: m.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Dimensions: openai.Int(int64(m.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings: no embedding returned")
	}

	values := resp.Data[0].Embedding
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}
