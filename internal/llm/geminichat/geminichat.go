// Package geminichat implements llm.ChatModel against the Gemini API,
// grounded on the genai client construction in
// _examples/theRebelliousNerd-codenerd/internal/embedding/genai.go
// (genai.NewClient, context cancellation discipline).
package geminichat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/driftwell/discoveryengine/internal/llm"
)

// Config configures Model construction.
type Config struct {
	APIKey string
	Model  string
}

func (c *Config) validate() error {
	if c == nil || c.APIKey == "" {
		return errors.New("geminichat: API key is required")
	}
	if c.Model == "" {
		return errors.New("geminichat: model is required")
	}
	return nil
}

var _ llm.ChatModel = (*Model)(nil)

// Model is the Gemini-backed llm.ChatModel.
type Model struct {
	client *genai.Client
	model  string
}

// New constructs a Model from cfg.
func New(ctx context.Context, cfg *Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("geminichat: new client: %w", err)
	}

	return &Model{client: client, model: cfg.Model}, nil
}

func splitSystem(msgs []llm.Message) (system string, rest []llm.Message) {
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

func buildContents(msgs []llm.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

// Complete implements llm.ChatModel.
func (m *Model) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	system, rest := splitSystem(req.Messages)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		// ResponseJSONSchema accepts a raw JSON-Schema-shaped value directly,
		// avoiding a hand-written conversion into genai's typed *Schema.
		cfg.ResponseJSONSchema = req.ResponseSchema
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, buildContents(rest), cfg)
	if err != nil {
		return nil, fmt.Errorf("geminichat: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("geminichat: empty response")
	}
	return &llm.Response{Text: text}, nil
}
