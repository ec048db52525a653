// Package openaichat implements llm.ChatModel against the OpenAI Chat
// Completions API, grounded on
// _examples/Tangerg-lynx/ai/extensions/models/openai/chat_model.go's
// request/response construction, simplified to this pipeline's one-shot,
// non-streaming, non-tool-calling call shape.
package openaichat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/driftwell/discoveryengine/internal/llm"
)

// Config configures Model construction.
type Config struct {
	APIKey  string
	BaseURL string // optional; empty uses the OpenAI default
	Model   string
}

func (c *Config) validate() error {
	if c == nil || c.APIKey == "" {
		return errors.New("openaichat: API key is required")
	}
	if c.Model == "" {
		return errors.New("openaichat: model is required")
	}
	return nil
}

var _ llm.ChatModel = (*Model)(nil)

// Model is the OpenAI-backed llm.ChatModel.
type Model struct {
	client openai.Client
	model  string
}

// New constructs a Model from cfg.
func New(cfg *Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Model{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func buildMessages(msgs []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Complete implements llm.ChatModel.
func (m *Model) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.model,
		Messages: buildMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.ResponseSchema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.ResponseSchema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openaichat: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openaichat: empty response")
	}

	return &llm.Response{Text: resp.Choices[0].Message.Content}, nil
}
