// Package anthropicchat implements llm.ChatModel against the Anthropic
// Messages API. Anthropic has no OpenAI-style json_schema response format,
// so structured requests are forced through a single synthetic tool whose
// input_schema is the requested schema and tool_choice pins that tool —
// the standard Anthropic structured-output idiom.
package anthropicchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/driftwell/discoveryengine/internal/llm"
)

const structuredToolName = "emit_result"

// Config configures Model construction.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

func (c *Config) validate() error {
	if c == nil || c.APIKey == "" {
		return errors.New("anthropicchat: API key is required")
	}
	if c.Model == "" {
		return errors.New("anthropicchat: model is required")
	}
	return nil
}

var _ llm.ChatModel = (*Model)(nil)

// Model is the Anthropic-backed llm.ChatModel.
type Model struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New constructs a Model from cfg.
func New(cfg *Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return &Model{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
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

func buildMessages(msgs []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

// Complete implements llm.ChatModel.
func (m *Model) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	system, rest := splitSystem(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: m.maxTokens,
		Messages:  buildMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if req.ResponseSchema != nil {
		params.Tools = []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        structuredToolName,
					Description: anthropic.String("Emit the structured result for this request."),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: req.ResponseSchema["properties"],
						Required:   req.ResponseSchema["required"],
					},
				},
			},
		}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: structuredToolName},
		}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropicchat: completion: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" {
			raw, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("anthropicchat: marshal tool input: %w", err)
			}
			return &llm.Response{Text: string(raw)}, nil
		}
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return &llm.Response{Text: block.Text}, nil
		}
	}
	return nil, fmt.Errorf("anthropicchat: response had no usable content block")
}
