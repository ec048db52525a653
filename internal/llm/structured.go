package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// SchemaOf exposes schemaOf to callers that build a Request by hand instead
// of going through Structured — e.g. a stage that must tolerate several
// response shapes and so can't unmarshal straight into one Go type.
func SchemaOf(v any) (map[string]any, error) {
	return schemaOf(v)
}

// schemaOf derives a JSON Schema (as a map, matching the shape OpenAI's
// response_format/json_schema, Anthropic's tool input_schema, and Gemini's
// responseSchema all expect) from a Go struct, instead of hand-maintained
// schema literals (grounded on
// _examples/Tangerg-lynx/pkg/json/schema.go's generateSchema).
func schemaOf(v any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.Reflect(v)
	s.Version = ""

	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("llm: marshal schema for %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("llm: unmarshal schema for %T: %w", v, err)
	}
	return m, nil
}

// Structured runs a chat completion constrained to the JSON shape of T and
// unmarshals the result into it. Every structured pipeline stage
// (classify, thesis, extract) goes through this helper rather than
// hand-writing schema literals per call site.
func Structured[T any](ctx context.Context, model ChatModel, messages []Message) (T, error) {
	var zero T

	schema, err := schemaOf(zero)
	if err != nil {
		return zero, err
	}

	resp, err := model.Complete(ctx, &Request{
		Messages:       messages,
		ResponseSchema: schema,
		SchemaName:     reflect.TypeOf(zero).Name(),
	})
	if err != nil {
		return zero, fmt.Errorf("llm: structured completion: %w", err)
	}

	var out T
	if err := json.Unmarshal([]byte(resp.Text), &out); err != nil {
		return zero, fmt.Errorf("llm: decode structured response: %w", err)
	}
	return out, nil
}
