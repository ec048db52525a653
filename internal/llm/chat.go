// Package llm is the language-model collaborator boundary the pipeline
// stages (classify, thesis, extract, rewrite, explain) call through.
// Grounded on the chat-model abstraction in
// _examples/Tangerg-lynx/ai/model/chat, simplified to the single
// request/response shape this pipeline needs: one-shot calls with an
// optional structured-output schema, no streaming, no tool calling.
package llm

import "context"

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a chat request.
type Message struct {
	Role    Role
	Content string
}

// System builds a system Message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user Message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Request is a single chat completion call.
type Request struct {
	Messages []Message
	// ResponseSchema, when non-nil, asks the provider to constrain its
	// output to this JSON Schema (as a map produced by invopop/jsonschema).
	// A nil schema means free-form text.
	ResponseSchema map[string]any
	// SchemaName labels the schema for providers that require one
	// (OpenAI's json_schema response format). The Anthropic adapter ignores
	// it and always uses its own fixed tool name.
	SchemaName string
	Temperature float64
}

// Response is a completed chat call.
type Response struct {
	Text string
}

// ChatModel is the provider-agnostic interface every LLM backend
// implements. internal/llm/openaichat, internal/llm/anthropicchat, and
// internal/llm/geminichat each provide one.
type ChatModel interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}
