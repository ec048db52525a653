package llm

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptTemplate renders a Go text/template with named variables into a
// message body. A small, single-purpose stand-in for Tangerg's
// ai/model/chat.PromptTemplate (renderer + media) — this pipeline never
// attaches media, so only the rendering half survives.
type PromptTemplate struct {
	raw       string
	variables map[string]any
}

// NewPromptTemplate builds a PromptTemplate from a raw Go template string.
func NewPromptTemplate(raw string) *PromptTemplate {
	return &PromptTemplate{raw: raw, variables: make(map[string]any)}
}

// WithVariable sets a single template variable. Returns the template for
// chaining.
func (p *PromptTemplate) WithVariable(name string, value any) *PromptTemplate {
	p.variables[name] = value
	return p
}

// WithVariables merges variables into the template. Returns the template
// for chaining.
func (p *PromptTemplate) WithVariables(variables map[string]any) *PromptTemplate {
	for k, v := range variables {
		p.variables[k] = v
	}
	return p
}

// Render executes the template against its current variables.
func (p *PromptTemplate) Render() (string, error) {
	tmpl, err := template.New("prompt").Parse(p.raw)
	if err != nil {
		return "", fmt.Errorf("llm: parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p.variables); err != nil {
		return "", fmt.Errorf("llm: render prompt template: %w", err)
	}
	return buf.String(), nil
}
