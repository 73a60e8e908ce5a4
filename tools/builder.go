package tools

import (
	"context"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// Handler executes a tool invocation.
type Handler func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error)

// Builder assembles a core.Tool from a name, description, schema, and handler.
type Builder struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     Handler
}

// New starts building a tool with the given name.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Description sets the tool description shown to the model.
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// Schema sets the JSON Schema for the tool's argument object.
func (b *Builder) Schema(s map[string]interface{}) *Builder {
	b.schema = s
	return b
}

// Handler sets the function executed when the model calls the tool.
func (b *Builder) Handler(h Handler) *Builder {
	b.handler = h
	return b
}

// Build returns the finished tool.
func (b *Builder) Build() core.Tool {
	schema := b.schema
	if schema == nil {
		schema = ObjectSchema(map[string]interface{}{})
	}
	return &funcTool{
		name:        b.name,
		description: b.description,
		schema:      schema,
		handler:     b.handler,
	}
}

type funcTool struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     Handler
}

func (t *funcTool) Name() string                        { return t.name }
func (t *funcTool) Description() string                 { return t.description }
func (t *funcTool) InputSchema() map[string]interface{} { return t.schema }

func (t *funcTool) Execute(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
	return t.handler(ctx, params)
}
