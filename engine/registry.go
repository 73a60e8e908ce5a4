package engine

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// ToolRegistry holds the tools exposed to the model, in registration order.
type ToolRegistry struct {
	order []string
	tools map[string]core.Tool
}

// NewToolRegistry creates a registry with the given tools.
func NewToolRegistry(tools ...core.Tool) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]core.Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *ToolRegistry) Register(tool core.Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns the tool with the given name.
func (r *ToolRegistry) Get(name string) (core.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *ToolRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ToAPITools converts the registry to Anthropic API tool parameters.
func (r *ToolRegistry) ToAPITools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		schema := tool.InputSchema()

		param := anthropic.ToolParam{
			Name:        tool.Name(),
			Description: anthropic.String(tool.Description()),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
			},
		}
		if required, ok := schema["required"].([]string); ok {
			param.InputSchema.Required = required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}
