package core

import (
	"context"
	"encoding/json"
)

// ToolParams carries the arguments of a single tool invocation.
type ToolParams struct {
	// Input is the raw JSON argument object produced by the model.
	Input json.RawMessage

	// RequestID correlates the invocation with a session or attempt.
	RequestID string
}

// ToolResult is what a tool reports back to the loop and, verbatim, to the model.
//
// Success=false with a Text message is an ordinary, recoverable outcome (wrong
// floor, refused action) that the model is expected to read and react to. Hard
// failures are returned as errors from Execute instead.
type ToolResult struct {
	Success bool
	Text    string
}

// Tool is a single operation exposed to the LLM.
type Tool interface {
	Name() string
	Description() string

	// InputSchema returns the JSON Schema for the tool's argument object.
	InputSchema() map[string]interface{}

	Execute(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// ToolDefinition declares a tool's contract without binding a handler.
type ToolDefinition struct {
	ToolName        string
	ToolDescription string
	InputSchema     map[string]interface{}
}
