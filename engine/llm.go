package engine

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

// LLMClient is the completion collaborator driving the loop. It takes a full
// message transcript plus tool schemas and returns either text or requested
// tool invocations. The loop treats it as opaque: no retries, no inspection
// of transport details. Tests supply stubs.
type LLMClient interface {
	Complete(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicLLM struct {
	client *anthropic.Client
}

// NewAnthropicLLM wraps an Anthropic client as the loop's collaborator.
func NewAnthropicLLM(client *anthropic.Client) LLMClient {
	return &anthropicLLM{client: client}
}

func (c *anthropicLLM) Complete(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.client.Messages.New(ctx, params)
}
