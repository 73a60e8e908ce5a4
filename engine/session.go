package engine

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// Session tracks one delivery attempt's transcript and traces.
type Session struct {
	ID        string
	AgentID   string
	TurnCount int
	Traces    []*core.Trace

	messages []anthropic.MessageParam
}

// NewSession creates an empty session for the given agent.
func NewSession(agentID string) *Session {
	return &Session{
		ID:      uuid.New().String(),
		AgentID: agentID,
	}
}

// Messages returns the transcript in API form.
func (s *Session) Messages() []anthropic.MessageParam {
	return s.messages
}

// AddUserMessage appends a plain user turn.
func (s *Session) AddUserMessage(text string) {
	s.messages = append(s.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
}

// AddAssistantResponse appends the model's full response, tool_use blocks included.
func (s *Session) AddAssistantResponse(resp *anthropic.Message) {
	s.messages = append(s.messages, resp.ToParam())
}

// AddToolResults appends tool results as a single user turn, as the API requires.
func (s *Session) AddToolResults(results []anthropic.ContentBlockParamUnion) {
	s.messages = append(s.messages, anthropic.NewUserMessage(results...))
}

// AddTrace records one Thought-Action-Observation cycle.
func (s *Session) AddTrace(t *core.Trace) {
	s.Traces = append(s.Traces, t)
}

// IncrementTurnCount advances the turn counter.
func (s *Session) IncrementTurnCount() {
	s.TurnCount++
}
