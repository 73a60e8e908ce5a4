// Package engine runs the bounded, turn-based delivery loop: it asks the LLM
// collaborator which tool to call, executes the call against the courier
// toolbox, feeds the observation back, and repeats until the package is
// delivered, the step budget runs out, or the collaborator fails.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/core"
	"github.com/parcelpilot/courier-go-sdk/courier"
	"github.com/parcelpilot/courier-go-sdk/memory"
	"github.com/parcelpilot/courier-go-sdk/planner"
	"github.com/parcelpilot/courier-go-sdk/tools"
)

// Engine drives delivery attempts against one toolbox.
type Engine struct {
	llm          LLMClient
	toolbox      *courier.Toolbox
	registry     *ToolRegistry
	memory       memory.Manager
	model        string
	maxTokens    int64
	systemPrompt string
}

// Option configures the engine.
type Option func(*Engine)

// WithMemory attaches a memory manager. Retrieval enriches the system prompt
// before an attempt; traces are recorded after it. Both are best-effort: a
// memory failure never fails the attempt.
func WithMemory(m memory.Manager) Option {
	return func(e *Engine) { e.memory = m }
}

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(e *Engine) { e.model = model }
}

// WithMaxTokens overrides the per-turn response token cap.
func WithMaxTokens(n int64) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// WithSystemPrompt overrides the default courier system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) { e.systemPrompt = prompt }
}

// New creates an engine over the given collaborator and toolbox. The tool
// registry is derived from the toolbox's building (the fire escape tool only
// exists where the building has one).
func New(llm LLMClient, tb *courier.Toolbox, opts ...Option) *Engine {
	e := &Engine{
		llm:          llm,
		toolbox:      tb,
		registry:     NewToolRegistry(tools.CourierTools(tb)...),
		model:        "claude-sonnet-4-20250514",
		maxTokens:    1024,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *ToolRegistry { return e.registry }

// Input describes one delivery attempt.
type Input struct {
	// Package is the delivery task; required.
	Package *building.Package

	// MaxSteps is the hard tool-call budget. Zero means the collaborator is
	// never consulted and the attempt fails immediately.
	MaxSteps int

	// AgentID namespaces memory retrieval and recording. Optional.
	AgentID string
}

// Result reports how an attempt ended. Running out of budget — steps or
// turns — is a normal termination: Success=false, Error=nil, Actions intact
// for diagnostics. Error is reserved for collaborator and context failures.
type Result struct {
	Success      bool
	StepsTaken   int
	Actions      []courier.ActionRecord
	OptimalSteps int
	Error        error
}

// Deliver runs one delivery attempt to completion.
//
// Collaborator failures are fatal to the attempt and reported in
// Result.Error. A broken building definition surfaces as a non-nil returned
// error instead, since it means the world itself is misconfigured.
func (e *Engine) Deliver(ctx context.Context, input *Input) (*Result, error) {
	if input == nil || input.Package == nil {
		return nil, fmt.Errorf("no package to deliver")
	}

	tb := e.toolbox
	tb.Begin(input.Package)

	res := &Result{}
	if optimal, _, err := planner.OptimalSteps(
		tb.Building(), tb.State().Position(), recipientPosition(tb.Building(), input.Package),
	); err == nil {
		res.OptimalSteps = optimal
	}

	finish := func() *Result {
		st := tb.State()
		res.Success = st.Delivered
		res.StepsTaken = st.StepsTaken
		res.Actions = st.History
		return res
	}

	if input.MaxSteps <= 0 {
		return finish(), nil
	}

	// PHASE 0: retrieve memories.
	systemPrompt := e.systemPrompt
	if e.memory != nil {
		enrichment, err := e.memory.Retrieve(ctx, input.AgentID, input.Package.Label())
		if err != nil {
			log.Printf("[MEMORY] Retrieval failed: %v", err)
		} else if enrichment != "" {
			systemPrompt += "\n\n" + enrichment
		}
	}

	session := NewSession(input.AgentID)
	session.AddUserMessage(fmt.Sprintf(
		"You are holding a package. Label: %q. You are at %s. Deliver it using at most %d actions.",
		input.Package.Label(), tb.State().Position(), input.MaxSteps,
	))

	apiTools := e.registry.ToAPITools()

	// Plain-text turns cost no steps, so a chatty collaborator could spin
	// forever inside the step budget. The turn cap only exists to break that.
	maxTurns := input.MaxSteps*2 + 4

	for {
		if tb.Delivered() {
			break
		}
		if tb.StepsTaken() >= input.MaxSteps {
			log.Printf("[ENGINE] Step budget exhausted (%d)", input.MaxSteps)
			break
		}
		if ctx.Err() != nil {
			res.Error = fmt.Errorf("attempt canceled: %w", ctx.Err())
			break
		}
		if session.TurnCount >= maxTurns {
			log.Printf("[ENGINE] Turn cap exhausted (%d) with no delivery", maxTurns)
			break
		}
		session.IncrementTurnCount()

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(e.model),
			MaxTokens: e.maxTokens,
			Messages:  session.Messages(),
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Tools: apiTools,
		}

		resp, err := e.llm.Complete(ctx, params)
		if err != nil {
			res.Error = fmt.Errorf("llm error: %w", err)
			break
		}

		var toolResults []anthropic.ContentBlockParamUnion
		sawToolUse := false

		for _, block := range resp.Content {
			if block.Type != "tool_use" {
				continue
			}
			sawToolUse = true

			// The instant a delivery succeeds the rest of the batch is dropped.
			if tb.Delivered() {
				break
			}

			toolResult, fatal := e.executeToolUse(ctx, session, block)
			if fatal != nil {
				res.Error = fatal
				return finish(), fatal
			}
			toolResults = append(toolResults, toolResult)
		}

		if tb.Delivered() {
			break
		}

		session.AddAssistantResponse(resp)
		if sawToolUse {
			session.AddToolResults(toolResults)
		} else {
			session.AddUserMessage("You have not acted yet. Use one of the available tools to keep moving toward the delivery.")
		}
	}

	e.recordTraces(ctx, input.AgentID, session)
	return finish(), nil
}

// executeToolUse runs one requested tool call and builds its result block. A
// non-nil second return value is a fatal configuration error, not a
// navigational failure.
func (e *Engine) executeToolUse(ctx context.Context, session *Session, block anthropic.ContentBlockUnion) (anthropic.ContentBlockParamUnion, error) {
	var baseInput core.BaseInput
	if err := json.Unmarshal(block.Input, &baseInput); err != nil {
		return anthropic.NewToolResultBlock(block.ID,
			fmt.Sprintf("invalid tool input JSON: %s", err.Error()), true), nil
	}
	thought := strings.TrimSpace(baseInput.Thought)

	tool, ok := e.registry.Get(block.Name)
	if !ok {
		return anthropic.NewToolResultBlock(block.ID,
			fmt.Sprintf("unknown tool: %s", block.Name), true), nil
	}

	inputBytes, _ := json.Marshal(block.Input)
	result, err := tool.Execute(ctx, &core.ToolParams{
		Input:     inputBytes,
		RequestID: session.ID,
	})
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("tool %s: %w", block.Name, err)
	}

	trace := &core.Trace{
		ID:          uuid.New().String(),
		SessionID:   session.ID,
		TurnNumber:  session.TurnCount,
		Thought:     thought,
		Action:      block.Name,
		ActionInput: inputBytes,
		Observation: result.Text,
		Success:     result.Success,
		Timestamp:   time.Now().Unix(),
		Metadata:    make(map[string]string),
	}
	session.AddTrace(trace)
	log.Printf("[TRACE] %s", trace.String())

	// Navigational failures go back as ordinary results the model can read,
	// not as API-level errors.
	return anthropic.NewToolResultBlock(block.ID, result.Text, false), nil
}

// recordTraces hands the attempt's traces to memory. Best-effort: the loop
// never depends on its completion.
func (e *Engine) recordTraces(ctx context.Context, agentID string, session *Session) {
	if e.memory == nil || len(session.Traces) == 0 {
		return
	}
	log.Printf("[MEMORY] Recording %d traces", len(session.Traces))
	if err := e.memory.RecordTraces(ctx, agentID, session.Traces); err != nil {
		log.Printf("[MEMORY] Failed to record traces: %v", err)
	}
}

// recipientPosition resolves where the package's addressee works. Falls back
// to the start position when the recipient is unknown; the planner will then
// report a trivial plan and OptimalSteps stays meaningless.
func recipientPosition(b *building.Building, pkg *building.Package) building.Position {
	if biz, _, ok := b.FindEmployee(pkg.Recipient); ok {
		return building.Position{Floor: biz.Floor, Side: biz.Side}
	}
	return building.Position{Floor: b.MinFloor(), Side: building.Front}
}

// DefaultSystemPrompt is the default system prompt for the courier agent.
const DefaultSystemPrompt = `You are a delivery courier working inside an office building.

THE BUILDING:
- Floors are numbered from the bottom up. Each floor has a business at the front and one at the back.
- The elevator always drops you in the middle hallway of a floor; from there walk to the front or back.
- Some buildings have a fire escape connecting two fixed positions. It is a shortcut, not a general exit.

YOUR JOB:
- You hold exactly one package addressed to a named person. Deliver it to them at their workplace.
- If the label does not say where they work, use get_employee_list at businesses to find them.
- Every tool call costs one step and your step budget is hard. Do not waste steps re-checking things you already know.

RULES:
- deliver_package only works when you are standing at the recipient's business and name them exactly.
- You cannot deliver from the middle hallway.
- Include a short "thought" with each action explaining your plan.`
