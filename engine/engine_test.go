package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/courier"
	"github.com/parcelpilot/courier-go-sdk/engine"
)

// stubLLM replays canned responses and counts how often it was consulted.
type stubLLM struct {
	responses []*anthropic.Message
	calls     int
	err       error
}

func (s *stubLLM) Complete(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls > len(s.responses) {
		return textResponse("I have nothing more to say."), nil
	}
	return s.responses[s.calls-1], nil
}

func textResponse(text string) *anthropic.Message {
	return &anthropic.Message{
		Role:    "assistant",
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
	}
}

func toolUseResponse(calls ...map[string]string) *anthropic.Message {
	msg := &anthropic.Message{Role: "assistant"}
	for i, call := range calls {
		args := map[string]string{}
		for k, v := range call {
			if k != "__name" {
				args[k] = v
			}
		}
		input, _ := json.Marshal(args)
		msg.Content = append(msg.Content, anthropic.ContentBlockUnion{
			Type:  "tool_use",
			ID:    fmt.Sprintf("toolu_%d", i+1),
			Name:  call["__name"],
			Input: input,
		})
	}
	return msg
}

func call(name string, kv ...string) map[string]string {
	m := map[string]string{"__name": name}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func newEngine(t *testing.T, layout building.Layout, llm engine.LLMClient) (*engine.Engine, *courier.Toolbox, *building.Building) {
	t.Helper()
	b, err := building.New(layout)
	if err != nil {
		t.Fatalf("New building: %v", err)
	}
	tb := courier.NewToolbox(b)
	return engine.New(llm, tb), tb, b
}

func TestDeliverScriptedRoute(t *testing.T) {
	// Jonas Wei works at Pixel Forge Studios, floor 2 back.
	stub := &stubLLM{responses: []*anthropic.Message{
		toolUseResponse(
			call("go_up"),
			call("go_to_back"),
			call("deliver_package", "recipient_name", "Jonas Wei"),
		),
	}}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Jonas Wei"},
		MaxSteps: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("delivery failed: %+v", result)
	}
	if result.Error != nil {
		t.Errorf("unexpected error: %v", result.Error)
	}
	if result.StepsTaken != 3 {
		t.Errorf("steps = %d, want 3", result.StepsTaken)
	}
	if result.OptimalSteps != 3 {
		t.Errorf("optimal = %d, want 3", result.OptimalSteps)
	}
	if stub.calls != 1 {
		t.Errorf("collaborator consulted %d times, want 1", stub.calls)
	}
	if len(result.Actions) != 3 {
		t.Errorf("action trail has %d records", len(result.Actions))
	}
}

func TestDeliverViaFireEscape(t *testing.T) {
	// Edgar Moody works at Lanternfish Publishing, floor 5 front — one fire
	// escape ride from the start position.
	stub := &stubLLM{responses: []*anthropic.Message{
		toolUseResponse(
			call("use_fire_escape"),
			call("deliver_package", "recipient_name", "Edgar Moody"),
		),
	}}
	eng, _, _ := newEngine(t, building.ExtendedLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Edgar Moody"},
		MaxSteps: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("delivery failed: %+v", result)
	}
	if result.Error != nil {
		t.Errorf("unexpected error: %v", result.Error)
	}
	if result.StepsTaken != 2 {
		t.Errorf("steps = %d, want 2", result.StepsTaken)
	}
	if result.OptimalSteps != 2 {
		t.Errorf("optimal = %d, want 2", result.OptimalSteps)
	}
}

func TestZeroBudgetNeverConsultsCollaborator(t *testing.T) {
	stub := &stubLLM{}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("succeeded without acting")
	}
	if result.Error != nil {
		t.Errorf("zero budget is a normal termination, got error %v", result.Error)
	}
	if stub.calls != 0 {
		t.Errorf("collaborator consulted %d times, want 0", stub.calls)
	}
}

func TestCollaboratorErrorIsFatal(t *testing.T) {
	stub := &stubLLM{err: errors.New("boom")}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("succeeded despite collaborator failure")
	}
	if result.Error == nil || !errors.Is(result.Error, stub.err) {
		t.Errorf("result error = %v, want wrapped boom", result.Error)
	}
	if stub.calls != 1 {
		t.Errorf("collaborator consulted %d times, want 1 (no retry)", stub.calls)
	}
}

func TestPlainTextGetsNudged(t *testing.T) {
	// Maya Chen works on floor 1 front, where the agent starts.
	stub := &stubLLM{responses: []*anthropic.Message{
		textResponse("Let me think about this."),
		toolUseResponse(call("deliver_package", "recipient_name", "Maya Chen")),
	}}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.StepsTaken != 1 {
		t.Fatalf("success=%v steps=%d", result.Success, result.StepsTaken)
	}
	if stub.calls != 2 {
		t.Errorf("collaborator consulted %d times, want 2", stub.calls)
	}
}

func TestStepBudgetExhaustion(t *testing.T) {
	// The collaborator keeps riding the elevator; the budget runs out first.
	stub := &stubLLM{responses: []*anthropic.Message{
		toolUseResponse(call("go_up")),
		toolUseResponse(call("go_up")),
		toolUseResponse(call("go_up")),
	}}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Isabel Alvarez"}, // floor 3 front
		MaxSteps: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("succeeded past the budget")
	}
	if result.Error != nil {
		t.Errorf("budget exhaustion is a normal termination, got %v", result.Error)
	}
	if result.StepsTaken != 2 {
		t.Errorf("steps = %d, want 2", result.StepsTaken)
	}
	if len(result.Actions) != 2 {
		t.Errorf("action trail has %d records, want 2", len(result.Actions))
	}
}

func TestChattyCollaboratorHitsTurnCap(t *testing.T) {
	// The stub never acts, so the loop spins on free text turns until the
	// turn cap breaks it. That is a normal failed attempt, not an error.
	stub := &stubLLM{responses: []*anthropic.Message{
		textResponse("Still thinking."),
	}}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("succeeded without a single tool call")
	}
	if result.Error != nil {
		t.Errorf("turn cap exhaustion is a normal termination, got %v", result.Error)
	}
	if result.StepsTaken != 0 {
		t.Errorf("steps = %d, want 0", result.StepsTaken)
	}
	if wantCalls := 1*2 + 4; stub.calls != wantCalls {
		t.Errorf("collaborator consulted %d times, want %d", stub.calls, wantCalls)
	}
}

func TestBatchStopsAtSuccess(t *testing.T) {
	// Delivery succeeds on the first call of the batch; the trailing calls
	// must not run.
	stub := &stubLLM{responses: []*anthropic.Message{
		toolUseResponse(
			call("deliver_package", "recipient_name", "Maya Chen"),
			call("go_up"),
			call("go_up"),
		),
	}}
	eng, tb, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.StepsTaken != 1 {
		t.Fatalf("success=%v steps=%d, want success in 1 step", result.Success, result.StepsTaken)
	}
	if st := tb.State(); st.Floor != 1 {
		t.Errorf("trailing batch calls ran: floor = %d", st.Floor)
	}
}

func TestUnknownToolReported(t *testing.T) {
	stub := &stubLLM{responses: []*anthropic.Message{
		toolUseResponse(call("teleport_home")),
		toolUseResponse(call("deliver_package", "recipient_name", "Maya Chen")),
	}}
	eng, _, _ := newEngine(t, building.StandardLayout(), stub)

	result, err := eng.Deliver(context.Background(), &engine.Input{
		Package:  &building.Package{ID: "p1", Recipient: "Maya Chen"},
		MaxSteps: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected recovery after unknown tool: %+v", result)
	}
	// The unknown tool never reached the toolbox, so only the delivery cost a step.
	if result.StepsTaken != 1 {
		t.Errorf("steps = %d, want 1", result.StepsTaken)
	}
}

func TestRegistryMatchesBuilding(t *testing.T) {
	stub := &stubLLM{}

	eng, _, _ := newEngine(t, building.StandardLayout(), stub)
	for _, name := range eng.Registry().Names() {
		if name == "use_fire_escape" {
			t.Error("standard building must not expose use_fire_escape")
		}
	}

	eng, _, _ = newEngine(t, building.ExtendedLayout(), stub)
	found := false
	for _, name := range eng.Registry().Names() {
		if name == "use_fire_escape" {
			found = true
		}
	}
	if !found {
		t.Error("extended building must expose use_fire_escape")
	}
}
