package tools_test

import (
	"context"
	"strings"
	"testing"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/core"
	"github.com/parcelpilot/courier-go-sdk/courier"
	"github.com/parcelpilot/courier-go-sdk/tools"
)

func toolNames(ts []core.Tool) map[string]core.Tool {
	out := make(map[string]core.Tool, len(ts))
	for _, tool := range ts {
		out[tool.Name()] = tool
	}
	return out
}

func TestFireEscapeToolGatedOnBuilding(t *testing.T) {
	std, err := building.New(building.StandardLayout())
	if err != nil {
		t.Fatal(err)
	}
	names := toolNames(tools.CourierTools(courier.NewToolbox(std)))
	if len(names) != 7 {
		t.Errorf("standard building exposes %d tools, want 7", len(names))
	}
	if _, ok := names["use_fire_escape"]; ok {
		t.Error("standard building must not expose use_fire_escape")
	}

	ext, err := building.New(building.ExtendedLayout())
	if err != nil {
		t.Fatal(err)
	}
	names = toolNames(tools.CourierTools(courier.NewToolbox(ext)))
	if len(names) != 8 {
		t.Errorf("extended building exposes %d tools, want 8", len(names))
	}
	if _, ok := names["use_fire_escape"]; !ok {
		t.Error("extended building must expose use_fire_escape")
	}
}

func TestDeliverToolDecodesInput(t *testing.T) {
	b, err := building.New(building.StandardLayout())
	if err != nil {
		t.Fatal(err)
	}
	tb := courier.NewToolbox(b)
	tb.Begin(&building.Package{ID: "p1", Recipient: "Maya Chen"}) // floor 1 front

	names := toolNames(tools.CourierTools(tb))
	deliver := names["deliver_package"]
	if deliver == nil {
		t.Fatal("deliver_package tool missing")
	}

	result, err := deliver.Execute(context.Background(), &core.ToolParams{
		Input: []byte(`{"thought":"she works right here","recipient_name":"Maya Chen"}`),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Errorf("delivery failed: %s", result.Text)
	}
	if !strings.Contains(result.Text, courier.SuccessMarker) {
		t.Errorf("result text missing success marker: %s", result.Text)
	}
	if !tb.Delivered() {
		t.Error("toolbox not marked delivered")
	}
}

func TestNavigationToolMovesToolbox(t *testing.T) {
	b, err := building.New(building.StandardLayout())
	if err != nil {
		t.Fatal(err)
	}
	tb := courier.NewToolbox(b)
	tb.Begin(&building.Package{ID: "p1", Recipient: "Jonas Wei"})

	names := toolNames(tools.CourierTools(tb))
	if _, err := names["go_up"].Execute(context.Background(), &core.ToolParams{Input: []byte(`{}`)}); err != nil {
		t.Fatalf("go_up: %v", err)
	}

	st := tb.State()
	if st.Floor != 2 || st.Side != building.Middle {
		t.Errorf("after go_up at %s, want floor 2, middle", st.Position())
	}
	if st.StepsTaken != 1 {
		t.Errorf("steps = %d, want 1", st.StepsTaken)
	}
}

func TestRejectedMoveIsUnsuccessfulButNotError(t *testing.T) {
	b, err := building.New(building.StandardLayout())
	if err != nil {
		t.Fatal(err)
	}
	tb := courier.NewToolbox(b)
	tb.Begin(&building.Package{ID: "p1", Recipient: "Maya Chen"})

	names := toolNames(tools.CourierTools(tb))
	result, err := names["go_down"].Execute(context.Background(), &core.ToolParams{Input: []byte(`{}`)})
	if err != nil {
		t.Fatalf("a refused move must not be a Go error: %v", err)
	}
	if result.Success {
		t.Error("go_down from the bottom floor reported success")
	}
	if !strings.Contains(result.Text, "Cannot go down") {
		t.Errorf("unexpected refusal text: %s", result.Text)
	}
}
