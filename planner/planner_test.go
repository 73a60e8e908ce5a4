package planner_test

import (
	"reflect"
	"testing"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/planner"
)

func mustBuilding(t *testing.T, layout building.Layout) *building.Building {
	t.Helper()
	b, err := building.New(layout)
	if err != nil {
		t.Fatalf("New building: %v", err)
	}
	return b
}

func pos(floor int, side building.Side) building.Position {
	return building.Position{Floor: floor, Side: side}
}

func TestFireEscapeShortcut(t *testing.T) {
	b := mustBuilding(t, building.ExtendedLayout())

	steps, route, err := planner.OptimalSteps(b, pos(1, building.Front), pos(5, building.Front))
	if err != nil {
		t.Fatal(err)
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
	want := []string{"use_fire_escape", "deliver_package"}
	if !reflect.DeepEqual(route, want) {
		t.Errorf("route = %v, want %v", route, want)
	}
}

func TestElevatorRoute(t *testing.T) {
	b := mustBuilding(t, building.StandardLayout())

	steps, route, err := planner.OptimalSteps(b, pos(1, building.Front), pos(2, building.Back))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"go_up", "go_to_back", "deliver_package"}
	if steps != 3 || !reflect.DeepEqual(route, want) {
		t.Errorf("got %d %v, want 3 %v", steps, route, want)
	}
}

func TestStartEqualsTarget(t *testing.T) {
	b := mustBuilding(t, building.StandardLayout())

	steps, route, err := planner.OptimalSteps(b, pos(1, building.Front), pos(1, building.Front))
	if err != nil {
		t.Fatal(err)
	}
	if steps != 1 || len(route) != 1 || route[0] != "deliver_package" {
		t.Errorf("got %d %v", steps, route)
	}
}

func TestTieBreakPrefersElevator(t *testing.T) {
	// From (1, middle) to (4, front) both routes need four moves:
	// elevator up-up-up-front, or front-fire_escape-down-front. The elevator
	// route must win the tie.
	b := mustBuilding(t, building.ExtendedLayout())

	steps, route, err := planner.OptimalSteps(b, pos(1, building.Middle), pos(4, building.Front))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"go_up", "go_up", "go_up", "go_to_front", "deliver_package"}
	if steps != 5 || !reflect.DeepEqual(route, want) {
		t.Errorf("got %d %v, want 5 %v", steps, route, want)
	}
}

func TestFireEscapeWinsWhenStrictlyShorter(t *testing.T) {
	// From (2, front) to (5, front): down-front... the fire escape route
	// (go_down, go_to_front, use_fire_escape) beats four elevator moves.
	b := mustBuilding(t, building.ExtendedLayout())

	steps, route, err := planner.OptimalSteps(b, pos(2, building.Front), pos(5, building.Front))
	if err != nil {
		t.Fatal(err)
	}
	if steps != 4 {
		t.Fatalf("steps = %d (%v), want 4", steps, route)
	}
	if route[len(route)-2] != "use_fire_escape" {
		t.Errorf("expected fire escape in route, got %v", route)
	}
}

func TestMiddleTargetRejected(t *testing.T) {
	b := mustBuilding(t, building.StandardLayout())

	if _, _, err := planner.OptimalSteps(b, pos(1, building.Front), pos(2, building.Middle)); err == nil {
		t.Error("middle hallway accepted as delivery target")
	}
	if _, _, err := planner.OptimalSteps(b, pos(9, building.Front), pos(2, building.Back)); err == nil {
		t.Error("out-of-building start accepted")
	}
}
