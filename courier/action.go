package courier

import "fmt"

// Action is the closed set of operations the agent can take. The LLM boundary
// speaks tool-name strings; everything inside the domain dispatches on this
// enum so the compiler flags a missing case when a new action is added.
type Action int

const (
	GoUp Action = iota
	GoDown
	GoToFront
	GoToBack
	CheckCurrentLocation
	GetEmployeeList
	DeliverPackage
	UseFireEscape
)

// actionNames maps each Action to its wire-level tool name.
var actionNames = [...]string{
	GoUp:                 "go_up",
	GoDown:               "go_down",
	GoToFront:            "go_to_front",
	GoToBack:             "go_to_back",
	CheckCurrentLocation: "check_current_location",
	GetEmployeeList:      "get_employee_list",
	DeliverPackage:       "deliver_package",
	UseFireEscape:        "use_fire_escape",
}

func (a Action) String() string {
	if int(a) < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction resolves a wire-level tool name to an Action.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return Action(a), true
		}
	}
	return 0, false
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, len(actionNames))
	for i := range actionNames {
		out[i] = Action(i)
	}
	return out
}
