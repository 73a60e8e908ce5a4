package courier

import "github.com/parcelpilot/courier-go-sdk/building"

// ActionRecord is one entry of the append-only action trail. Exactly one
// record is written per tool invocation, in call order, whether the action
// succeeded or not.
type ActionRecord struct {
	Step     int               `json:"step"`
	Action   string            `json:"action"`
	Args     map[string]string `json:"args,omitempty"`
	Result   string            `json:"result"`
	Success  bool              `json:"success"`
	Location string            `json:"location"`
}

// State is the mutable position and progress of one delivery attempt. It is
// mutated exclusively by Toolbox operations and discarded when a new attempt
// begins.
type State struct {
	Floor      int
	Side       building.Side
	StepsTaken int
	Package    *building.Package
	Delivered  bool
	History    []ActionRecord
}

// Position returns the agent's current (floor, side). Value receiver so it
// can be called straight off Toolbox.State().
func (s State) Position() building.Position {
	return building.Position{Floor: s.Floor, Side: s.Side}
}

func (s *State) clone() State {
	out := *s
	out.History = make([]ActionRecord, len(s.History))
	copy(out.History, s.History)
	if s.Package != nil {
		pkg := *s.Package
		out.Package = &pkg
	}
	return out
}
