// Package courier holds the delivery agent's mutable state and the tool set
// that mutates it. Every tool call, success or failure, costs exactly one
// step and leaves one record on the action trail.
package courier

import (
	"fmt"
	"strings"

	"github.com/parcelpilot/courier-go-sdk/building"
)

// SuccessMarker appears in the result string of a successful delivery and
// nowhere else. The agent loop stops the moment it observes it.
const SuccessMarker = "Delivery complete"

// Observer is notified synchronously after each recorded action.
type Observer func(rec ActionRecord)

// Toolbox executes agent actions against an immutable Building and the
// current attempt's State. It is not safe for concurrent use; each delivery
// attempt owns its Toolbox exclusively.
type Toolbox struct {
	bld        *building.Building
	state      State
	startFloor int
	startSide  building.Side
	observer   Observer
	events     chan ActionRecord
	deliveries int
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithObserver registers a callback invoked after every recorded action.
func WithObserver(fn Observer) Option {
	return func(t *Toolbox) { t.observer = fn }
}

// WithStart overrides the position the agent is reset to by Begin.
// The default is the bottom floor, front side.
func WithStart(floor int, side building.Side) Option {
	return func(t *Toolbox) {
		t.startFloor = floor
		t.startSide = side
	}
}

// WithEventBuffer attaches a buffered event channel that receives every
// ActionRecord. When the buffer is full the record is dropped rather than
// blocking the attempt; the authoritative trail is State().History.
func WithEventBuffer(size int) Option {
	return func(t *Toolbox) { t.events = make(chan ActionRecord, size) }
}

// NewToolbox creates a toolbox over the given building.
func NewToolbox(b *building.Building, opts ...Option) *Toolbox {
	t := &Toolbox{
		bld:        b,
		startFloor: b.MinFloor(),
		startSide:  building.Front,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin discards any previous attempt and resets the state for a new one.
func (t *Toolbox) Begin(pkg *building.Package) {
	t.state = State{
		Floor:   t.startFloor,
		Side:    t.startSide,
		Package: pkg,
	}
}

// State returns a copy of the current attempt state.
func (t *Toolbox) State() State { return t.state.clone() }

// Delivered reports whether the current attempt's package has been delivered.
func (t *Toolbox) Delivered() bool { return t.state.Delivered }

// StepsTaken returns the number of tool calls made in the current attempt.
func (t *Toolbox) StepsTaken() int { return t.state.StepsTaken }

// LastRecord returns the most recent action record of the current attempt.
func (t *Toolbox) LastRecord() (ActionRecord, bool) {
	if len(t.state.History) == 0 {
		return ActionRecord{}, false
	}
	return t.state.History[len(t.state.History)-1], true
}

// Deliveries returns the number of successful deliveries across all attempts.
func (t *Toolbox) Deliveries() int { return t.deliveries }

// Building returns the world the toolbox operates in.
func (t *Toolbox) Building() *building.Building { return t.bld }

// Events returns the event channel attached by WithEventBuffer, or nil.
func (t *Toolbox) Events() <-chan ActionRecord { return t.events }

// Invoke dispatches an action by its enum value. Only DeliverPackage reads
// anything from args (the "recipient_name" key). Expected navigational
// failures come back as ordinary strings; a non-nil error means the building
// definition itself is broken.
func (t *Toolbox) Invoke(action Action, args map[string]string) (string, error) {
	switch action {
	case GoUp:
		return t.GoUp(), nil
	case GoDown:
		return t.GoDown(), nil
	case GoToFront:
		return t.GoToSide(building.Front)
	case GoToBack:
		return t.GoToSide(building.Back)
	case CheckCurrentLocation:
		return t.CheckCurrentLocation(), nil
	case GetEmployeeList:
		return t.GetEmployeeList(), nil
	case DeliverPackage:
		return t.DeliverPackage(args["recipient_name"]), nil
	case UseFireEscape:
		return t.UseFireEscape(), nil
	default:
		return "", fmt.Errorf("unknown action %v", action)
	}
}

// GoUp takes the elevator one floor up. The elevator always lands in the
// middle hallway, discarding the prior side.
func (t *Toolbox) GoUp() string {
	var result string
	success := false
	if t.state.Floor >= t.bld.MaxFloor() {
		result = fmt.Sprintf("Cannot go up. You are already on the top floor (floor %d).", t.state.Floor)
	} else {
		t.state.Floor++
		t.state.Side = building.Middle
		result = fmt.Sprintf("You take the elevator up to floor %d. You are in the middle hallway.", t.state.Floor)
		success = true
	}
	t.record(GoUp, nil, result, success)
	return result
}

// GoDown takes the elevator one floor down.
func (t *Toolbox) GoDown() string {
	var result string
	success := false
	if t.state.Floor <= t.bld.MinFloor() {
		result = fmt.Sprintf("Cannot go down. You are already on the bottom floor (floor %d).", t.state.Floor)
	} else {
		t.state.Floor--
		t.state.Side = building.Middle
		result = fmt.Sprintf("You take the elevator down to floor %d. You are in the middle hallway.", t.state.Floor)
		success = true
	}
	t.record(GoDown, nil, result, success)
	return result
}

// GoToSide walks to the front or back of the current floor. A missing
// business at the destination indicates a broken building definition and is
// returned as an error, not as a result string; nothing is recorded in that
// case.
func (t *Toolbox) GoToSide(side building.Side) (string, error) {
	if side == building.Middle {
		return "", fmt.Errorf("cannot walk to the middle hallway directly")
	}
	action := GoToFront
	if side == building.Back {
		action = GoToBack
	}

	if t.state.Side == side {
		result := fmt.Sprintf("You are already at the %s of floor %d.", side, t.state.Floor)
		t.record(action, nil, result, false)
		return result, nil
	}

	biz := t.bld.Business(t.state.Floor, side)
	if biz == nil {
		return "", fmt.Errorf("no business at floor %d, %s: building definition is broken", t.state.Floor, side)
	}

	t.state.Side = side
	result := fmt.Sprintf("You walk to the %s of floor %d. You are now outside %s.", side, t.state.Floor, biz.Name)
	t.record(action, nil, result, true)
	return result, nil
}

// CheckCurrentLocation is a pure read; it never fails.
func (t *Toolbox) CheckCurrentLocation() string {
	var result string
	if t.state.Side == building.Middle {
		result = fmt.Sprintf("You are on floor %d, in the middle hallway by the elevator.", t.state.Floor)
	} else {
		biz := t.bld.Business(t.state.Floor, t.state.Side)
		result = fmt.Sprintf("You are on floor %d, at the %s, outside %s.", t.state.Floor, t.state.Side, biz.Name)
	}
	t.record(CheckCurrentLocation, nil, result, true)
	return result
}

// GetEmployeeList lists the employees at the current business. It is refused
// from the middle hallway.
func (t *Toolbox) GetEmployeeList() string {
	var result string
	success := false
	if t.state.Side == building.Middle {
		result = "You are in the middle hallway. There is no business here. Walk to the front or back of the floor first."
	} else {
		biz := t.bld.Business(t.state.Floor, t.state.Side)
		if len(biz.Employees) == 0 {
			result = fmt.Sprintf("Nobody works at %s right now.", biz.Name)
			success = true
		} else {
			entries := make([]string, len(biz.Employees))
			for i, emp := range biz.Employees {
				entries[i] = fmt.Sprintf("%s (%s)", emp.Name, emp.Role)
			}
			result = fmt.Sprintf("Employees at %s: %s.", biz.Name, strings.Join(entries, ", "))
			success = true
		}
	}
	t.record(GetEmployeeList, nil, result, success)
	return result
}

// DeliverPackage hands the held package to the named recipient. The possible
// outcomes are mutually exclusive and checked in priority order: no package
// held, standing in the hallway, wrong recipient named, right recipient but
// wrong workplace, success.
func (t *Toolbox) DeliverPackage(recipientName string) string {
	args := map[string]string{"recipient_name": recipientName}

	var result string
	success := false
	switch {
	case t.state.Package == nil:
		result = "No package to deliver."

	case t.state.Side == building.Middle:
		result = "You cannot deliver from the middle hallway. Walk to a business first."

	case !strings.EqualFold(strings.TrimSpace(recipientName), t.state.Package.Recipient):
		result = fmt.Sprintf("This package is addressed to %s, not %s. You are trying to hand it to the wrong person.",
			t.state.Package.Recipient, strings.TrimSpace(recipientName))

	default:
		biz := t.bld.Business(t.state.Floor, t.state.Side)
		home, _, found := t.bld.FindEmployee(t.state.Package.Recipient)
		if !found || home != biz {
			result = fmt.Sprintf("%s does not work at %s. You need to find their workplace.",
				t.state.Package.Recipient, biz.Name)
		} else {
			result = fmt.Sprintf("%s! %s accepted the package at %s.",
				SuccessMarker, t.state.Package.Recipient, biz.Name)
			t.state.Package = nil
			t.state.Delivered = true
			t.deliveries++
			success = true
		}
	}

	t.record(DeliverPackage, args, result, success)
	return result
}

// UseFireEscape teleports between the two fixed fire escape access points.
// From anywhere else it fails with a message naming both valid positions.
func (t *Toolbox) UseFireEscape() string {
	var result string
	success := false
	access := t.bld.FireEscapePositions()
	if len(access) == 0 {
		result = "This building has no fire escape."
	} else if to, ok := t.bld.FireEscape(t.state.Position()); ok {
		t.state.Floor = to.Floor
		t.state.Side = to.Side
		biz := t.bld.Business(to.Floor, to.Side)
		result = fmt.Sprintf("You take the fire escape to floor %d. You are at the %s, outside %s.",
			to.Floor, to.Side, biz.Name)
		success = true
	} else {
		points := make([]string, len(access))
		for i, p := range access {
			points[i] = p.String()
		}
		result = fmt.Sprintf("The fire escape can only be used from %s. You are at %s.",
			strings.Join(points, " or "), t.state.Position())
	}
	t.record(UseFireEscape, nil, result, success)
	return result
}

// record is the shared hook behind every tool: it charges one step, appends
// the ActionRecord, and notifies the observer and event channel.
func (t *Toolbox) record(action Action, args map[string]string, result string, success bool) {
	t.state.StepsTaken++
	rec := ActionRecord{
		Step:     t.state.StepsTaken,
		Action:   action.String(),
		Args:     args,
		Result:   result,
		Success:  success,
		Location: t.state.Position().String(),
	}
	t.state.History = append(t.state.History, rec)
	if t.observer != nil {
		t.observer(rec)
	}
	if t.events != nil {
		select {
		case t.events <- rec:
		default:
		}
	}
}
