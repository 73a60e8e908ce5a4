// Package planner computes minimal tool-call sequences through a building.
//
// The world is a small unit-weight directed graph: one node per (floor, side)
// position including each floor's middle hallway, with edges for the elevator
// (which always lands in the middle), lateral walks, and any fire escape
// links. Breadth-first search gives the minimal step count; edges are
// expanded elevator-first so that when a fire escape route merely ties the
// elevator route, the elevator route wins.
package planner

import (
	"fmt"

	"github.com/parcelpilot/courier-go-sdk/building"
	"github.com/parcelpilot/courier-go-sdk/courier"
)

type edge struct {
	to   building.Position
	tool courier.Action
}

// OptimalSteps returns the minimal number of tool calls to deliver a package
// from start to target, and the tool names in order. The final
// deliver_package call is included in both. The target must be a business
// position, never the middle hallway.
func OptimalSteps(b *building.Building, start, target building.Position) (int, []string, error) {
	if target.Side == building.Middle {
		return 0, nil, fmt.Errorf("target %s is the middle hallway, not a business", target)
	}
	if b.Business(target.Floor, target.Side) == nil {
		return 0, nil, fmt.Errorf("no business at target %s", target)
	}
	if start.Floor < b.MinFloor() || start.Floor > b.MaxFloor() {
		return 0, nil, fmt.Errorf("start %s is outside the building", start)
	}

	route, err := shortestRoute(b, start, target)
	if err != nil {
		return 0, nil, err
	}

	tools := make([]string, 0, len(route)+1)
	for _, a := range route {
		tools = append(tools, a.String())
	}
	tools = append(tools, courier.DeliverPackage.String())
	return len(tools), tools, nil
}

type visit struct {
	prev building.Position
	via  courier.Action
}

// shortestRoute runs BFS from start to target and reconstructs the move list.
func shortestRoute(b *building.Building, start, target building.Position) ([]courier.Action, error) {
	if start == target {
		return nil, nil
	}

	seen := map[building.Position]visit{start: {}}
	queue := []building.Position{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range edgesFrom(b, cur) {
			if _, ok := seen[e.to]; ok {
				continue
			}
			seen[e.to] = visit{prev: cur, via: e.tool}
			if e.to == target {
				return reconstruct(seen, start, target), nil
			}
			queue = append(queue, e.to)
		}
	}
	return nil, fmt.Errorf("no route from %s to %s", start, target)
}

// edgesFrom lists the moves available at a position. Order matters: elevator
// and lateral moves come before fire escape edges, which settles ties in
// favor of the plain elevator route.
func edgesFrom(b *building.Building, from building.Position) []edge {
	var edges []edge
	if from.Floor < b.MaxFloor() {
		edges = append(edges, edge{to: building.Position{Floor: from.Floor + 1, Side: building.Middle}, tool: courier.GoUp})
	}
	if from.Floor > b.MinFloor() {
		edges = append(edges, edge{to: building.Position{Floor: from.Floor - 1, Side: building.Middle}, tool: courier.GoDown})
	}
	if from.Side != building.Front {
		edges = append(edges, edge{to: building.Position{Floor: from.Floor, Side: building.Front}, tool: courier.GoToFront})
	}
	if from.Side != building.Back {
		edges = append(edges, edge{to: building.Position{Floor: from.Floor, Side: building.Back}, tool: courier.GoToBack})
	}
	if to, ok := b.FireEscape(from); ok {
		edges = append(edges, edge{to: to, tool: courier.UseFireEscape})
	}
	return edges
}

func reconstruct(seen map[building.Position]visit, start, target building.Position) []courier.Action {
	var reversed []courier.Action
	for cur := target; cur != start; cur = seen[cur].prev {
		reversed = append(reversed, seen[cur].via)
	}
	route := make([]courier.Action, len(reversed))
	for i := range reversed {
		route[i] = reversed[len(reversed)-1-i]
	}
	return route
}
