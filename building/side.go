package building

import "fmt"

// Side is the horizontal position on a floor. Middle is the elevator landing;
// it hosts no business and several tools refuse to act there.
type Side int

const (
	Front Side = iota
	Back
	Middle
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	case Middle:
		return "middle"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide converts a side name to a Side. It accepts the exact lowercase
// names produced by Side.String.
func ParseSide(name string) (Side, error) {
	switch name {
	case "front":
		return Front, nil
	case "back":
		return Back, nil
	case "middle":
		return Middle, nil
	default:
		return 0, fmt.Errorf("unknown side %q", name)
	}
}

// Position is a (floor, side) coordinate in the building.
type Position struct {
	Floor int
	Side  Side
}

func (p Position) String() string {
	return fmt.Sprintf("floor %d, %s", p.Floor, p.Side)
}
