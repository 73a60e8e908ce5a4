// Package building models a small, fully-known office building: contiguous
// floors, each with a front and a back business, an elevator landing in the
// middle, and (in the extended layout) a fire escape shortcut between two
// fixed positions.
//
// A Building is constructed once from a Layout, validated eagerly, and
// immutable afterwards. Callers that want a fresh world for test isolation
// construct a new instance rather than resetting shared state.
package building

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// Employee works at exactly one business. The ID is assigned by the building
// at construction and is the employee's identity; the name is only a lookup
// key and must be unique across the whole building.
type Employee struct {
	ID   int
	Name string
	Role string
}

// Business occupies one (floor, side) slot.
type Business struct {
	Name      string
	Floor     int
	Side      Side
	Employees []Employee
}

type employeeRef struct {
	business *Business
	employee *Employee
}

// Building is the immutable world model shared across delivery attempts.
type Building struct {
	minFloor   int
	maxFloor   int
	businesses map[int]map[Side]*Business
	index      map[string]employeeRef // lowercased employee name
	all        []employeeRef          // flat list for random addressing
	fireEscape map[Position]Position
	rng        *rand.Rand
}

// New validates the layout and builds the derived indexes.
//
// Construction fails on a broken layout: non-contiguous floors, a floor
// missing its front or back business, a business placed in the middle, or two
// employees sharing a name. Name collisions are rejected outright instead of
// silently overwriting the index entry.
func New(layout Layout, opts ...Option) (*Building, error) {
	if len(layout.Floors) == 0 {
		return nil, fmt.Errorf("layout has no floors")
	}

	b := &Building{
		businesses: make(map[int]map[Side]*Business),
		index:      make(map[string]employeeRef),
		fireEscape: make(map[Position]Position),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	b.minFloor = layout.Floors[0].Floor
	b.maxFloor = layout.Floors[len(layout.Floors)-1].Floor

	nextID := 1
	for i, fs := range layout.Floors {
		want := b.minFloor + i
		if fs.Floor != want {
			return nil, fmt.Errorf("floors must be contiguous: expected floor %d, got %d", want, fs.Floor)
		}
		sides := map[Side]BusinessSpec{Front: fs.Front, Back: fs.Back}
		b.businesses[fs.Floor] = make(map[Side]*Business, 2)
		for _, side := range []Side{Front, Back} {
			spec := sides[side]
			if spec.Name == "" {
				return nil, fmt.Errorf("floor %d has no %s business", fs.Floor, side)
			}
			biz := &Business{Name: spec.Name, Floor: fs.Floor, Side: side}
			for _, es := range spec.Employees {
				biz.Employees = append(biz.Employees, Employee{ID: nextID, Name: es.Name, Role: es.Role})
				nextID++
			}
			b.businesses[fs.Floor][side] = biz

			for j := range biz.Employees {
				emp := &biz.Employees[j]
				key := strings.ToLower(emp.Name)
				if prev, exists := b.index[key]; exists {
					return nil, fmt.Errorf("duplicate employee name %q at %s and %s",
						emp.Name, prev.business.Name, biz.Name)
				}
				ref := employeeRef{business: biz, employee: emp}
				b.index[key] = ref
				b.all = append(b.all, ref)
			}
		}
	}

	for _, link := range layout.FireEscapes {
		if link.A.Side == Middle || link.B.Side == Middle {
			return nil, fmt.Errorf("fire escape cannot attach to the middle hallway")
		}
		if b.Business(link.A.Floor, link.A.Side) == nil || b.Business(link.B.Floor, link.B.Side) == nil {
			return nil, fmt.Errorf("fire escape links unknown position: %s <-> %s", link.A, link.B)
		}
		b.fireEscape[link.A] = link.B
		b.fireEscape[link.B] = link.A
	}

	return b, nil
}

// Option configures a Building at construction.
type Option func(*Building)

// WithRand sets the random source used by GeneratePackage, for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(b *Building) { b.rng = rng }
}

// MinFloor returns the lowest floor number.
func (b *Building) MinFloor() int { return b.minFloor }

// MaxFloor returns the highest floor number.
func (b *Building) MaxFloor() int { return b.maxFloor }

// Business returns the business at (floor, side), or nil for the middle
// hallway and for out-of-range floors.
func (b *Building) Business(floor int, side Side) *Business {
	if side == Middle {
		return nil
	}
	floorMap, ok := b.businesses[floor]
	if !ok {
		return nil
	}
	return floorMap[side]
}

// FindEmployee resolves a recipient name to their business and employee
// record. Matching is exact but case-insensitive.
func (b *Building) FindEmployee(name string) (*Business, *Employee, bool) {
	ref, ok := b.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, nil, false
	}
	return ref.business, ref.employee, true
}

// Employees returns the total number of employees in the building.
func (b *Building) Employees() int { return len(b.all) }

// FireEscape returns the position reached by taking the fire escape from the
// given position, and whether the position is a valid access point.
func (b *Building) FireEscape(from Position) (Position, bool) {
	to, ok := b.fireEscape[from]
	return to, ok
}

// FireEscapePositions returns the valid fire escape access points, lowest
// floor first. Empty when the layout has no fire escape.
func (b *Building) FireEscapePositions() []Position {
	positions := make([]Position, 0, len(b.fireEscape))
	for from := range b.fireEscape {
		positions = append(positions, from)
	}
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if positions[j].Floor < positions[i].Floor {
				positions[i], positions[j] = positions[j], positions[i]
			}
		}
	}
	return positions
}

// RevealPolicy controls whether a generated package names the recipient's employer.
type RevealPolicy int

const (
	// RevealCoinFlip reveals the business name with probability 1/2.
	RevealCoinFlip RevealPolicy = iota
	RevealAlways
	RevealNever
)

// Package is one delivery task. BusinessName is empty when the label does not
// reveal where the recipient works.
type Package struct {
	ID           string
	Recipient    string
	BusinessName string
}

// Label renders the package label the way it is described to the agent.
func (p *Package) Label() string {
	if p.BusinessName != "" {
		return fmt.Sprintf("Package %s for %s at %s", p.ID, p.Recipient, p.BusinessName)
	}
	return fmt.Sprintf("Package %s for %s", p.ID, p.Recipient)
}

// GeneratePackage creates a delivery task addressed to a uniformly random
// employee. The only side effect is consuming the building's random source.
func (b *Building) GeneratePackage(policy RevealPolicy) *Package {
	ref := b.all[b.rng.Intn(len(b.all))]
	pkg := &Package{
		ID:        uuid.New().String()[:8],
		Recipient: ref.employee.Name,
	}
	reveal := policy == RevealAlways
	if policy == RevealCoinFlip {
		reveal = b.rng.Intn(2) == 0
	}
	if reveal {
		pkg.BusinessName = ref.business.Name
	}
	return pkg
}
