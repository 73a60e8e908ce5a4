package building_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/parcelpilot/courier-go-sdk/building"
)

func mustBuilding(t *testing.T, layout building.Layout) *building.Building {
	t.Helper()
	b, err := building.New(layout, building.WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestEveryFloorHasFrontAndBack(t *testing.T) {
	for name, layout := range map[string]building.Layout{
		"standard": building.StandardLayout(),
		"extended": building.ExtendedLayout(),
	} {
		b := mustBuilding(t, layout)
		for floor := b.MinFloor(); floor <= b.MaxFloor(); floor++ {
			for _, side := range []building.Side{building.Front, building.Back} {
				if b.Business(floor, side) == nil {
					t.Errorf("%s: no business at floor %d, %s", name, floor, side)
				}
			}
			if b.Business(floor, building.Middle) != nil {
				t.Errorf("%s: middle hallway of floor %d has a business", name, floor)
			}
		}
		if b.Business(b.MaxFloor()+1, building.Front) != nil {
			t.Errorf("%s: business above the top floor", name)
		}
		if b.Business(b.MinFloor()-1, building.Back) != nil {
			t.Errorf("%s: business below the bottom floor", name)
		}
	}
}

func TestFindEmployeeCaseInsensitive(t *testing.T) {
	b := mustBuilding(t, building.StandardLayout())

	biz, emp, ok := b.FindEmployee("grace lindqvist")
	if !ok {
		t.Fatal("expected to find Grace Lindqvist")
	}
	if biz.Name != "Harbor Dental" {
		t.Errorf("wrong business: %s", biz.Name)
	}
	if emp.Name != "Grace Lindqvist" {
		t.Errorf("wrong employee: %s", emp.Name)
	}
	if emp.ID == 0 {
		t.Error("employee has no assigned ID")
	}

	if _, _, ok := b.FindEmployee("Nobody Atall"); ok {
		t.Error("found an employee that does not exist")
	}
}

func TestGeneratePackageRevealPolicies(t *testing.T) {
	b := mustBuilding(t, building.StandardLayout())

	for i := 0; i < 20; i++ {
		pkg := b.GeneratePackage(building.RevealAlways)
		biz, _, ok := b.FindEmployee(pkg.Recipient)
		if !ok {
			t.Fatalf("package addressed to unknown employee %q", pkg.Recipient)
		}
		if pkg.BusinessName != biz.Name {
			t.Errorf("revealed business %q, recipient works at %q", pkg.BusinessName, biz.Name)
		}
		if pkg.ID == "" {
			t.Error("package has no ID")
		}
	}

	for i := 0; i < 20; i++ {
		pkg := b.GeneratePackage(building.RevealNever)
		if pkg.BusinessName != "" {
			t.Errorf("RevealNever leaked business %q", pkg.BusinessName)
		}
	}
}

func TestDuplicateEmployeeNamesRejected(t *testing.T) {
	layout := building.StandardLayout()
	layout.Floors[2].Back.Employees[0].Name = "Maya Chen" // already on floor 1

	_, err := building.New(layout)
	if err == nil {
		t.Fatal("expected construction to fail on duplicate employee name")
	}
	if !strings.Contains(err.Error(), "Maya Chen") {
		t.Errorf("error does not name the colliding employee: %v", err)
	}
}

func TestNonContiguousFloorsRejected(t *testing.T) {
	layout := building.StandardLayout()
	layout.Floors[2].Floor = 7

	if _, err := building.New(layout); err == nil {
		t.Fatal("expected construction to fail on non-contiguous floors")
	}
}

func TestFireEscapeLink(t *testing.T) {
	b := mustBuilding(t, building.ExtendedLayout())

	access := b.FireEscapePositions()
	if len(access) != 2 {
		t.Fatalf("expected 2 access points, got %d", len(access))
	}
	want := []building.Position{
		{Floor: 1, Side: building.Front},
		{Floor: 5, Side: building.Front},
	}
	for i, p := range want {
		if access[i] != p {
			t.Errorf("access[%d] = %v, want %v", i, access[i], p)
		}
	}

	to, ok := b.FireEscape(want[0])
	if !ok || to != want[1] {
		t.Errorf("fire escape from %v = %v, %v", want[0], to, ok)
	}
	back, ok := b.FireEscape(want[1])
	if !ok || back != want[0] {
		t.Errorf("fire escape from %v = %v, %v", want[1], back, ok)
	}

	if _, ok := b.FireEscape(building.Position{Floor: 2, Side: building.Front}); ok {
		t.Error("fire escape reachable from floor 2")
	}

	if sb := mustBuilding(t, building.StandardLayout()); len(sb.FireEscapePositions()) != 0 {
		t.Error("standard layout should have no fire escape")
	}
}
