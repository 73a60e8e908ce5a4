package building

// EmployeeSpec declares one employee in a layout.
type EmployeeSpec struct {
	Name string
	Role string
}

// BusinessSpec declares the business occupying one (floor, side) slot.
type BusinessSpec struct {
	Name      string
	Employees []EmployeeSpec
}

// FloorSpec declares one floor. Every floor has exactly a front and a back business.
type FloorSpec struct {
	Floor int
	Front BusinessSpec
	Back  BusinessSpec
}

// FireEscapeLink is a bidirectional shortcut between two fixed positions.
type FireEscapeLink struct {
	A Position
	B Position
}

// Layout is the static description a Building is constructed from.
type Layout struct {
	Floors      []FloorSpec
	FireEscapes []FireEscapeLink
}

// StandardLayout is the three-floor building used by the easy delivery game.
func StandardLayout() Layout {
	return Layout{
		Floors: []FloorSpec{
			{
				Floor: 1,
				Front: BusinessSpec{
					Name: "Brew & Bean Cafe",
					Employees: []EmployeeSpec{
						{Name: "Maya Chen", Role: "Barista"},
						{Name: "Tom Okafor", Role: "Cafe Manager"},
					},
				},
				Back: BusinessSpec{
					Name: "QuickPrint Copy Center",
					Employees: []EmployeeSpec{
						{Name: "Lena Voss", Role: "Print Technician"},
						{Name: "Ravi Patel", Role: "Store Owner"},
					},
				},
			},
			{
				Floor: 2,
				Front: BusinessSpec{
					Name: "Harbor Dental",
					Employees: []EmployeeSpec{
						{Name: "Grace Lindqvist", Role: "Dentist"},
						{Name: "Omar Haddad", Role: "Receptionist"},
					},
				},
				Back: BusinessSpec{
					Name: "Pixel Forge Studios",
					Employees: []EmployeeSpec{
						{Name: "Jonas Wei", Role: "Game Designer"},
						{Name: "Sofia Marino", Role: "Art Director"},
						{Name: "Dmitri Kovac", Role: "Engineer"},
					},
				},
			},
			{
				Floor: 3,
				Front: BusinessSpec{
					Name: "Alvarez & Finch Law",
					Employees: []EmployeeSpec{
						{Name: "Isabel Alvarez", Role: "Partner"},
						{Name: "Henry Finch", Role: "Partner"},
						{Name: "Nadia Rask", Role: "Paralegal"},
					},
				},
				Back: BusinessSpec{
					Name: "Summit Accounting",
					Employees: []EmployeeSpec{
						{Name: "Paul Nguyen", Role: "Accountant"},
						{Name: "Astrid Holm", Role: "Auditor"},
					},
				},
			},
		},
	}
}

// ExtendedLayout is the five-floor building used by the medium delivery game.
// A fire escape connects the front of floor 1 with the front of floor 5.
func ExtendedLayout() Layout {
	base := StandardLayout()
	base.Floors = append(base.Floors,
		FloorSpec{
			Floor: 4,
			Front: BusinessSpec{
				Name: "Violet Sky Travel",
				Employees: []EmployeeSpec{
					{Name: "Camille Laurent", Role: "Travel Agent"},
					{Name: "Felix Brandt", Role: "Booking Specialist"},
				},
			},
			Back: BusinessSpec{
				Name: "Northside Therapy Group",
				Employees: []EmployeeSpec{
					{Name: "Dr. Amara Osei", Role: "Therapist"},
					{Name: "Yuki Tanaka", Role: "Office Coordinator"},
				},
			},
		},
		FloorSpec{
			Floor: 5,
			Front: BusinessSpec{
				Name: "Lanternfish Publishing",
				Employees: []EmployeeSpec{
					{Name: "Edgar Moody", Role: "Editor in Chief"},
					{Name: "Priya Sharma", Role: "Acquisitions Editor"},
					{Name: "Colm Brady", Role: "Copy Editor"},
				},
			},
			Back: BusinessSpec{
				Name: "Apex Recruiting",
				Employees: []EmployeeSpec{
					{Name: "Sandra Ilves", Role: "Recruiter"},
					{Name: "Marcus Bell", Role: "Account Executive"},
				},
			},
		},
	)
	base.FireEscapes = []FireEscapeLink{
		{A: Position{Floor: 1, Side: Front}, B: Position{Floor: 5, Side: Front}},
	}
	return base
}
