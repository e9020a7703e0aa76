package mintworks

// Location names
const (
	LocationProducer          = "producer"
	LocationSupplier          = "supplier"
	LocationBuilder           = "builder"
	LocationLeadershipCouncil = "leadership_council"
	LocationTempAgency        = "temp_agency"
)

type locationDef struct {
	name   string
	spaces int
	// cost is the flat price of placing here; the Supplier charges the plan cost instead
	cost int
}

// locations lists every location in the order legal turns are enumerated
var locations = []locationDef{
	{name: LocationProducer, spaces: 3, cost: 1},
	{name: LocationSupplier, spaces: 3, cost: 0},
	{name: LocationBuilder, spaces: 3, cost: 2},
	{name: LocationLeadershipCouncil, spaces: 1, cost: 1},
	{name: LocationTempAgency, spaces: 1, cost: 2},
}

// Effect payouts
const (
	producerIncome = 2
	councilIncome  = 1
)

func lookupLocation(name string) (locationDef, bool) {
	for _, l := range locations {
		if l.name == name {
			return l, true
		}
	}
	return locationDef{}, false
}

func newLocationStates() []LocationState {
	out := make([]LocationState, len(locations))
	for i, l := range locations {
		out[i] = LocationState{Name: l.name, Occupants: []string{}}
	}
	return out
}

func (s *State) hasSpace(name string) bool {
	def, ok := lookupLocation(name)
	if !ok {
		return false
	}
	loc := s.location(name)
	return loc != nil && len(loc.Occupants) < def.spaces
}

func (s *State) occupied(name string) bool {
	loc := s.location(name)
	return loc != nil && len(loc.Occupants) > 0
}
