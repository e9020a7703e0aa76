package mintworks

// PlanType groups plans by what they do once built
type PlanType string

const (
	PlanCulture    PlanType = "culture"
	PlanProduction PlanType = "production"
	PlanUtility    PlanType = "utility"
)

// Plan is a card that can be bought at the Supplier and built at the Builder
type Plan struct {
	Name  string   `json:"name"`
	Type  PlanType `json:"type"`
	Cost  int      `json:"cost"`
	Stars int      `json:"stars"`

	// Income is paid out to the owner of the building at every upkeep
	Income int `json:"income,omitempty"`
}

type catalogEntry struct {
	plan   Plan
	copies int
}

var catalog = []catalogEntry{
	{Plan{Name: "Statue", Type: PlanCulture, Cost: 2, Stars: 1}, 2},
	{Plan{Name: "Gallery", Type: PlanCulture, Cost: 3, Stars: 2}, 2},
	{Plan{Name: "Museum", Type: PlanCulture, Cost: 4, Stars: 3}, 1},
	{Plan{Name: "Obelisk", Type: PlanCulture, Cost: 5, Stars: 4}, 1},
	{Plan{Name: "Mine", Type: PlanProduction, Cost: 2, Stars: 1, Income: 1}, 2},
	{Plan{Name: "Workshop", Type: PlanProduction, Cost: 3, Stars: 1, Income: 1}, 2},
	{Plan{Name: "Factory", Type: PlanProduction, Cost: 4, Stars: 1, Income: 2}, 1},
	{Plan{Name: "Plant", Type: PlanProduction, Cost: 5, Stars: 2, Income: 2}, 1},
	{Plan{Name: "Windmill", Type: PlanUtility, Cost: 1, Stars: 1}, 2},
	{Plan{Name: "Truck", Type: PlanUtility, Cost: 2, Stars: 1}, 2},
	{Plan{Name: "Crane", Type: PlanUtility, Cost: 3, Stars: 2}, 2},
	{Plan{Name: "Landfill", Type: PlanUtility, Cost: 3, Stars: 3}, 1},
	{Plan{Name: "Vault", Type: PlanUtility, Cost: 4, Stars: 2}, 2},
}

// newDeck returns the full plan deck in catalog order
func newDeck() []Plan {
	var deck []Plan
	for _, e := range catalog {
		for i := 0; i < e.copies; i++ {
			deck = append(deck, e.plan)
		}
	}
	return deck
}
