package catalog

import (
	"fmt"

	"IdleTycoon/internal/model"
)

// Catalog is the immutable, ordered set of purchasable assets.
type Catalog struct {
	defs  []model.AssetDefinition
	index map[int]int
}

// Default returns the built-in startup catalog.
func Default() *Catalog {
	c, err := New([]model.AssetDefinition{
		{ID: 1, Name: "Espresso Machine", BaseCost: 15, IncomeRate: 0.5},
		{ID: 2, Name: "Unpaid Intern", BaseCost: 100, IncomeRate: 2},
		{ID: 3, Name: "Cloud Server", BaseCost: 500, IncomeRate: 10},
		{ID: 4, Name: "Acquire Rival", BaseCost: 2000, IncomeRate: 50},
		{ID: 5, Name: "Go Public (IPO)", BaseCost: 10000, IncomeRate: 250},
	})
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// New validates defs and builds a Catalog preserving their order.
// A zero GrowthFactor is replaced with model.DefaultGrowthFactor.
func New(defs []model.AssetDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	c := &Catalog{
		defs:  make([]model.AssetDefinition, 0, len(defs)),
		index: make(map[int]int, len(defs)),
	}
	for _, d := range defs {
		if d.GrowthFactor == 0 {
			d.GrowthFactor = model.DefaultGrowthFactor
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("duplicate asset id %d", d.ID)
		}
		if d.BaseCost < 0 {
			return nil, fmt.Errorf("asset %d: base_cost must be >= 0", d.ID)
		}
		if d.IncomeRate < 0 {
			return nil, fmt.Errorf("asset %d: income_rate must be >= 0", d.ID)
		}
		if d.GrowthFactor <= 1 {
			return nil, fmt.Errorf("asset %d: growth_factor must be > 1", d.ID)
		}
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// Definitions returns a copy of the catalog in catalog order.
func (c *Catalog) Definitions() []model.AssetDefinition {
	out := make([]model.AssetDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup finds the definition for id.
func (c *Catalog) Lookup(id int) (model.AssetDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.AssetDefinition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) Len() int { return len(c.defs) }
