package model

// DefaultGrowthFactor is the price multiplier applied per purchased unit.
const DefaultGrowthFactor = 1.15

// AssetDefinition is a catalog entry for a purchasable income generator.
type AssetDefinition struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	BaseCost     float64 `json:"base_cost" yaml:"base_cost"`
	IncomeRate   float64 `json:"income_rate" yaml:"income_rate"` // currency/sec per owned unit
	GrowthFactor float64 `json:"growth_factor" yaml:"growth_factor"`
}

// OwnedAsset tracks how many units of a catalog asset the player owns.
// CurrentCost is cached and must equal round(BaseCost * GrowthFactor^Count).
type OwnedAsset struct {
	ID          int     `json:"id"`
	Count       int     `json:"count"`
	CurrentCost float64 `json:"current_cost"`
}
