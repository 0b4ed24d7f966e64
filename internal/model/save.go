package model

// SavedAsset is the persisted form of an OwnedAsset. Cost holds CurrentCost.
type SavedAsset struct {
	ID    int     `json:"id"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// SaveSnapshot is the single-slot persisted game state.
type SaveSnapshot struct {
	Balance          float64      `json:"balance"`
	LifetimeEarnings float64      `json:"lifetimeEarnings"`
	Upgrades         []SavedAsset `json:"upgrades"`
}
