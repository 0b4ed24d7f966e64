package persistence

import (
	"encoding/json"
	"fmt"
	"math"

	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/model"
)

// ReconcileOptions controls how a loaded snapshot is merged into the catalog.
type ReconcileOptions struct {
	// RecomputeCost derives each cost from count and the catalog instead of
	// trusting the saved value.
	RecomputeCost bool
	ClickValue    float64
}

// Report lists the catalog/snapshot mismatches resolved by Reconcile.
type Report struct {
	Dropped   []int // saved ids no longer in the catalog
	Defaulted []int // catalog ids absent from the save
}

// Serialize captures the persisted subset of st.
func Serialize(st *economy.State) model.SaveSnapshot {
	owned := st.Owned()
	snap := model.SaveSnapshot{
		Balance:          st.Balance,
		LifetimeEarnings: st.LifetimeEarnings,
		Upgrades:         make([]model.SavedAsset, len(owned)),
	}
	for i, o := range owned {
		snap.Upgrades[i] = model.SavedAsset{ID: o.ID, Count: o.Count, Cost: o.CurrentCost}
	}
	return snap
}

// Reconcile merges snap into cat. A nil snapshot yields catalog defaults.
func Reconcile(snap *model.SaveSnapshot, cat *catalog.Catalog, opts ReconcileOptions) (*economy.State, Report) {
	var rep Report
	if snap == nil {
		return economy.New(cat, opts.ClickValue), rep
	}

	saved := make(map[int]model.SavedAsset, len(snap.Upgrades))
	for _, u := range snap.Upgrades {
		if _, dup := saved[u.ID]; dup {
			continue
		}
		saved[u.ID] = u
		if _, ok := cat.Lookup(u.ID); !ok {
			rep.Dropped = append(rep.Dropped, u.ID)
		}
	}

	defs := cat.Definitions()
	owned := make([]model.OwnedAsset, len(defs))
	for i, d := range defs {
		u, ok := saved[d.ID]
		if !ok {
			rep.Defaulted = append(rep.Defaulted, d.ID)
			owned[i] = model.OwnedAsset{ID: d.ID, CurrentCost: economy.CostAt(d, 0)}
			continue
		}
		count := u.Count
		if count < 0 {
			count = 0
		}
		cost := u.Cost
		if opts.RecomputeCost || cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
			cost = economy.CostAt(d, count)
		}
		owned[i] = model.OwnedAsset{ID: d.ID, Count: count, CurrentCost: cost}
	}

	return economy.Restore(cat, opts.ClickValue, snap.Balance, snap.LifetimeEarnings, owned), rep
}

type wireAsset struct {
	ID    int     `json:"id"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

type wireSnapshot struct {
	Balance          *float64    `json:"balance"`
	Money            *float64    `json:"money"`
	LifetimeEarnings *float64    `json:"lifetimeEarnings"`
	Upgrades         []wireAsset `json:"upgrades"`
}

// Decode parses a persisted snapshot. Missing numeric fields read as zero and
// the legacy "money" field is accepted in place of "balance".
func Decode(data []byte) (*model.SaveSnapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap := &model.SaveSnapshot{Upgrades: make([]model.SavedAsset, 0, len(w.Upgrades))}
	switch {
	case w.Balance != nil:
		snap.Balance = *w.Balance
	case w.Money != nil:
		snap.Balance = *w.Money
	}
	if w.LifetimeEarnings != nil {
		snap.LifetimeEarnings = *w.LifetimeEarnings
	}
	for _, u := range w.Upgrades {
		snap.Upgrades = append(snap.Upgrades, model.SavedAsset(u))
	}
	return snap, nil
}

// Encode renders snap in the persisted JSON layout.
func Encode(snap model.SaveSnapshot) ([]byte, error) {
	if snap.Upgrades == nil {
		snap.Upgrades = []model.SavedAsset{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
