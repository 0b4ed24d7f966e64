package economy

import (
	"errors"
	"math"

	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/model"
)

// MultiplierFactor scales all income while the multiplier window is active.
const MultiplierFactor = 2

// DefaultClickValue is the currency granted per manual action.
const DefaultClickValue = 1

// ErrUnknownAsset is returned when an asset id is not in the catalog.
var ErrUnknownAsset = errors.New("unknown asset")

// State is the player's economy. It is not safe for concurrent use; the
// owning game context serializes access.
type State struct {
	Balance          float64
	LifetimeEarnings float64
	AutoIncomeRate   float64
	ClickValue       float64

	catalog *catalog.Catalog
	owned   []model.OwnedAsset
	index   map[int]int
}

// New returns a fresh economy with every catalog asset at its defaults.
func New(cat *catalog.Catalog, clickValue float64) *State {
	defs := cat.Definitions()
	owned := make([]model.OwnedAsset, len(defs))
	for i, d := range defs {
		owned[i] = model.OwnedAsset{ID: d.ID, Count: 0, CurrentCost: CostAt(d, 0)}
	}
	return Restore(cat, clickValue, 0, 0, owned)
}

// Restore builds an economy from already-reconciled values. owned must hold
// one entry per catalog id in catalog order. AutoIncomeRate is recomputed.
func Restore(cat *catalog.Catalog, clickValue, balance, lifetime float64, owned []model.OwnedAsset) *State {
	if clickValue <= 0 {
		clickValue = DefaultClickValue
	}
	s := &State{
		Balance:          nonNegative(balance),
		LifetimeEarnings: nonNegative(lifetime),
		ClickValue:       clickValue,
		catalog:          cat,
		owned:            make([]model.OwnedAsset, len(owned)),
		index:            make(map[int]int, len(owned)),
	}
	copy(s.owned, owned)
	for i, o := range s.owned {
		s.index[o.ID] = i
	}
	s.RecomputeIncomeRate()
	return s
}

// CostAt returns round(BaseCost * GrowthFactor^count).
func CostAt(d model.AssetDefinition, count int) float64 {
	return math.Round(d.BaseCost * math.Pow(d.GrowthFactor, float64(count)))
}

// ClampDelta bounds a wall-clock tick delta to [0, max] seconds.
func ClampDelta(deltaSeconds, maxSeconds float64) float64 {
	if deltaSeconds <= 0 || math.IsNaN(deltaSeconds) {
		return 0
	}
	if maxSeconds > 0 && deltaSeconds > maxSeconds {
		return maxSeconds
	}
	return deltaSeconds
}

// ApplyManualAction credits one click and returns the granted amount.
func (s *State) ApplyManualAction(multiplierActive bool) float64 {
	amount := s.ClickValue * factor(multiplierActive)
	s.credit(amount)
	return amount
}

// ApplyIncomeTick credits passive income for deltaSeconds and returns it.
func (s *State) ApplyIncomeTick(deltaSeconds float64, multiplierActive bool) float64 {
	if deltaSeconds <= 0 {
		return 0
	}
	income := s.AutoIncomeRate * factor(multiplierActive) * deltaSeconds
	s.credit(income)
	return income
}

// Grant credits an externally computed reward, such as a bonus claim.
func (s *State) Grant(amount float64) {
	s.credit(amount)
}

// Purchase buys one unit of assetID. It reports false with no state change
// when the balance cannot cover the current cost.
func (s *State) Purchase(assetID int) (model.OwnedAsset, bool, error) {
	def, ok := s.catalog.Lookup(assetID)
	i, owned := s.index[assetID]
	if !ok || !owned {
		return model.OwnedAsset{}, false, ErrUnknownAsset
	}
	o := s.owned[i]
	if s.Balance < o.CurrentCost {
		return o, false, nil
	}

	s.Balance -= o.CurrentCost
	o.Count++
	o.CurrentCost = CostAt(def, o.Count)
	s.owned[i] = o
	s.RecomputeIncomeRate()
	return o, true, nil
}

// RecomputeIncomeRate sets AutoIncomeRate to the sum of count*incomeRate.
func (s *State) RecomputeIncomeRate() {
	var rate float64
	for _, o := range s.owned {
		if d, ok := s.catalog.Lookup(o.ID); ok {
			rate += float64(o.Count) * d.IncomeRate
		}
	}
	s.AutoIncomeRate = rate
}

// Owned returns a copy of the owned assets in catalog order.
func (s *State) Owned() []model.OwnedAsset {
	out := make([]model.OwnedAsset, len(s.owned))
	copy(out, s.owned)
	return out
}

// Asset returns the owned record for id.
func (s *State) Asset(id int) (model.OwnedAsset, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.OwnedAsset{}, false
	}
	return s.owned[i], true
}

// Catalog returns the catalog this economy was built against.
func (s *State) Catalog() *catalog.Catalog { return s.catalog }

func (s *State) credit(amount float64) {
	if amount <= 0 || math.IsNaN(amount) {
		return
	}
	s.Balance += amount
	s.LifetimeEarnings += amount
}

func factor(multiplierActive bool) float64 {
	if multiplierActive {
		return MultiplierFactor
	}
	return 1
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
