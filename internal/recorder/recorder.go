package recorder

// PurchaseEvent records a completed asset purchase.
type PurchaseEvent struct {
	AssetID      int
	AssetName    string
	CountAfter   int
	Cost         float64
	BalanceAfter float64
	IncomeRate   float64
}

// BonusClaimEvent records a granted bonus event reward.
type BonusClaimEvent struct {
	EventID      string
	Kind         string // "ANGEL", "VC" or "WINDFALL"
	Reward       float64
	BalanceAfter float64
}

// MultiplierEvent records an activation of the income multiplier window.
type MultiplierEvent struct {
	Source  string // "GRANT" or "AD"
	Seconds int
}

// SessionEvent records a process start or stop.
type SessionEvent struct {
	Action           string // "START" or "STOP"
	Balance          float64
	LifetimeEarnings float64
	IncomeRate       float64
}

// Recorder persists gameplay history for later analysis.
type Recorder interface {
	RecordPurchase(evt *PurchaseEvent) error
	RecordBonusClaim(evt *BonusClaimEvent) error
	RecordMultiplier(evt *MultiplierEvent) error
	RecordSession(evt *SessionEvent) error
	Close() error
}
