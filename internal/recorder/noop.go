package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPurchase(_ *PurchaseEvent) error     { return nil }
func (n *NoopRecorder) RecordBonusClaim(_ *BonusClaimEvent) error { return nil }
func (n *NoopRecorder) RecordMultiplier(_ *MultiplierEvent) error { return nil }
func (n *NoopRecorder) RecordSession(_ *SessionEvent) error       { return nil }
func (n *NoopRecorder) Close() error                              { return nil }
