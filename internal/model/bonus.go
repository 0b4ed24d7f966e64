package model

import "time"

// BonusKind identifies the flavour of a floating bonus event.
type BonusKind string

const (
	BonusAngel    BonusKind = "ANGEL"
	BonusVC       BonusKind = "VC"
	BonusWindfall BonusKind = "WINDFALL"
)

// BonusKinds lists every kind in spawn-selection order.
var BonusKinds = []BonusKind{BonusAngel, BonusVC, BonusWindfall}

// BonusEvent is a transient, clickable reward opportunity.
type BonusEvent struct {
	ID              string    `json:"id"`
	Kind            BonusKind `json:"kind"`
	SpawnTime       time.Time `json:"spawn_time"`
	LifetimeSeconds float64   `json:"lifetime_seconds"`
	PositionHint    float64   `json:"position_hint"` // vertical screen percentage, opaque to the core
}

// ExpiresAt returns the instant the event disappears unclaimed.
func (e BonusEvent) ExpiresAt() time.Time {
	return e.SpawnTime.Add(time.Duration(e.LifetimeSeconds * float64(time.Second)))
}

// Expired reports whether the event's lifetime has elapsed at now.
func (e BonusEvent) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// MultiplierWindow is the time-limited income doubling period.
type MultiplierWindow struct {
	Active           bool    `json:"active"`
	RemainingSeconds int     `json:"remaining_seconds"`
	Multiplier       float64 `json:"multiplier"`
}
