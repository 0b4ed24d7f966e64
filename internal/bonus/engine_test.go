package bonus

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"IdleTycoon/internal/model"
)

func newTestEngine(seed int64, chance float64) *Engine {
	n := 0
	return NewEngine(Options{
		SpawnChance: chance,
		Rand:        rand.New(rand.NewSource(seed)),
		NewID: func() string {
			n++
			return fmt.Sprintf("ev-%d", n)
		},
	})
}

func TestReward_Formulas(t *testing.T) {
	tests := []struct {
		kind    model.BonusKind
		rate    float64
		balance float64
		want    float64
	}{
		{model.BonusAngel, 10, 500, 700},
		{model.BonusVC, 10, 500, 350},
		{model.BonusWindfall, 10, 500, 70},
		{model.BonusAngel, 0, 0, 50},
		{model.BonusVC, 0, 0, 50},
		{model.BonusWindfall, 0, 0, 50},
		{model.BonusWindfall, 0, 100, 30},
		{model.BonusAngel, 0, 100, 100},
		{model.BonusKind("UNKNOWN"), 5, 5, 50},
	}
	for _, tt := range tests {
		if got := Reward(tt.kind, tt.rate, tt.balance); got != tt.want {
			t.Errorf("Reward(%s, %v, %v) = %v, want %v", tt.kind, tt.rate, tt.balance, got, tt.want)
		}
	}
}

func TestTrySpawn_ChanceBounds(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	never := newTestEngine(1, 0)
	for i := 0; i < 100; i++ {
		if _, ok := never.TrySpawn(now); ok {
			t.Fatal("spawned with zero chance")
		}
	}

	always := newTestEngine(1, 1)
	for i := 0; i < 100; i++ {
		if _, ok := always.TrySpawn(now); !ok {
			t.Fatal("failed to spawn with chance 1")
		}
	}
	if len(always.Active()) != 100 {
		t.Errorf("expected 100 live events, got %d", len(always.Active()))
	}
}

func TestTrySpawn_RateAndLifetimes(t *testing.T) {
	e := newTestEngine(42, DefaultSpawnChance)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	spawned := 0
	kinds := map[model.BonusKind]int{}
	const rolls = 10000
	for i := 0; i < rolls; i++ {
		ev, ok := e.TrySpawn(now)
		if !ok {
			continue
		}
		spawned++
		kinds[ev.Kind]++
		switch ev.Kind {
		case model.BonusAngel:
			if ev.LifetimeSeconds < 10 || ev.LifetimeSeconds >= 15 {
				t.Errorf("angel lifetime out of range: %v", ev.LifetimeSeconds)
			}
		case model.BonusVC:
			if ev.LifetimeSeconds < 5 || ev.LifetimeSeconds >= 8 {
				t.Errorf("vc lifetime out of range: %v", ev.LifetimeSeconds)
			}
		case model.BonusWindfall:
			if ev.LifetimeSeconds != 8 {
				t.Errorf("windfall lifetime should be 8, got %v", ev.LifetimeSeconds)
			}
		}
		if ev.PositionHint < 10 || ev.PositionHint >= 70 {
			t.Errorf("position hint out of range: %v", ev.PositionHint)
		}
	}
	ratio := float64(spawned) / rolls
	if ratio < 0.27 || ratio > 0.33 {
		t.Errorf("spawn ratio %.3f far from 0.3", ratio)
	}
	for _, k := range model.BonusKinds {
		if kinds[k] < spawned/4 {
			t.Errorf("kind %s under-represented: %d of %d", k, kinds[k], spawned)
		}
	}
}

func TestClaim_Idempotent(t *testing.T) {
	e := newTestEngine(7, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ev, _ := e.TrySpawn(now)

	got, ok := e.Claim(ev.ID, now.Add(time.Second))
	if !ok || got.ID != ev.ID {
		t.Fatalf("first claim failed: %+v ok=%v", got, ok)
	}
	if _, ok := e.Claim(ev.ID, now.Add(time.Second)); ok {
		t.Error("second claim should be a no-op")
	}
	if _, ok := e.Claim("missing", now); ok {
		t.Error("claim of unknown id should be a no-op")
	}
	if len(e.Active()) != 0 {
		t.Errorf("expected no live events, got %d", len(e.Active()))
	}
}

func TestClaim_AfterExpiry(t *testing.T) {
	e := newTestEngine(7, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ev, _ := e.TrySpawn(now)

	if _, ok := e.Claim(ev.ID, ev.ExpiresAt()); ok {
		t.Error("claim at expiry should not be granted")
	}
	if len(e.Active()) != 0 {
		t.Error("expired event should be removed on claim attempt")
	}
}

func TestExpireDue(t *testing.T) {
	e := newTestEngine(3, 1)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		e.TrySpawn(start.Add(time.Duration(i) * time.Second))
	}

	cutoff := start.Add(12 * time.Second)
	expired := e.ExpireDue(cutoff)
	for _, ev := range expired {
		if !ev.Expired(cutoff) {
			t.Errorf("event %s expired early", ev.ID)
		}
	}
	for _, ev := range e.Active() {
		if ev.Expired(cutoff) {
			t.Errorf("event %s should have expired", ev.ID)
		}
	}
	if len(expired)+len(e.Active()) != 20 {
		t.Errorf("events lost: %d expired + %d live", len(expired), len(e.Active()))
	}

	e.ExpireDue(start.Add(time.Hour))
	if len(e.Active()) != 0 {
		t.Errorf("expected all events expired, got %d", len(e.Active()))
	}
}

func TestActive_OrderedBySpawnTime(t *testing.T) {
	e := newTestEngine(9, 1)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 5; i > 0; i-- {
		e.TrySpawn(start.Add(time.Duration(i) * time.Millisecond))
	}
	active := e.Active()
	for i := 1; i < len(active); i++ {
		if active[i].SpawnTime.Before(active[i-1].SpawnTime) {
			t.Fatalf("events out of order at %d", i)
		}
	}
}

func TestMultiplierWindow_CountdownAndReset(t *testing.T) {
	e := newTestEngine(1, 0)
	if e.MultiplierActive() || e.Countdown() {
		t.Fatal("window should start inactive")
	}
	if e.Window().Multiplier != 2 {
		t.Errorf("expected multiplier 2, got %v", e.Window().Multiplier)
	}

	e.Activate()
	for i := 0; i < 25; i++ {
		e.Countdown()
	}
	if w := e.Window(); !w.Active || w.RemainingSeconds != 5 {
		t.Fatalf("expected active with 5s left, got %+v", w)
	}

	e.Activate()
	if w := e.Window(); w.RemainingSeconds != 30 {
		t.Errorf("re-activation should reset to 30, got %d", w.RemainingSeconds)
	}

	for i := 0; i < 29; i++ {
		e.Countdown()
	}
	if !e.MultiplierActive() {
		t.Fatal("window should still be active with 1s left")
	}
	e.Countdown()
	if w := e.Window(); w.Active || w.RemainingSeconds != 0 {
		t.Errorf("expected inactive at 0, got %+v", w)
	}
}

func TestNewEngine_DefaultIDsAreUnique(t *testing.T) {
	e := NewEngine(Options{SpawnChance: 1})
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ev, _ := e.TrySpawn(now)
		if seen[ev.ID] {
			t.Fatalf("duplicate id %s", ev.ID)
		}
		seen[ev.ID] = true
	}
}
