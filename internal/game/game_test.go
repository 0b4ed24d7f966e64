package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"IdleTycoon/internal/bonus"
	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/clock"
	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/model"
)

type recordingPublisher struct {
	mu      sync.Mutex
	states  []model.State
	rewards []model.RewardNotice
}

func (p *recordingPublisher) PublishState(st model.State) {
	p.mu.Lock()
	p.states = append(p.states, st)
	p.mu.Unlock()
}

func (p *recordingPublisher) PublishReward(r model.RewardNotice) {
	p.mu.Lock()
	p.rewards = append(p.rewards, r)
	p.mu.Unlock()
}

func (p *recordingPublisher) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states), len(p.rewards)
}

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T, spawnChance float64) (*Game, *clock.Manual, *recordingPublisher) {
	t.Helper()
	clk := clock.NewManual(start)
	pub := &recordingPublisher{}
	n := 0
	engine := bonus.NewEngine(bonus.Options{
		SpawnChance: spawnChance,
		Rand:        rand.New(rand.NewSource(1)),
		NewID: func() string {
			n++
			return fmt.Sprintf("ev-%d", n)
		},
	})
	g := New(economy.New(catalog.Default(), 1), engine, clk, Options{
		AdWatchDelay: 20 * time.Millisecond,
		Publisher:    pub,
	})
	return g, clk, pub
}

func TestClick_PublishesStateAndReward(t *testing.T) {
	g, _, pub := newTestGame(t, 0)

	notice, ok := g.Click()
	if !ok || notice.Amount != 1 || notice.Origin != model.OriginManual || notice.Text != "+$1" {
		t.Fatalf("unexpected notice %+v ok=%v", notice, ok)
	}
	g.GrantTemporaryMultiplier()
	if notice, _ := g.Click(); notice.Amount != 2 {
		t.Errorf("expected doubled click, got %v", notice.Amount)
	}
	st := g.GetState()
	if st.Balance != 3 || st.LifetimeEarnings != 3 {
		t.Errorf("expected 3/3, got %v/%v", st.Balance, st.LifetimeEarnings)
	}
	if states, rewards := pub.counts(); states != 3 || rewards != 2 {
		t.Errorf("expected 3 state pushes and 2 rewards, got %d/%d", states, rewards)
	}
}

func TestTick_UsesClampedWallClockDelta(t *testing.T) {
	g, clk, _ := newTestGame(t, 0)
	g.econ.Balance = 10000
	g.Purchase(3)
	g.Purchase(3) // rate 20

	clk.Advance(time.Second)
	if got := g.Tick(); got != 20 {
		t.Errorf("expected 20 for one second, got %v", got)
	}

	g.GrantTemporaryMultiplier()
	before := g.GetState()
	clk.Advance(time.Second)
	if got := g.Tick(); got != 40 {
		t.Errorf("expected 40 with multiplier, got %v", got)
	}
	after := g.GetState()
	if after.Balance-before.Balance != 40 || after.LifetimeEarnings-before.LifetimeEarnings != 40 {
		t.Errorf("expected +40 to balance and lifetime, got %v / %v",
			after.Balance-before.Balance, after.LifetimeEarnings-before.LifetimeEarnings)
	}

	// a long suspension is capped at the max delta
	clk.Advance(time.Hour)
	if got := g.Tick(); got != 40 {
		t.Errorf("expected capped income 40, got %v", got)
	}

	clk.Advance(100 * time.Millisecond)
	if got := g.Tick(); math.Abs(got-4) > 1e-9 {
		t.Errorf("expected 4 for 100ms, got %v", got)
	}
}

func TestTick_NoIncomeNoPublish(t *testing.T) {
	g, clk, pub := newTestGame(t, 0)
	clk.Advance(100 * time.Millisecond)
	g.Tick()
	if states, _ := pub.counts(); states != 0 {
		t.Errorf("expected no publish for an idle tick, got %d", states)
	}
}

func TestPurchase(t *testing.T) {
	g, _, pub := newTestGame(t, 0)

	if _, ok, err := g.Purchase(1); ok || err != nil {
		t.Fatalf("expected silent refusal, got ok=%v err=%v", ok, err)
	}
	if states, _ := pub.counts(); states != 0 {
		t.Error("refused purchase should not publish")
	}
	if _, _, err := g.Purchase(77); !errors.Is(err, economy.ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}

	for i := 0; i < 15; i++ {
		g.Click()
	}
	owned, ok, err := g.Purchase(1)
	if !ok || err != nil || owned.Count != 1 || owned.CurrentCost != 17 {
		t.Fatalf("unexpected purchase result %+v ok=%v err=%v", owned, ok, err)
	}
	st := g.GetState()
	if st.Balance != 0 || st.LifetimeEarnings != 15 || st.AutoIncomeRate != 0.5 {
		t.Errorf("unexpected state after purchase: %+v", st)
	}
}

func TestSpawnClaimAndExpire(t *testing.T) {
	g, clk, pub := newTestGame(t, 1)

	ev, ok := g.SpawnCheck()
	if !ok {
		t.Fatal("expected spawn with chance 1")
	}
	if n := len(g.GetState().ActiveBonusEvents); n != 1 {
		t.Fatalf("expected 1 live event, got %d", n)
	}

	notice, ok := g.Claim(ev.ID)
	if !ok || notice.Amount != 50 || notice.Origin != model.OriginForKind(ev.Kind) {
		t.Fatalf("unexpected claim %+v ok=%v", notice, ok)
	}
	if _, ok := g.Claim(ev.ID); ok {
		t.Error("double claim should be a no-op")
	}
	if st := g.GetState(); st.Balance != 50 || st.LifetimeEarnings != 50 || len(st.ActiveBonusEvents) != 0 {
		t.Errorf("unexpected state after claim: %+v", st)
	}

	ev2, _ := g.SpawnCheck()
	clk.Advance(time.Duration(ev2.LifetimeSeconds*float64(time.Second)) + time.Millisecond)
	_, rewardsBefore := pub.counts()
	g.Tick()
	if n := len(g.GetState().ActiveBonusEvents); n != 0 {
		t.Errorf("expected event expired on tick, %d live", n)
	}
	if _, ok := g.Claim(ev2.ID); ok {
		t.Error("claim after expiry should be a no-op")
	}
	if _, rewards := pub.counts(); rewards != rewardsBefore {
		t.Error("expiry must not emit a reward")
	}
	if st := g.GetState(); st.Balance != 50 {
		t.Errorf("expiry changed balance: %v", st.Balance)
	}
}

func TestClaim_RewardUsesCurrentEconomy(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	g.econ.Balance = 500
	g.econ.AutoIncomeRate = 10

	want := map[model.BonusKind]float64{
		model.BonusAngel:    700,
		model.BonusVC:       350,
		model.BonusWindfall: 70,
	}
	for i := 0; i < 30; i++ {
		ev, _ := g.SpawnCheck()
		g.econ.Balance = 500
		notice, ok := g.Claim(ev.ID)
		if !ok {
			t.Fatalf("claim %s failed", ev.ID)
		}
		if notice.Amount != want[ev.Kind] {
			t.Errorf("%s: expected %v, got %v", ev.Kind, want[ev.Kind], notice.Amount)
		}
	}
}

func TestMultiplierCountdown(t *testing.T) {
	g, _, _ := newTestGame(t, 0)
	g.GrantTemporaryMultiplier()
	for i := 0; i < 25; i++ {
		g.CountdownMultiplier()
	}
	g.GrantTemporaryMultiplier()
	if w := g.GetState().MultiplierWindow; !w.Active || w.RemainingSeconds != 30 {
		t.Fatalf("expected reset to 30, got %+v", w)
	}
	for i := 0; i < 30; i++ {
		g.CountdownMultiplier()
	}
	if w := g.GetState().MultiplierWindow; w.Active || w.RemainingSeconds != 0 {
		t.Errorf("expected expired window, got %+v", w)
	}
}

func TestWatchAd(t *testing.T) {
	g, _, _ := newTestGame(t, 0)
	if !g.WatchAd() {
		t.Fatal("expected ad to start")
	}
	if g.WatchAd() {
		t.Error("second ad while showing should be refused")
	}
	if !g.GetState().AdShowing {
		t.Error("expected ad showing flag")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.GetState().MultiplierWindow.Active {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	st := g.GetState()
	if !st.MultiplierWindow.Active || st.AdShowing {
		t.Errorf("expected multiplier active after ad, got %+v", st)
	}
}

func TestClose_StopsTransitions(t *testing.T) {
	g, clk, _ := newTestGame(t, 1)
	g.WatchAd()
	g.Close()

	g.Click()
	g.SpawnCheck()
	g.GrantTemporaryMultiplier()
	clk.Advance(time.Second)
	g.Tick()

	time.Sleep(50 * time.Millisecond)
	st := g.GetState()
	if st.Balance != 0 || len(st.ActiveBonusEvents) != 0 || st.MultiplierWindow.Active || st.AdShowing {
		t.Errorf("state changed after close: %+v", st)
	}
}

func TestConcurrentTransitionsKeepInvariants(t *testing.T) {
	g, clk, _ := newTestGame(t, 0.5)
	g.econ.Balance = 1e6

	var wg sync.WaitGroup
	const workers = 8
	const iterations = 200
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				switch (w + i) % 5 {
				case 0:
					g.Click()
				case 1:
					g.Purchase(1 + i%5)
				case 2:
					clk.Advance(10 * time.Millisecond)
					g.Tick()
				case 3:
					if ev, ok := g.SpawnCheck(); ok {
						g.Claim(ev.ID)
					}
				case 4:
					g.CountdownMultiplier()
				}
			}
		}(w)
	}
	wg.Wait()

	st := g.GetState()
	if st.Balance < 0 {
		t.Errorf("negative balance %v", st.Balance)
	}
	cat := catalog.Default()
	var rate float64
	for _, o := range st.OwnedAssets {
		d, _ := cat.Lookup(o.ID)
		rate += float64(o.Count) * d.IncomeRate
		if o.CurrentCost != economy.CostAt(d, o.Count) {
			t.Errorf("asset %d cost %v inconsistent with count %d", o.ID, o.CurrentCost, o.Count)
		}
	}
	if math.Abs(rate-st.AutoIncomeRate) > 1e-9 {
		t.Errorf("rate %v drifted from derived %v", st.AutoIncomeRate, rate)
	}
}

func TestSaveSnapshot(t *testing.T) {
	g, _, _ := newTestGame(t, 0)
	g.econ.Balance = 100
	g.Purchase(1)
	snap := g.SaveSnapshot()
	if snap.Balance != 85 || len(snap.Upgrades) != 5 || snap.Upgrades[0].Count != 1 || snap.Upgrades[0].Cost != 17 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
