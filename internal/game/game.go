package game

import (
	"log"
	"sync"
	"time"

	"IdleTycoon/internal/bonus"
	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/clock"
	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/model"
	"IdleTycoon/internal/notifier"
	"IdleTycoon/internal/persistence"
	"IdleTycoon/internal/recorder"
)

const (
	DefaultMaxTickDelta = time.Second
	DefaultAdWatchDelay = 3 * time.Second
)

// Options tunes a Game. Zero values select the defaults.
type Options struct {
	MaxTickDelta time.Duration
	AdWatchDelay time.Duration
	Publisher    notifier.Publisher
	Recorder     recorder.Recorder
}

// Game is the single owner of the economy and bonus engine. Every transition
// runs under one mutex so concurrent timers and user actions never observe a
// partially applied change.
type Game struct {
	mu    sync.Mutex
	clk   clock.Clock
	econ  *economy.State
	bonus *bonus.Engine
	pub   notifier.Publisher
	rec   recorder.Recorder

	maxTickDelta time.Duration
	adDelay      time.Duration
	adTimer      *time.Timer
	adShowing    bool
	lastTick     time.Time
	closed       bool
	seq          uint64

	pubMu  sync.Mutex
	pubSeq uint64
}

// update is a state snapshot tagged with the transition that produced it.
type update struct {
	st  model.State
	seq uint64
}

// New wraps an already restored economy.
func New(econ *economy.State, engine *bonus.Engine, clk clock.Clock, opts Options) *Game {
	if opts.MaxTickDelta <= 0 {
		opts.MaxTickDelta = DefaultMaxTickDelta
	}
	if opts.AdWatchDelay <= 0 {
		opts.AdWatchDelay = DefaultAdWatchDelay
	}
	if opts.Publisher == nil {
		opts.Publisher = notifier.Noop{}
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	return &Game{
		clk:          clk,
		econ:         econ,
		bonus:        engine,
		pub:          opts.Publisher,
		rec:          opts.Recorder,
		maxTickDelta: opts.MaxTickDelta,
		adDelay:      opts.AdWatchDelay,
		lastTick:     clk.Now(),
	}
}

// GetState returns a copy of the presentation snapshot.
func (g *Game) GetState() model.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() model.State {
	return model.State{
		Balance:           g.econ.Balance,
		LifetimeEarnings:  g.econ.LifetimeEarnings,
		AutoIncomeRate:    g.econ.AutoIncomeRate,
		OwnedAssets:       g.econ.Owned(),
		ActiveBonusEvents: g.bonus.Active(),
		MultiplierWindow:  g.bonus.Window(),
		AdShowing:         g.adShowing,
		UpdatedAt:         g.clk.Now(),
	}
}

func (g *Game) updateLocked() update {
	g.seq++
	return update{st: g.stateLocked(), seq: g.seq}
}

// publish forwards u unless a newer snapshot has already gone out.
func (g *Game) publish(u update) {
	g.pubMu.Lock()
	defer g.pubMu.Unlock()
	if u.seq <= g.pubSeq {
		return
	}
	g.pubSeq = u.seq
	g.pub.PublishState(u.st)
}

// Click applies one manual action and returns the reward notice.
func (g *Game) Click() (model.RewardNotice, bool) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return model.RewardNotice{}, false
	}
	amount := g.econ.ApplyManualAction(g.bonus.MultiplierActive())
	u := g.updateLocked()
	g.mu.Unlock()

	notice := model.RewardNotice{
		Amount: amount,
		Origin: model.OriginManual,
		Text:   notifier.RewardText(amount, model.OriginManual),
	}
	g.publish(u)
	g.pub.PublishReward(notice)
	return notice, true
}

// Purchase buys one unit of assetID. An unaffordable purchase returns false
// with no state change; an unknown id returns ErrUnknownAsset.
func (g *Game) Purchase(assetID int) (model.OwnedAsset, bool, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return model.OwnedAsset{}, false, nil
	}
	before, _ := g.econ.Asset(assetID)
	owned, ok, err := g.econ.Purchase(assetID)
	if err != nil || !ok {
		g.mu.Unlock()
		return owned, false, err
	}
	u := g.updateLocked()
	def, _ := g.econ.Catalog().Lookup(assetID)
	g.mu.Unlock()

	log.Printf("[INFO] purchased %s (#%d), now %d owned", def.Name, assetID, owned.Count)
	g.publish(u)
	if err := g.rec.RecordPurchase(&recorder.PurchaseEvent{
		AssetID:      assetID,
		AssetName:    def.Name,
		CountAfter:   owned.Count,
		Cost:         before.CurrentCost,
		BalanceAfter: u.st.Balance,
		IncomeRate:   u.st.AutoIncomeRate,
	}); err != nil {
		log.Printf("[ERROR] record purchase: %v", err)
	}
	return owned, true, nil
}

// Tick accrues passive income for the wall-clock time since the previous
// tick, capped at the maximum tick delta, and expires due bonus events.
func (g *Game) Tick() float64 {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return 0
	}
	now := g.clk.Now()
	delta := economy.ClampDelta(now.Sub(g.lastTick).Seconds(), g.maxTickDelta.Seconds())
	g.lastTick = now
	income := g.econ.ApplyIncomeTick(delta, g.bonus.MultiplierActive())
	expired := g.bonus.ExpireDue(now)
	changed := income > 0 || len(expired) > 0
	var u update
	if changed {
		u = g.updateLocked()
	}
	g.mu.Unlock()

	if changed {
		g.publish(u)
	}
	return income
}

// SpawnCheck runs one roll of the bonus spawn policy.
func (g *Game) SpawnCheck() (model.BonusEvent, bool) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return model.BonusEvent{}, false
	}
	ev, ok := g.bonus.TrySpawn(g.clk.Now())
	var u update
	if ok {
		u = g.updateLocked()
	}
	g.mu.Unlock()

	if ok {
		g.publish(u)
	}
	return ev, ok
}

// Claim grants the reward of a live bonus event. Claiming an unknown,
// already claimed, or expired event is a no-op.
func (g *Game) Claim(eventID string) (model.RewardNotice, bool) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return model.RewardNotice{}, false
	}
	before := len(g.bonus.Active())
	ev, ok := g.bonus.Claim(eventID, g.clk.Now())
	if !ok {
		removed := len(g.bonus.Active()) != before
		var u update
		if removed {
			u = g.updateLocked()
		}
		g.mu.Unlock()
		if removed {
			g.publish(u)
		}
		return model.RewardNotice{}, false
	}
	reward := bonus.Reward(ev.Kind, g.econ.AutoIncomeRate, g.econ.Balance)
	g.econ.Grant(reward)
	u := g.updateLocked()
	g.mu.Unlock()

	origin := model.OriginForKind(ev.Kind)
	notice := model.RewardNotice{Amount: reward, Origin: origin, Text: notifier.RewardText(reward, origin)}
	g.publish(u)
	g.pub.PublishReward(notice)
	if err := g.rec.RecordBonusClaim(&recorder.BonusClaimEvent{
		EventID:      ev.ID,
		Kind:         string(ev.Kind),
		Reward:       reward,
		BalanceAfter: u.st.Balance,
	}); err != nil {
		log.Printf("[ERROR] record bonus claim: %v", err)
	}
	return notice, true
}

// CountdownMultiplier advances the multiplier window by one second.
func (g *Game) CountdownMultiplier() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	changed := g.bonus.Countdown()
	var u update
	if changed {
		u = g.updateLocked()
	}
	g.mu.Unlock()

	if changed {
		g.publish(u)
	}
}

// GrantTemporaryMultiplier is the bonus-grant trigger: it (re)starts the
// income multiplier window.
func (g *Game) GrantTemporaryMultiplier() {
	g.activate("GRANT")
}

func (g *Game) activate(source string) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.bonus.Activate()
	u := g.updateLocked()
	g.mu.Unlock()

	log.Printf("[INFO] income multiplier activated (%s)", source)
	g.publish(u)
	if err := g.rec.RecordMultiplier(&recorder.MultiplierEvent{
		Source:  source,
		Seconds: u.st.MultiplierWindow.RemainingSeconds,
	}); err != nil {
		log.Printf("[ERROR] record multiplier: %v", err)
	}
}

// WatchAd plays an ad and activates the multiplier once it finishes. It
// reports false when an ad is already playing.
func (g *Game) WatchAd() bool {
	g.mu.Lock()
	if g.closed || g.adShowing {
		g.mu.Unlock()
		return false
	}
	g.adShowing = true
	g.adTimer = time.AfterFunc(g.adDelay, g.finishAd)
	u := g.updateLocked()
	g.mu.Unlock()

	g.publish(u)
	return true
}

func (g *Game) finishAd() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.adShowing = false
	g.adTimer = nil
	g.mu.Unlock()

	g.activate("AD")
}

// Catalog returns the immutable asset catalog the economy was built from.
func (g *Game) Catalog() *catalog.Catalog {
	return g.econ.Catalog()
}

// SaveSnapshot captures the persisted subset of the economy.
func (g *Game) SaveSnapshot() model.SaveSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return persistence.Serialize(g.econ)
}

// Close stops pending timers; later transitions are ignored.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	if g.adTimer != nil {
		g.adTimer.Stop()
		g.adTimer = nil
	}
	g.adShowing = false
}
