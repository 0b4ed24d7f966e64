package bonus

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"IdleTycoon/internal/model"
)

const (
	// DefaultSpawnChance is the probability of a spawn per check interval.
	DefaultSpawnChance = 0.3
	// DefaultMultiplierSeconds is the length of a freshly activated window.
	DefaultMultiplierSeconds = 30
	// MultiplierFactor is the fixed income multiplier of the window.
	MultiplierFactor = 2
	// FallbackReward replaces a computed reward of exactly zero.
	FallbackReward = 50
)

// Options configures an Engine. A SpawnChance outside [0, 1] and zero values
// of the remaining fields select the defaults.
type Options struct {
	SpawnChance       float64
	MultiplierSeconds int
	Rand              *rand.Rand
	NewID             func() string
}

// Engine owns the live bonus events and the income multiplier window.
// It is not safe for concurrent use; the game context serializes access.
type Engine struct {
	rng               *rand.Rand
	newID             func() string
	spawnChance       float64
	multiplierSeconds int

	events map[string]model.BonusEvent
	window model.MultiplierWindow
}

// NewEngine creates an Engine with no live events and an inactive window.
func NewEngine(opts Options) *Engine {
	if opts.SpawnChance < 0 || opts.SpawnChance > 1 {
		opts.SpawnChance = DefaultSpawnChance
	}
	if opts.MultiplierSeconds <= 0 {
		opts.MultiplierSeconds = DefaultMultiplierSeconds
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	return &Engine{
		rng:               opts.Rand,
		newID:             opts.NewID,
		spawnChance:       opts.SpawnChance,
		multiplierSeconds: opts.MultiplierSeconds,
		events:            make(map[string]model.BonusEvent),
		window:            model.MultiplierWindow{Multiplier: MultiplierFactor},
	}
}

// TrySpawn rolls the spawn chance once and, on success, creates an event of a
// uniformly chosen kind.
func (e *Engine) TrySpawn(now time.Time) (model.BonusEvent, bool) {
	if e.rng.Float64() >= e.spawnChance {
		return model.BonusEvent{}, false
	}
	kind := model.BonusKinds[e.rng.Intn(len(model.BonusKinds))]
	ev := model.BonusEvent{
		ID:              e.newID(),
		Kind:            kind,
		SpawnTime:       now,
		LifetimeSeconds: e.lifetime(kind),
		PositionHint:    10 + e.rng.Float64()*60,
	}
	e.events[ev.ID] = ev
	return ev, true
}

func (e *Engine) lifetime(kind model.BonusKind) float64 {
	switch kind {
	case model.BonusAngel:
		return 10 + e.rng.Float64()*5
	case model.BonusVC:
		return 5 + e.rng.Float64()*3
	default:
		return 8
	}
}

// Claim removes the event and reports it when it is still live at now.
// Unknown, already claimed, or expired ids yield false; an expired event is
// removed without reward.
func (e *Engine) Claim(id string, now time.Time) (model.BonusEvent, bool) {
	ev, ok := e.events[id]
	if !ok {
		return model.BonusEvent{}, false
	}
	delete(e.events, id)
	if ev.Expired(now) {
		return model.BonusEvent{}, false
	}
	return ev, true
}

// ExpireDue removes every event whose lifetime has elapsed at now.
func (e *Engine) ExpireDue(now time.Time) []model.BonusEvent {
	var expired []model.BonusEvent
	for id, ev := range e.events {
		if ev.Expired(now) {
			delete(e.events, id)
			expired = append(expired, ev)
		}
	}
	return expired
}

// Active returns the live events ordered by spawn time.
func (e *Engine) Active() []model.BonusEvent {
	out := make([]model.BonusEvent, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SpawnTime.Equal(out[j].SpawnTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].SpawnTime.Before(out[j].SpawnTime)
	})
	return out
}

// Activate starts the multiplier window, resetting any window in progress.
func (e *Engine) Activate() {
	e.window.Active = true
	e.window.RemainingSeconds = e.multiplierSeconds
}

// Countdown advances the window by one second and reports whether it changed.
func (e *Engine) Countdown() bool {
	if !e.window.Active {
		return false
	}
	e.window.RemainingSeconds--
	if e.window.RemainingSeconds <= 0 {
		e.window.RemainingSeconds = 0
		e.window.Active = false
	}
	return true
}

// Window returns the current multiplier window.
func (e *Engine) Window() model.MultiplierWindow { return e.window }

// MultiplierActive reports whether income is currently doubled.
func (e *Engine) MultiplierActive() bool { return e.window.Active }

// Reward computes the payout of a claimed event of kind. An empty economy
// (no income and no balance) or a zero result pays FallbackReward.
func Reward(kind model.BonusKind, autoIncomeRate, balance float64) float64 {
	if autoIncomeRate == 0 && balance == 0 {
		return FallbackReward
	}
	var reward float64
	switch kind {
	case model.BonusAngel:
		reward = autoIncomeRate*60 + 100
	case model.BonusVC:
		reward = autoIncomeRate*30 + 50
	case model.BonusWindfall:
		reward = balance*0.10 + 20
	}
	if reward == 0 {
		reward = FallbackReward
	}
	return reward
}
