package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/game"
	"IdleTycoon/internal/model"
	"IdleTycoon/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Saver accepts snapshots for asynchronous persistence.
type Saver interface {
	Submit(snap model.SaveSnapshot)
}

// Intervals holds the cadence of each recurring simulation task.
type Intervals struct {
	Tick      time.Duration
	Countdown time.Duration
	Spawn     time.Duration
	Save      time.Duration
}

// DefaultIntervals returns the standard simulation cadence.
func DefaultIntervals() Intervals {
	return Intervals{
		Tick:      100 * time.Millisecond,
		Countdown: time.Second,
		Spawn:     2 * time.Second,
		Save:      5 * time.Second,
	}
}

// Scheduler drives the game: a sub-second ticker for income and cron jobs
// for the multiplier countdown, bonus spawning and autosave.
type Scheduler struct {
	Cron  *cron.Cron
	Game  *game.Game
	Saver Saver
	Ctx   context.Context

	intervals Intervals
	stop      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a new Scheduler. Zero intervals select the defaults.
func NewScheduler(ctx context.Context, g *game.Game, saver Saver, iv Intervals) *Scheduler {
	def := DefaultIntervals()
	if iv.Tick <= 0 {
		iv.Tick = def.Tick
	}
	if iv.Countdown <= 0 {
		iv.Countdown = def.Countdown
	}
	if iv.Spawn <= 0 {
		iv.Spawn = def.Spawn
	}
	if iv.Save <= 0 {
		iv.Save = def.Save
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Game:      g,
		Saver:     saver,
		Ctx:       ctx,
		intervals: iv,
	}
}

// RegisterAll registers the countdown, spawn and autosave jobs.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(every(s.intervals.Countdown), s.Game.CountdownMultiplier); err != nil {
		return fmt.Errorf("register countdown task: %w", err)
	}
	if _, err := s.Cron.AddFunc(every(s.intervals.Spawn), s.spawnTask); err != nil {
		return fmt.Errorf("register spawn task: %w", err)
	}
	if s.Saver != nil {
		if _, err := s.Cron.AddFunc(every(s.intervals.Save), s.SaveNow); err != nil {
			return fmt.Errorf("register save task: %w", err)
		}
	}
	return nil
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// Start starts the cron scheduler and the income ticker.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.Cron.Start()
	s.wg.Add(1)
	go s.tickLoop(s.stop)
	log.Printf("[INFO] scheduler started (tick %s)", s.intervals.Tick)
}

// Stop halts every task and waits for running jobs to return. No tick or
// job fires after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) tickLoop(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.intervals.Tick)
	defer ticker.Stop()
	var done <-chan struct{}
	if s.Ctx != nil {
		done = s.Ctx.Done()
	}
	for {
		select {
		case <-stop:
			return
		case <-done:
			return
		case <-ticker.C:
			s.Game.Tick()
		}
	}
}

func (s *Scheduler) spawnTask() {
	if ev, ok := s.Game.SpawnCheck(); ok {
		log.Printf("[INFO] bonus %s spawned (%s, %.1fs)", ev.ID, ev.Kind, ev.LifetimeSeconds)
	}
}

// SaveNow hands the current snapshot to the saver without blocking.
func (s *Scheduler) SaveNow() {
	if s.Saver == nil {
		return
	}
	s.Saver.Submit(s.Game.SaveSnapshot())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/click", "c":
		notice, ok := s.Game.Click()
		if !ok {
			return "game is closed"
		}
		return notice.Text
	case "/buy", "b":
		if len(fields) < 2 {
			return "usage: /buy <asset id>"
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Sprintf("invalid asset id %q", fields[1])
		}
		owned, ok, err := s.Game.Purchase(id)
		if errors.Is(err, economy.ErrUnknownAsset) {
			return fmt.Sprintf("no asset #%d", id)
		}
		if !ok {
			return "not enough money"
		}
		return fmt.Sprintf("bought #%d, now %d owned (next %s)", id, owned.Count, notifier.FormatMoney(owned.CurrentCost))
	case "/claim":
		if len(fields) < 2 {
			return "usage: /claim <bonus id>"
		}
		notice, ok := s.Game.Claim(fields[1])
		if !ok {
			return "bonus is gone"
		}
		return notice.Text
	case "/boost":
		s.Game.GrantTemporaryMultiplier()
		return "income x2 activated"
	case "/ad":
		if !s.Game.WatchAd() {
			return "an ad is already playing"
		}
		return "watching ad..."
	case "/save":
		s.SaveNow()
		return "saved"
	case "/status", "s":
		return notifier.FormatStatus(s.Game.GetState(), s.Game.Catalog())
	default:
		return helpText
	}
}

const helpText = `Commands:
  /click          earn one manual reward
  /buy <id>       buy one asset
  /claim <id>     claim a bonus event
  /boost          start the x2 income window
  /ad             watch an ad for x2 income
  /save           save now
  /status         show the current state`
