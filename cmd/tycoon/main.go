package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"IdleTycoon/internal/bonus"
	"IdleTycoon/internal/clock"
	"IdleTycoon/internal/config"
	"IdleTycoon/internal/game"
	"IdleTycoon/internal/notifier"
	"IdleTycoon/internal/persistence"
	"IdleTycoon/internal/recorder"
	"IdleTycoon/internal/scheduler"
	"IdleTycoon/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] IdleTycoon starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	cat, err := cfg.BuildCatalog()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Init save slot
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("[FATAL] open save slot: %v", err)
	}
	defer store.Close()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		ensureDir(cfg.Database.SQLitePath)
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Restore economy
	econ := persistence.Restore(store, cat, persistence.ReconcileOptions{
		RecomputeCost: cfg.Economy.RecomputeCosts,
		ClickValue:    cfg.Economy.ClickValue,
	})
	log.Printf("[INFO] balance %s, income %.2f/s", notifier.FormatMoney(econ.Balance), econ.AutoIncomeRate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notifier.NewHub()
	go hub.Run(ctx)

	engine := bonus.NewEngine(bonus.Options{
		SpawnChance:       cfg.Simulation.SpawnChance,
		MultiplierSeconds: cfg.Simulation.MultiplierSeconds,
	})
	g := game.New(econ, engine, clock.RealClock{}, game.Options{
		MaxTickDelta: cfg.Simulation.MaxTickDelta,
		AdWatchDelay: cfg.Simulation.AdWatchDelay,
		Publisher:    hub,
		Recorder:     rec,
	})
	recordSession(rec, "START", g)

	// Init scheduler
	writer := persistence.NewWriter(store)
	sched := scheduler.NewScheduler(ctx, g, writer, scheduler.Intervals{
		Tick:      cfg.Simulation.TickInterval,
		Countdown: cfg.Simulation.CountdownInterval,
		Spawn:     cfg.Simulation.SpawnInterval,
		Save:      cfg.Save.Interval,
	})
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("[FATAL] register simulation tasks: %v", err)
	}
	sched.Start()

	// Start HTTP API and feed
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.New(g, hub.ServeWS).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
	log.Printf("[INFO] listening on %s", cfg.Server.ListenAddr)

	if cfg.Server.Console {
		go notifier.StartConsole(ctx, os.Stdin, os.Stdout, sched.HandleCommand)
		log.Println("[INFO] console started, type /help")
	}

	log.Println("[INFO] IdleTycoon is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	g.Close()
	writer.Submit(g.SaveSnapshot())
	writer.Close()
	recordSession(rec, "STOP", g)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] IdleTycoon stopped")
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	ensureDir(cfg.Save.Path)
	if cfg.Save.Backend == "sqlite" {
		return persistence.NewSQLiteStore(cfg.Save.Path, cfg.Save.Key)
	}
	return persistence.NewFileStore(cfg.Save.Path, cfg.Save.Key), nil
}

func ensureDir(path string) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[WARN] create %s: %v", dir, err)
		}
	}
}

func recordSession(rec recorder.Recorder, action string, g *game.Game) {
	st := g.GetState()
	if err := rec.RecordSession(&recorder.SessionEvent{
		Action:           action,
		Balance:          st.Balance,
		LifetimeEarnings: st.LifetimeEarnings,
		IncomeRate:       st.AutoIncomeRate,
	}); err != nil {
		log.Printf("[ERROR] record session: %v", err)
	}
}
