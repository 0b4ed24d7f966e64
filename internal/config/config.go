package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Simulation struct {
		TickInterval      time.Duration `yaml:"tick_interval"`
		MaxTickDelta      time.Duration `yaml:"max_tick_delta"`
		SpawnInterval     time.Duration `yaml:"spawn_interval"`
		SpawnChance       float64       `yaml:"spawn_chance"`
		CountdownInterval time.Duration `yaml:"countdown_interval"`
		MultiplierSeconds int           `yaml:"multiplier_seconds"`
		AdWatchDelay      time.Duration `yaml:"ad_watch_delay"`
	} `yaml:"simulation"`
	Economy struct {
		ClickValue     float64 `yaml:"click_value"`
		RecomputeCosts bool    `yaml:"recompute_costs"`
	} `yaml:"economy"`
	Save struct {
		Backend  string        `yaml:"backend"` // "file" or "sqlite"
		Path     string        `yaml:"path"`
		Key      string        `yaml:"key"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"save"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		Console    bool   `yaml:"console"`
	} `yaml:"server"`
	Catalog []model.AssetDefinition `yaml:"catalog"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Simulation.SpawnChance = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TYCOON_SAVE_BACKEND"); v != "" {
		cfg.Save.Backend = v
	}
	if v := os.Getenv("TYCOON_SAVE_PATH"); v != "" {
		cfg.Save.Path = v
	}
	if v := os.Getenv("TYCOON_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TYCOON_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("TYCOON_RECOMPUTE_COSTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Economy.RecomputeCosts = b
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Simulation.SpawnChance = -1
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = 100 * time.Millisecond
	}
	if c.Simulation.MaxTickDelta == 0 {
		c.Simulation.MaxTickDelta = time.Second
	}
	if c.Simulation.SpawnInterval == 0 {
		c.Simulation.SpawnInterval = 2 * time.Second
	}
	if c.Simulation.SpawnChance < 0 {
		c.Simulation.SpawnChance = 0.3
	}
	if c.Simulation.CountdownInterval == 0 {
		c.Simulation.CountdownInterval = time.Second
	}
	if c.Simulation.MultiplierSeconds == 0 {
		c.Simulation.MultiplierSeconds = 30
	}
	if c.Simulation.AdWatchDelay == 0 {
		c.Simulation.AdWatchDelay = 3 * time.Second
	}
	if c.Economy.ClickValue == 0 {
		c.Economy.ClickValue = 1
	}
	if c.Save.Backend == "" {
		c.Save.Backend = "file"
	}
	if c.Save.Path == "" {
		c.Save.Path = "data/save.json"
	}
	if c.Save.Key == "" {
		c.Save.Key = "startupTycoonSave_v2"
	}
	if c.Save.Interval == 0 {
		c.Save.Interval = 5 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/tycoon.db"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8080"
	}
}

// BuildCatalog returns the configured catalog, or the default one when the
// config does not list any assets.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog) == 0 {
		return catalog.Default(), nil
	}
	cat, err := catalog.New(c.Catalog)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return cat, nil
}

// Validate checks that all settings are usable.
func (c *Config) Validate() error {
	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("simulation.tick_interval must be positive")
	}
	if c.Simulation.MaxTickDelta <= 0 {
		return fmt.Errorf("simulation.max_tick_delta must be positive")
	}
	if c.Simulation.SpawnInterval < time.Second {
		return fmt.Errorf("simulation.spawn_interval must be at least 1s")
	}
	if c.Simulation.CountdownInterval < time.Second {
		return fmt.Errorf("simulation.countdown_interval must be at least 1s")
	}
	if c.Simulation.SpawnChance < 0 || c.Simulation.SpawnChance > 1 {
		return fmt.Errorf("simulation.spawn_chance must be within [0, 1]")
	}
	if c.Simulation.MultiplierSeconds <= 0 {
		return fmt.Errorf("simulation.multiplier_seconds must be positive")
	}
	if c.Economy.ClickValue <= 0 {
		return fmt.Errorf("economy.click_value must be positive")
	}
	if c.Save.Backend != "file" && c.Save.Backend != "sqlite" {
		return fmt.Errorf("save.backend must be \"file\" or \"sqlite\", got %q", c.Save.Backend)
	}
	if c.Save.Interval < time.Second {
		return fmt.Errorf("save.interval must be at least 1s")
	}
	if _, err := c.BuildCatalog(); err != nil {
		return err
	}
	return nil
}
