package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Session SessionConfig `toml:"session"`
	Pool    PoolConfig    `toml:"pool"`
	Spawn   SpawnConfig   `toml:"spawn"`
	Hook    HookConfig    `toml:"hook"`
	Tables  TablesConfig  `toml:"tables"`
	Economy EconomyConfig `toml:"economy"`
	Logging LoggingConfig `toml:"logging"`
}

type SessionConfig struct {
	Seed      int64         `toml:"seed"`       // 0 = seed from the clock
	FrameTime time.Duration `toml:"frame_time"` // fixed step used by headless hosts
	MaxTime   time.Duration `toml:"max_time"`   // headless hosts stop after this much simulated time (0 = unlimited)
}

type PoolConfig struct {
	PerTypeCapacity int    `toml:"per_type_capacity"`
	CatalogPath     string `toml:"catalog_path"` // YAML piece catalog; empty = built-in four pieces
}

type SpawnConfig struct {
	OriginX         float64       `toml:"origin_x"`
	OriginY         float64       `toml:"origin_y"`
	TravelX         float64       `toml:"travel_x"`
	TravelY         float64       `toml:"travel_y"`
	TravelDuration  time.Duration `toml:"travel_duration"`
	PieceSize       float64       `toml:"piece_size"`
	SafetyThreshold float64       `toml:"safety_threshold"`
	InitialInterval time.Duration `toml:"initial_interval"`
	CurvePath       string        `toml:"curve_path"`      // YAML difficulty curve; empty = built-in
	ExpireInterval  time.Duration `toml:"expire_interval"` // release the oldest piece this often (0 = off)
}

type HookConfig struct {
	RestOffsetX       float64       `toml:"rest_offset_x"` // relative to spawn.origin_x
	AdvanceX          float64       `toml:"advance_x"`
	AdvanceDuration   time.Duration `toml:"advance_duration"`
	ReturnDuration    time.Duration `toml:"return_duration"`
	TransferDuration  time.Duration `toml:"transfer_duration"`
	Width             float64       `toml:"width"`
	Height            float64       `toml:"height"`
	ValidateOnArrival bool          `toml:"validate_on_arrival"`
}

type TablesConfig struct {
	Count          int     `toml:"count"`
	OffsetX        float64 `toml:"offset_x"` // relative to spawn.origin_x
	OffsetY        float64 `toml:"offset_y"` // first table, relative to spawn.origin_y
	Spacing        float64 `toml:"spacing"`
	SequenceLength int     `toml:"sequence_length"`
}

type EconomyConfig struct {
	StartingBalance int64  `toml:"starting_balance"`
	SpawnCost       int64  `toml:"spawn_cost"`
	AssemblyReward  int64  `toml:"assembly_reward"`
	PenaltyBase     int64  `toml:"penalty_base"`
	PenaltyStep     int64  `toml:"penalty_step"`
	ScriptsDir      string `toml:"scripts_dir"` // Lua economy rules; empty = fixed rules
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

var (
	ErrNoTables       = errors.New("tables.count must be at least 1")
	ErrSequenceLength = errors.New("tables.sequence_length must be at least 1")
	ErrCapacity       = errors.New("pool.per_type_capacity must not be negative")
	ErrDuration       = errors.New("durations must not be negative")
	ErrFrameTime      = errors.New("session.frame_time must be positive")
)

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise surface as panics deep in a tick.
func (c *Config) Validate() error {
	if c.Tables.Count < 1 {
		return ErrNoTables
	}
	if c.Tables.SequenceLength < 1 {
		return ErrSequenceLength
	}
	if c.Pool.PerTypeCapacity < 0 {
		return ErrCapacity
	}
	if c.Session.FrameTime <= 0 {
		return ErrFrameTime
	}
	for name, d := range map[string]time.Duration{
		"spawn.travel_duration":  c.Spawn.TravelDuration,
		"spawn.initial_interval": c.Spawn.InitialInterval,
		"spawn.expire_interval":  c.Spawn.ExpireInterval,
		"hook.advance_duration":  c.Hook.AdvanceDuration,
		"hook.return_duration":   c.Hook.ReturnDuration,
		"hook.transfer_duration": c.Hook.TransferDuration,
		"session.max_time":       c.Session.MaxTime,
	} {
		if d < 0 {
			return fmt.Errorf("%s: %w", name, ErrDuration)
		}
	}
	return nil
}

// Default returns the prototype layout and economy.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			FrameTime: 16 * time.Millisecond,
			MaxTime:   10 * time.Minute,
		},
		Pool: PoolConfig{
			PerTypeCapacity: 10,
		},
		Spawn: SpawnConfig{
			OriginX:         200,
			OriginY:         125,
			TravelY:         400,
			TravelDuration:  5 * time.Second,
			PieceSize:       50,
			SafetyThreshold: 10,
			InitialInterval: 3 * time.Second,
		},
		Hook: HookConfig{
			RestOffsetX:      -150,
			AdvanceX:         50,
			AdvanceDuration:  200 * time.Millisecond,
			ReturnDuration:   200 * time.Millisecond,
			TransferDuration: time.Second,
			Width:            200,
			Height:           60,
		},
		Tables: TablesConfig{
			Count:          2,
			OffsetX:        300,
			OffsetY:        75,
			Spacing:        250,
			SequenceLength: 4,
		},
		Economy: EconomyConfig{
			StartingBalance: 10000,
			SpawnCost:       100,
			AssemblyReward:  5000,
			PenaltyBase:     2500,
			PenaltyStep:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
