package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[session]
seed = 42

[spawn]
initial_interval = "1500ms"

[tables]
count = 3

[economy]
starting_balance = 500

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Seed != 42 || cfg.Tables.Count != 3 || cfg.Economy.StartingBalance != 500 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Spawn.InitialInterval != 1500*time.Millisecond {
		t.Fatalf("initial_interval=%s", cfg.Spawn.InitialInterval)
	}
	if cfg.Tables.Spacing != 250 || cfg.Economy.SpawnCost != 100 || cfg.Hook.TransferDuration != time.Second {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "[tables]\ncount = 0\n")
	if _, err := Load(path); !errors.Is(err, ErrNoTables) {
		t.Fatalf("err=%v, want ErrNoTables", err)
	}

	path = writeConfig(t, "[hook]\nadvance_duration = \"-1s\"\n")
	if _, err := Load(path); !errors.Is(err, ErrDuration) {
		t.Fatalf("err=%v, want ErrDuration", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("missing file loaded")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "session.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.FrameTime != 16*time.Millisecond || cfg.Spawn.TravelDuration != 5*time.Second {
		t.Fatalf("durations: frame=%s travel=%s", cfg.Session.FrameTime, cfg.Spawn.TravelDuration)
	}
	if cfg.Pool.CatalogPath == "" || cfg.Spawn.CurvePath == "" {
		t.Fatalf("data paths not set")
	}
}
