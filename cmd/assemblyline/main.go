package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/assemblyline/core/internal/config"
	"github.com/assemblyline/core/internal/core/event"
	"github.com/assemblyline/core/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultConfigPath = "config/session.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

var out = message.NewPrinter(language.English)

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, n int64) {
	numStr := out.Sprintf("%d", n)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

// ── Headless session ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Build session
	s, err := session.New(cfg, session.WithLogger(log))
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer s.Close()

	var tally [event.SessionTerminated + 1]int64
	s.Subscribe(event.HandlerFunc(func(ev event.Event) { tally[ev.Kind]++ }))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Drive it at a fixed step until the ledger runs dry or time is up
	pilot := newAutopilot(cfg)
	frame := cfg.Session.FrameTime
	for !s.Terminated() {
		if cfg.Session.MaxTime > 0 && s.Elapsed() >= cfg.Session.MaxTime {
			log.Info("time limit reached", zap.Duration("elapsed", s.Elapsed()))
			break
		}
		if err := ctx.Err(); err != nil {
			log.Info("interrupted", zap.Duration("elapsed", s.Elapsed()))
			break
		}
		pilot.step(s)
		s.Tick(frame)
	}

	// 5. Report
	score := s.Score()
	if !s.Terminated() {
		score = s.Balance()
	}
	fmt.Println()
	printSection("session " + s.ID().String()[:8])
	printStat("seconds played", int64(s.Elapsed()/time.Second))
	printStat("pieces spawned", int64(s.Spawned()))
	printStat("correct pieces", tally[event.CorrectPiece])
	printStat("wrong pieces", tally[event.WrongPiece])
	printStat("assemblies", tally[event.AssemblyComplete])
	printStat("score", score)
	fmt.Println()
	return nil
}

// loadConfig reads ASSEMBLYLINE_CONFIG, or config/session.toml when it exists,
// or falls back to the built-in defaults.
func loadConfig() (*config.Config, error) {
	if p := os.Getenv("ASSEMBLYLINE_CONFIG"); p != "" {
		return config.Load(p)
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// autopilot plays the session headlessly: when the hook is idle it looks for
// a piece that some table is waiting for and that will be under the hook once
// it finishes advancing.
type autopilot struct {
	speed float64 // belt speed along y, px/s
	lead  time.Duration
	reach float64 // max vertical offset that still overlaps
}

func newAutopilot(cfg *config.Config) *autopilot {
	speed := 0.0
	if cfg.Spawn.TravelDuration > 0 {
		speed = cfg.Spawn.TravelY / cfg.Spawn.TravelDuration.Seconds()
	}
	return &autopilot{
		speed: speed,
		lead:  cfg.Hook.AdvanceDuration,
		reach: (cfg.Hook.Height+cfg.Spawn.PieceSize)/2 - 5,
	}
}

func (a *autopilot) step(s *session.Session) {
	if s.HookBusy() {
		return
	}
	tables := s.Tables()
	for _, p := range s.Active() {
		y := p.Position.Y + a.speed*a.lead.Seconds()
		for _, t := range tables {
			if t.Expected[t.Progress] != p.Type {
				continue
			}
			if math.Abs(y-t.Position.Y) > a.reach {
				continue
			}
			s.MoveHook(t.Index - s.Hook().Index())
			s.Trigger()
			return
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
