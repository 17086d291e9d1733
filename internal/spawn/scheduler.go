// Package spawn decides when a new piece enters the belt.
package spawn

import (
	"math"
	"time"

	"github.com/assemblyline/core/internal/geom"
	"github.com/assemblyline/core/internal/motion"
	"github.com/assemblyline/core/internal/pool"
	"go.uber.org/zap"
)

// Budget is the part of the ledger the scheduler pays through.
type Budget interface {
	SpawnWouldTerminate() bool
	OnSpawnCost()
}

// Config is the belt geometry and timing.
type Config struct {
	Origin          geom.Vec      // spawn point
	Travel          geom.Vec      // displacement from origin to the recycle point
	TravelDuration  time.Duration // time to cover Travel
	PieceSize       float64
	SafetyThreshold float64
	InitialInterval time.Duration // delay before the first attempt
}

// Scheduler accumulates frame time and spawns at most one piece per elapsed
// interval. It is driven by SpawnSystem.
type Scheduler struct {
	cfg    Config
	pool   *pool.Pool
	mover  motion.Mover
	budget Budget
	curve  Curve
	log    *zap.Logger

	onTerminate func()

	acc      time.Duration
	interval time.Duration
	spawned  int
	skipped  int
	rearms   int
	halted   bool
}

// New creates a scheduler. onTerminate runs once when a spawn would exhaust
// the budget.
func New(cfg Config, p *pool.Pool, mover motion.Mover, budget Budget, curve Curve, onTerminate func(), log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	interval := cfg.InitialInterval
	if interval <= 0 {
		interval = curve.Interval(0)
	}
	return &Scheduler{
		cfg:         cfg,
		pool:        p,
		mover:       mover,
		budget:      budget,
		curve:       curve,
		log:         log,
		onTerminate: onTerminate,
		interval:    interval,
	}
}

// Tick adds elapsed frame time and makes a spawn attempt when the interval
// has been reached.
func (s *Scheduler) Tick(elapsed time.Duration) {
	if s.halted {
		return
	}
	s.acc += elapsed
	if s.acc < s.interval {
		return
	}
	s.acc = 0
	s.attempt()
}

func (s *Scheduler) attempt() {
	if !s.clearOfOrigin() {
		s.skipped++
		return
	}
	if s.budget.SpawnWouldTerminate() {
		s.halted = true
		s.log.Info("spawn budget exhausted", zap.Int("spawned", s.spawned))
		if s.onTerminate != nil {
			s.onTerminate()
		}
		return
	}
	s.spawn()
}

// clearOfOrigin reports whether every active piece has moved far enough
// along the belt for a new one to fit at the origin.
func (s *Scheduler) clearOfOrigin() bool {
	minSpacing := s.cfg.PieceSize + s.cfg.SafetyThreshold
	axis := s.axis()
	for _, e := range s.pool.Active() {
		d := e.Position.Sub(s.cfg.Origin)
		along := d.X*axis.X + d.Y*axis.Y
		if math.Abs(along) <= minSpacing {
			return false
		}
	}
	return true
}

func (s *Scheduler) axis() geom.Vec {
	l := math.Hypot(s.cfg.Travel.X, s.cfg.Travel.Y)
	if l == 0 {
		return geom.Vec{Y: 1}
	}
	return geom.Vec{X: s.cfg.Travel.X / l, Y: s.cfg.Travel.Y / l}
}

func (s *Scheduler) spawn() {
	e := s.pool.Acquire()
	id := e.ID
	e.Position = s.cfg.Origin

	end := s.cfg.Origin.Add(s.cfg.Travel)
	s.mover.Move(id, s.cfg.Origin, end, s.cfg.TravelDuration,
		func(p geom.Vec) {
			if e.ID == id {
				e.Position = p
			}
		},
		func() {
			// Reached the end of the belt untouched: recycle silently.
			s.pool.Release(id)
		},
	)

	s.spawned++
	s.budget.OnSpawnCost()

	if next := s.curve.Interval(s.spawned); next != s.interval {
		s.log.Debug("spawn interval changed",
			zap.Duration("from", s.interval),
			zap.Duration("to", next),
			zap.Int("spawned", s.spawned),
		)
		s.interval = next
		s.acc = 0
		s.rearms++
	}
}

// Halt stops all further spawn attempts.
func (s *Scheduler) Halt() { s.halted = true }

func (s *Scheduler) Interval() time.Duration { return s.interval }
func (s *Scheduler) Spawned() int            { return s.spawned }
func (s *Scheduler) Skipped() int            { return s.skipped }
func (s *Scheduler) Rearms() int             { return s.rearms }
func (s *Scheduler) Halted() bool            { return s.halted }
func (s *Scheduler) Curve() Curve            { return s.curve }
