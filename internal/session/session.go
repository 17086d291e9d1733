// Package session composes the pool, spawn scheduler, hook, tables and ledger
// into one running game and exposes the host-facing API.
//
// A Session is driven by a single goroutine: the host calls Tick once per
// frame and forwards player input through MoveHook and Trigger. Nothing in the
// core blocks or spawns goroutines.
package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/assemblyline/core/internal/assembly"
	"github.com/assemblyline/core/internal/config"
	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/core/event"
	coresys "github.com/assemblyline/core/internal/core/system"
	"github.com/assemblyline/core/internal/data"
	"github.com/assemblyline/core/internal/geom"
	"github.com/assemblyline/core/internal/ledger"
	"github.com/assemblyline/core/internal/motion"
	"github.com/assemblyline/core/internal/pool"
	"github.com/assemblyline/core/internal/scripting"
	"github.com/assemblyline/core/internal/spawn"
	"github.com/assemblyline/core/internal/system"
	"github.com/assemblyline/core/internal/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Session struct {
	id  uuid.UUID
	cfg *config.Config
	log *zap.Logger

	world   *ecs.World
	pool    *pool.Pool
	tween   *motion.Tweener // nil when the host supplies the mover
	mover   motion.Mover
	bus     *event.Bus
	ledger  *ledger.Ledger
	tables  []*assembly.Table
	centers []geom.Vec
	hook    *transport.Carrier
	sched   *spawn.Scheduler
	expiry  *system.ExpirySystem
	runner  *coresys.Runner
	engine  *scripting.Engine // nil unless Lua rules were loaded

	elapsed    time.Duration
	terminated bool
	score      int64
}

// New builds a session from cfg. Data files named by cfg are loaded here; any
// error aborts construction.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	s := &Session{
		id:    uuid.New(),
		cfg:   cfg,
		world: ecs.NewWorld(),
		bus:   event.NewBus(),
	}
	s.log = o.log.With(zap.String("session", s.id.String()))

	catalog, err := s.loadCatalog(o.catalog)
	if err != nil {
		return nil, err
	}
	curve, err := s.loadCurve(o.curve)
	if err != nil {
		return nil, err
	}
	rules, err := s.loadRules(o.rules)
	if err != nil {
		return nil, err
	}

	rng := o.rng
	if rng == nil {
		seed := cfg.Session.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	// Motion.
	s.mover = o.mover
	if s.mover == nil {
		s.tween = motion.NewTweener(s.world)
		s.mover = s.tween
	}

	// Pool.
	s.pool = pool.New(s.world, catalog.Types(), rng, s.log.Named("pool"))
	s.pool.Initialize(cfg.Pool.PerTypeCapacity)

	// Ledger first on the bus so host handlers observe the updated balance.
	s.ledger = ledger.New(cfg.Economy.StartingBalance, rules, s.log.Named("ledger"))
	s.bus.Subscribe(s.ledger)
	s.bus.Subscribe(event.HandlerFunc(s.watchLedger))

	// Tables.
	origin := geom.Vec{X: cfg.Spawn.OriginX, Y: cfg.Spawn.OriginY}
	s.tables = make([]*assembly.Table, cfg.Tables.Count)
	s.centers = make([]geom.Vec, cfg.Tables.Count)
	for i := range s.tables {
		s.centers[i] = geom.Vec{
			X: origin.X + cfg.Tables.OffsetX,
			Y: origin.Y + cfg.Tables.OffsetY + float64(i)*cfg.Tables.Spacing,
		}
		s.tables[i] = assembly.NewTable(i, catalog.Types(), cfg.Tables.SequenceLength, rng, s.bus, s.log.Named("table"))
	}

	// Hook.
	s.hook = transport.New(s.world.CreateEntity(), transport.Config{
		RestX:             origin.X + cfg.Hook.RestOffsetX,
		Tables:            s.centers,
		Advance:           geom.Vec{X: cfg.Hook.AdvanceX},
		AdvanceDuration:   cfg.Hook.AdvanceDuration,
		ReturnDuration:    cfg.Hook.ReturnDuration,
		TransferDuration:  cfg.Hook.TransferDuration,
		Width:             cfg.Hook.Width,
		Height:            cfg.Hook.Height,
		ValidateOnArrival: cfg.Hook.ValidateOnArrival,
	}, s.pool, s.mover, transport.DelivererFunc(s.deliver), o.overlap, catalog.Footprint, s.log.Named("hook"))

	// Scheduler.
	s.sched = spawn.New(spawn.Config{
		Origin:          origin,
		Travel:          geom.Vec{X: cfg.Spawn.TravelX, Y: cfg.Spawn.TravelY},
		TravelDuration:  cfg.Spawn.TravelDuration,
		PieceSize:       cfg.Spawn.PieceSize,
		SafetyThreshold: cfg.Spawn.SafetyThreshold,
		InitialInterval: cfg.Spawn.InitialInterval,
	}, s.pool, s.mover, s.ledger, curve, s.terminate, s.log.Named("spawn"))

	// Systems.
	s.expiry = system.NewExpirySystem(s.pool, s.mover, cfg.Spawn.ExpireInterval, s.log.Named("expiry"))
	s.runner = coresys.NewRunner()
	s.runner.Register(system.NewSpawnSystem(s.sched))
	if s.tween != nil {
		s.runner.Register(system.NewMotionSystem(s.tween))
	}
	s.runner.Register(s.expiry)
	s.runner.Register(system.NewSettleSystem(s.settle))

	s.log.Info("session created",
		zap.Int("tables", len(s.tables)),
		zap.Int("piece_types", catalog.Count()),
		zap.Int("pool_size", s.pool.Len()),
		zap.Int64("balance", s.ledger.Balance()),
	)

	// A non-positive starting balance ends the session before the first tick.
	s.settle()
	return s, nil
}

func (s *Session) loadCatalog(c *data.Catalog) (*data.Catalog, error) {
	if c != nil {
		return c, nil
	}
	if s.cfg.Pool.CatalogPath == "" {
		return data.DefaultCatalog(), nil
	}
	c, err := data.LoadCatalog(s.cfg.Pool.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load piece catalog: %w", err)
	}
	return c, nil
}

func (s *Session) loadCurve(c *spawn.Curve) (spawn.Curve, error) {
	if c != nil {
		return *c, nil
	}
	if s.cfg.Spawn.CurvePath == "" {
		return spawn.DefaultCurve(), nil
	}
	curve, err := data.LoadSpawnCurve(s.cfg.Spawn.CurvePath)
	if err != nil {
		return spawn.Curve{}, fmt.Errorf("load spawn curve: %w", err)
	}
	return curve, nil
}

func (s *Session) loadRules(r ledger.Rules) (ledger.Rules, error) {
	if r != nil {
		return r, nil
	}
	eco := s.cfg.Economy
	fixed := ledger.FixedRules{
		PenaltyBase: eco.PenaltyBase,
		PenaltyStep: eco.PenaltyStep,
		Reward:      eco.AssemblyReward,
		Spawn:       eco.SpawnCost,
	}
	if eco.ScriptsDir == "" {
		return fixed, nil
	}
	engine, err := scripting.NewEngine(eco.ScriptsDir, fixed, s.log.Named("lua"))
	if err != nil {
		return nil, fmt.Errorf("load economy scripts: %w", err)
	}
	s.engine = engine
	return engine, nil
}

// deliver routes a picked piece to its table. Deliveries completing after the
// session ended are dropped.
func (s *Session) deliver(table int, typ pool.Type) {
	if s.terminated {
		return
	}
	s.tables[table].Validate(typ)
}

// watchLedger ends the session as soon as a matcher event exhausts the ledger.
func (s *Session) watchLedger(ev event.Event) {
	if ev.Kind != event.SessionTerminated && s.ledger.Terminal() {
		s.terminate()
	}
}

func (s *Session) settle() {
	if s.ledger.Terminal() {
		s.terminate()
	}
}

func (s *Session) terminate() {
	if s.terminated {
		return
	}
	s.terminated = true
	s.sched.Halt()
	s.ledger.Terminate()
	s.score = s.ledger.Balance()
	s.log.Info("session terminated",
		zap.Int64("score", s.score),
		zap.Duration("elapsed", s.elapsed),
		zap.Int("spawned", s.sched.Spawned()),
		zap.Int("assembled", s.ledger.Assembled()),
	)
	s.bus.Emit(event.Event{Kind: event.SessionTerminated, Score: s.score})
}

// Tick advances the simulation by dt. No-op once terminated.
func (s *Session) Tick(dt time.Duration) {
	if s.terminated || dt <= 0 {
		return
	}
	s.elapsed += dt
	s.runner.Tick(dt)
}

// MoveHook selects the table delta rows away. Ignored while the hook is busy.
func (s *Session) MoveHook(delta int) bool {
	return s.hook.Move(delta)
}

// Trigger starts a pickup cycle. Ignored while busy or after termination.
func (s *Session) Trigger() bool {
	if s.terminated {
		return false
	}
	return s.hook.Trigger()
}

// Subscribe registers h for every event. Handlers see events after the ledger
// has applied them.
func (s *Session) Subscribe(h event.Handler) { s.bus.Subscribe(h) }

// Close releases the Lua VM, if any.
func (s *Session) Close() {
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
}

func (s *Session) ID() uuid.UUID               { return s.id }
func (s *Session) HookBusy() bool              { return s.hook.Busy() }
func (s *Session) Hook() *transport.Carrier    { return s.hook }
func (s *Session) Balance() int64              { return s.ledger.Balance() }
func (s *Session) Assembled() int              { return s.ledger.Assembled() }
func (s *Session) Terminated() bool            { return s.terminated }
func (s *Session) Interval() time.Duration     { return s.sched.Interval() }
func (s *Session) Spawned() int                { return s.sched.Spawned() }
func (s *Session) Expired() int                { return s.expiry.Expired() }
func (s *Session) Elapsed() time.Duration      { return s.elapsed }
func (s *Session) Pool() *pool.Pool            { return s.pool }
func (s *Session) Scheduler() *spawn.Scheduler { return s.sched }

// Score is the final balance. Zero until the session has terminated.
func (s *Session) Score() int64 { return s.score }

// Tables returns a snapshot of every table.
func (s *Session) Tables() []TableView {
	out := make([]TableView, len(s.tables))
	for i, t := range s.tables {
		out[i] = TableView{
			Index:    t.Index(),
			Position: s.centers[i],
			Expected: t.Expected(),
			Marks:    t.Marks(),
			Progress: t.Progress(),
		}
	}
	return out
}

// Active returns a snapshot of the pieces in play, oldest first.
func (s *Session) Active() []PieceView {
	active := s.pool.Active()
	out := make([]PieceView, len(active))
	for i, e := range active {
		out[i] = PieceView{ID: e.ID, Type: e.Type, Position: e.Position}
	}
	return out
}
