package session

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/assemblyline/core/internal/config"
	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/core/event"
	"github.com/assemblyline/core/internal/data"
	"github.com/assemblyline/core/internal/geom"
)

const frame = 10 * time.Millisecond

func run(s *Session, d time.Duration) {
	for end := s.Elapsed() + d; s.Elapsed() < end && !s.Terminated(); {
		s.Tick(frame)
	}
}

type recorder struct {
	events   []event.Event
	balances []int64
	s        *Session
}

func (r *recorder) HandleEvent(ev event.Event) {
	r.events = append(r.events, ev)
	r.balances = append(r.balances, r.s.Balance())
}

func (r *recorder) kinds() []event.Kind {
	out := make([]event.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func singlePiece(t *testing.T) *data.Catalog {
	t.Helper()
	c, err := data.NewCatalog([]data.PieceTemplate{{Key: "bolt", Width: 50, Height: 50}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func newSession(t *testing.T, cfg *config.Config, opts ...Option) (*Session, *recorder) {
	t.Helper()
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	rec := &recorder{s: s}
	s.Subscribe(rec)
	return s, rec
}

func TestFirstSpawnAfterInitialInterval(t *testing.T) {
	s, _ := newSession(t, config.Default(), WithRand(rand.New(rand.NewSource(1))))

	run(s, 2990*time.Millisecond)
	if s.Spawned() != 0 {
		t.Fatalf("spawned %d before the initial interval", s.Spawned())
	}
	run(s, frame)
	if s.Spawned() != 1 || len(s.Active()) != 1 {
		t.Fatalf("spawned=%d active=%d", s.Spawned(), len(s.Active()))
	}
	if s.Balance() != 9900 {
		t.Fatalf("balance=%d, want 9900", s.Balance())
	}
	if s.Interval() != 2750*time.Millisecond {
		t.Fatalf("interval=%v after first spawn", s.Interval())
	}
	if s.ID().String() == "" {
		t.Fatalf("empty session id")
	}
}

func TestDeliveryCompletesTable(t *testing.T) {
	cfg := config.Default()
	cfg.Tables.SequenceLength = 1
	s, rec := newSession(t, cfg, WithCatalog(singlePiece(t)), WithRand(rand.New(rand.NewSource(1))))

	run(s, 3800*time.Millisecond)
	if !s.Trigger() {
		t.Fatalf("trigger refused while idle")
	}
	if !s.HookBusy() {
		t.Fatalf("hook idle right after trigger")
	}
	run(s, 200*time.Millisecond)

	if got := rec.kinds(); len(got) != 1 || got[0] != event.AssemblyComplete {
		t.Fatalf("events=%v, want [assembly-complete]", got)
	}
	if rec.balances[0] != 9900+5000 {
		t.Fatalf("handler saw balance %d before the ledger applied the reward", rec.balances[0])
	}
	if s.Assembled() != 1 {
		t.Fatalf("assembled=%d", s.Assembled())
	}

	run(s, time.Second)
	if s.HookBusy() {
		t.Fatalf("hook never returned")
	}
	if n := len(s.Active()); n != 0 {
		t.Fatalf("transferred piece still active: %d", n)
	}
}

func TestCorrectPieceAdvancesProgress(t *testing.T) {
	cfg := config.Default()
	cfg.Tables.SequenceLength = 3
	cfg.Hook.ValidateOnArrival = true
	s, rec := newSession(t, cfg, WithCatalog(singlePiece(t)), WithRand(rand.New(rand.NewSource(1))))

	run(s, 3800*time.Millisecond)
	s.Trigger()
	run(s, 200*time.Millisecond)
	if len(rec.events) != 0 {
		t.Fatalf("validated at pickup with validate_on_arrival: %v", rec.kinds())
	}
	run(s, time.Second)

	if got := rec.kinds(); len(got) != 1 || got[0] != event.CorrectPiece {
		t.Fatalf("events=%v, want [correct-piece]", got)
	}
	tv := s.Tables()[0]
	if tv.Progress != 1 || len(tv.Expected) != 3 {
		t.Fatalf("table=%+v", tv)
	}
	if s.Tables()[1].Progress != 0 {
		t.Fatalf("other table advanced")
	}
}

func TestHookExclusive(t *testing.T) {
	s, _ := newSession(t, config.Default(), WithRand(rand.New(rand.NewSource(1))))

	if !s.MoveHook(1) {
		t.Fatalf("move refused while idle")
	}
	if s.MoveHook(1) {
		t.Fatalf("move past the last table accepted")
	}
	if !s.Trigger() {
		t.Fatalf("trigger refused while idle")
	}
	if s.Trigger() {
		t.Fatalf("second trigger accepted while busy")
	}
	if s.MoveHook(-1) {
		t.Fatalf("move accepted while busy")
	}
	run(s, 400*time.Millisecond)
	if s.HookBusy() || !s.Trigger() {
		t.Fatalf("hook not reusable after a full cycle")
	}
}

func TestBudgetExhaustionTerminates(t *testing.T) {
	cfg := config.Default()
	cfg.Economy.StartingBalance = 250
	s, rec := newSession(t, cfg, WithRand(rand.New(rand.NewSource(1))))

	// Spawns at 3s and 5.75s leave 50; the third would reach zero.
	run(s, 10*time.Second)

	if !s.Terminated() {
		t.Fatalf("session still running, balance=%d", s.Balance())
	}
	if s.Spawned() != 2 || s.Score() != 50 {
		t.Fatalf("spawned=%d score=%d, want 2 and 50", s.Spawned(), s.Score())
	}
	if got := rec.kinds(); len(got) != 1 || got[0] != event.SessionTerminated || rec.events[0].Score != 50 {
		t.Fatalf("events=%+v", rec.events)
	}

	elapsed := s.Elapsed()
	s.Tick(time.Minute)
	if s.Elapsed() != elapsed || s.Trigger() || s.Balance() != 50 {
		t.Fatalf("session kept running after termination")
	}
	if len(rec.events) != 1 {
		t.Fatalf("termination emitted twice")
	}
}

func TestWrongPieceTerminates(t *testing.T) {
	cfg := config.Default()
	cfg.Economy.StartingBalance = 2000

	// Find a seed whose first piece does not match table 0.
	for seed := int64(1); seed < 200; seed++ {
		s, rec := newSession(t, cfg, WithRand(rand.New(rand.NewSource(seed))))
		run(s, 3*time.Second)
		if s.Active()[0].Type == s.Tables()[0].Expected[0] {
			continue
		}

		run(s, 800*time.Millisecond)
		s.Trigger()
		run(s, 200*time.Millisecond)

		want := []event.Kind{event.WrongPiece, event.SessionTerminated}
		got := rec.kinds()
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("events=%v, want %v", got, want)
		}
		if s.Score() != 1900-2500 || rec.events[1].Score != s.Score() {
			t.Fatalf("score=%d event=%d", s.Score(), rec.events[1].Score)
		}
		if !s.Scheduler().Halted() {
			t.Fatalf("scheduler still armed")
		}
		return
	}
	t.Fatalf("no seed produced a mismatching first piece")
}

func TestNonPositiveStartTerminatesImmediately(t *testing.T) {
	cfg := config.Default()
	cfg.Economy.StartingBalance = 0
	s, _ := newSession(t, cfg)
	if !s.Terminated() || s.Score() != 0 {
		t.Fatalf("terminated=%v score=%d", s.Terminated(), s.Score())
	}
	run(s, 5*time.Second)
	if s.Spawned() != 0 {
		t.Fatalf("spawned after termination")
	}
}

func TestExpireReleasesOldest(t *testing.T) {
	cfg := config.Default()
	cfg.Spawn.ExpireInterval = 3500 * time.Millisecond
	s, _ := newSession(t, cfg, WithRand(rand.New(rand.NewSource(1))))

	run(s, 3*time.Second)
	if len(s.Active()) != 1 {
		t.Fatalf("no piece spawned")
	}
	run(s, 500*time.Millisecond)
	if len(s.Active()) != 0 || s.Expired() != 1 {
		t.Fatalf("active=%d expired=%d", len(s.Active()), s.Expired())
	}
	if s.Balance() != 9900 {
		t.Fatalf("expiry touched the ledger: %d", s.Balance())
	}
}

type hostMover struct {
	moves []ecs.EntityID
	done  []func()
}

func (m *hostMover) Move(id ecs.EntityID, _, _ geom.Vec, _ time.Duration, _ func(geom.Vec), done func()) {
	m.moves = append(m.moves, id)
	m.done = append(m.done, done)
}

func (m *hostMover) Cancel(ecs.EntityID) {}

func TestHostMover(t *testing.T) {
	m := &hostMover{}
	s, _ := newSession(t, config.Default(), WithMover(m), WithRand(rand.New(rand.NewSource(1))))

	run(s, 3*time.Second)
	if len(m.moves) != 1 || len(s.Active()) != 1 {
		t.Fatalf("moves=%d active=%d", len(m.moves), len(s.Active()))
	}
	run(s, 10*time.Second)
	if len(s.Active()) == 0 {
		t.Fatalf("session advanced host-owned motions")
	}
	m.done[0]()
	if got := len(s.Active()); got != len(m.moves)-1 {
		t.Fatalf("active=%d after one completion of %d", got, len(m.moves))
	}
}

func TestLuaRulesFromConfig(t *testing.T) {
	dir := t.TempDir()
	script := "function calc_spawn_cost()\n  return 1\nend\n"
	if err := os.WriteFile(filepath.Join(dir, "cheap.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Economy.ScriptsDir = dir
	s, _ := newSession(t, cfg, WithRand(rand.New(rand.NewSource(1))))

	run(s, 3*time.Second)
	if s.Balance() != 9999 {
		t.Fatalf("balance=%d, want 9999", s.Balance())
	}
}

func TestMissingDataFileFails(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg); err == nil {
		t.Fatalf("missing catalog accepted")
	}

	cfg = config.Default()
	cfg.Spawn.CurvePath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg); err == nil {
		t.Fatalf("missing curve accepted")
	}
}

func TestTablesLayout(t *testing.T) {
	s, _ := newSession(t, config.Default())
	tables := s.Tables()
	if len(tables) != 2 {
		t.Fatalf("tables=%d", len(tables))
	}
	if tables[0].Position != (geom.Vec{X: 500, Y: 200}) || tables[1].Position != (geom.Vec{X: 500, Y: 450}) {
		t.Fatalf("positions %v %v", tables[0].Position, tables[1].Position)
	}
	tables[0].Expected[0] = 99
	if s.Tables()[0].Expected[0] == 99 {
		t.Fatalf("Tables leaked internal state")
	}
}
