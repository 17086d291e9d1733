// Package transport implements the hook: a single carrier that moves between
// table rows and, when triggered, grabs the piece under it and sends it to the
// selected table.
package transport

import (
	"time"

	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/geom"
	"github.com/assemblyline/core/internal/motion"
	"github.com/assemblyline/core/internal/pool"
	"go.uber.org/zap"
)

// State is the carrier's motion state.
type State uint8

const (
	Idle State = iota
	Advancing
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Advancing:
		return "advancing"
	case Returning:
		return "returning"
	}
	return "unknown"
}

// Deliverer receives every picked piece together with the selected table.
type Deliverer interface {
	Deliver(table int, typ pool.Type)
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(table int, typ pool.Type)

func (f DelivererFunc) Deliver(table int, typ pool.Type) { f(table, typ) }

// OverlapFunc measures how much two footprints overlap. Zero means none.
type OverlapFunc func(a, b geom.Rect) float64

// FootprintFunc returns the size of a piece of the given type.
type FootprintFunc func(pool.Type) (w, h float64)

// Config is the carrier geometry and timing.
type Config struct {
	RestX            float64
	Tables           []geom.Vec // table centers; the hook rides on each table's row
	Advance          geom.Vec   // displacement from rest to the pickup point
	AdvanceDuration  time.Duration
	ReturnDuration   time.Duration
	TransferDuration time.Duration
	Width, Height    float64

	// ValidateOnArrival defers validation until the piece reaches the table.
	// By default the piece is validated the moment it is picked.
	ValidateOnArrival bool
}

type Carrier struct {
	id        ecs.EntityID
	cfg       Config
	pool      *pool.Pool
	mover     motion.Mover
	deliver   Deliverer
	overlap   OverlapFunc
	footprint FootprintFunc
	log       *zap.Logger

	index     int
	state     State
	pos       geom.Vec
	attempts  int
	transfers int
}

// New creates a carrier idle at table 0. id is the carrier's own motion key.
func New(id ecs.EntityID, cfg Config, p *pool.Pool, mover motion.Mover, deliver Deliverer,
	overlap OverlapFunc, footprint FootprintFunc, log *zap.Logger) *Carrier {
	if overlap == nil {
		overlap = geom.IntersectionArea
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Carrier{
		id:        id,
		cfg:       cfg,
		pool:      p,
		mover:     mover,
		deliver:   deliver,
		overlap:   overlap,
		footprint: footprint,
		log:       log,
	}
	c.pos = c.restAt(0)
	return c
}

func (c *Carrier) restAt(index int) geom.Vec {
	if len(c.cfg.Tables) == 0 {
		return geom.Vec{X: c.cfg.RestX}
	}
	return geom.Vec{X: c.cfg.RestX, Y: c.cfg.Tables[index].Y}
}

// Move shifts the selected table by delta, clamped to the valid range.
// Ignored unless idle.
func (c *Carrier) Move(delta int) bool {
	if c.state != Idle || len(c.cfg.Tables) == 0 {
		return false
	}
	next := c.index + delta
	if next < 0 {
		next = 0
	}
	if last := len(c.cfg.Tables) - 1; next > last {
		next = last
	}
	if next == c.index {
		return false
	}
	c.index = next
	c.pos = c.restAt(next)
	return true
}

// Trigger starts a pickup cycle. Ignored unless idle.
func (c *Carrier) Trigger() bool {
	if c.state != Idle {
		return false
	}
	c.state = Advancing
	rest := c.pos
	c.mover.Move(c.id, rest, rest.Add(c.cfg.Advance), c.cfg.AdvanceDuration,
		c.setPos,
		func() { c.pickup(rest) },
	)
	return true
}

func (c *Carrier) setPos(p geom.Vec) { c.pos = p }

// pickup runs when the hook reaches the belt: it selects the piece with the
// largest overlap, hands it off and sends the hook back.
func (c *Carrier) pickup(rest geom.Vec) {
	c.attempts++
	if e := c.candidate(); e != nil {
		c.transfer(e, c.index)
	}

	c.state = Returning
	c.mover.Move(c.id, c.pos, rest, c.cfg.ReturnDuration,
		c.setPos,
		func() { c.state = Idle },
	)
}

func (c *Carrier) candidate() *pool.Entity {
	hook := c.Footprint()
	var best *pool.Entity
	var bestArea float64
	for _, e := range c.pool.Active() {
		if e.Transferring {
			continue
		}
		w, h := c.footprint(e.Type)
		area := c.overlap(hook, geom.Centered(e.Position, w, h))
		if area > bestArea {
			best, bestArea = e, area
		}
	}
	return best
}

func (c *Carrier) transfer(e *pool.Entity, table int) {
	id, typ := e.ID, e.Type
	e.Transferring = true
	c.transfers++
	c.log.Debug("piece picked",
		zap.Int("table", table),
		zap.Stringer("type", typ),
		zap.Uint64("entity", uint64(id)),
	)
	if !c.cfg.ValidateOnArrival {
		c.deliver.Deliver(table, typ)
	}

	c.mover.Cancel(id)
	c.mover.Move(id, e.Position, c.cfg.Tables[table], c.cfg.TransferDuration,
		func(p geom.Vec) {
			if e.ID == id {
				e.Position = p
			}
		},
		func() {
			if c.cfg.ValidateOnArrival {
				c.deliver.Deliver(table, typ)
			}
			c.pool.Release(id)
		},
	)
}

// Footprint returns the hook's current hit box.
func (c *Carrier) Footprint() geom.Rect {
	return geom.Centered(c.pos, c.cfg.Width, c.cfg.Height)
}

func (c *Carrier) Busy() bool         { return c.state != Idle }
func (c *Carrier) State() State       { return c.state }
func (c *Carrier) Index() int         { return c.index }
func (c *Carrier) Position() geom.Vec { return c.pos }
func (c *Carrier) ID() ecs.EntityID   { return c.id }

// Attempts counts pickup scans; Transfers counts pieces actually picked.
func (c *Carrier) Attempts() int  { return c.attempts }
func (c *Carrier) Transfers() int { return c.transfers }
