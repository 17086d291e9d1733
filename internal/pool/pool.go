// Package pool implements the per-type free/active entity pool.
package pool

import (
	"math/rand"

	"github.com/assemblyline/core/internal/core/ecs"
	"go.uber.org/zap"
)

type bucket struct {
	typ    Type
	free   []*Entity
	active int
	total  int
}

// Pool lends and reclaims entities. It is not safe for concurrent use; the
// session drives it from a single goroutine.
type Pool struct {
	world   *ecs.World
	rng     *rand.Rand
	log     *zap.Logger
	types   []Type
	buckets map[Type]*bucket
	byIndex map[uint32]*Entity

	active  []*Entity // oldest acquisition first
	last    Type
	hasLast bool
}

// New creates an empty pool for the given types. Initialize must be called
// before use.
func New(world *ecs.World, types []Type, rng *rand.Rand, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	p := &Pool{
		world:   world,
		rng:     rng,
		log:     log,
		types:   append([]Type(nil), types...),
		buckets: make(map[Type]*bucket, len(types)),
		byIndex: make(map[uint32]*Entity, len(types)*16),
	}
	for _, t := range types {
		p.buckets[t] = &bucket{typ: t}
	}
	return p
}

// Initialize pre-populates perTypeCapacity inactive entities of every type.
func (p *Pool) Initialize(perTypeCapacity int) {
	for _, t := range p.types {
		b := p.buckets[t]
		for i := 0; i < perTypeCapacity; i++ {
			b.free = append(b.free, p.allocate(b))
		}
	}
	p.log.Debug("pool initialized",
		zap.Int("types", len(p.types)),
		zap.Int("per_type", perTypeCapacity),
	)
}

func (p *Pool) allocate(b *bucket) *Entity {
	e := &Entity{
		ID:     p.world.CreateEntity(),
		Type:   b.typ,
		bucket: b,
	}
	b.total++
	p.byIndex[e.ID.Index()] = e
	return e
}

// Acquire lends out an entity of a randomly chosen type, avoiding the type
// handed out last whenever another type can be served. It never fails: when
// the chosen type has no free entity a new one is allocated and stays in
// circulation afterwards.
func (p *Pool) Acquire() *Entity {
	b := p.pickBucket()

	var e *Entity
	if n := len(b.free); n > 0 {
		e = b.free[n-1]
		b.free = b.free[:n-1]
	} else {
		e = p.allocate(b)
		p.log.Debug("pool grew", zap.Stringer("type", b.typ), zap.Int("total", b.total))
	}

	e.Active = true
	b.active++
	p.active = append(p.active, e)

	p.last = b.typ
	p.hasLast = true
	return e
}

func (p *Pool) pickBucket() *bucket {
	candidates := make([]*bucket, 0, len(p.types))
	withFree := make([]*bucket, 0, len(p.types))
	for _, t := range p.types {
		b := p.buckets[t]
		if len(b.free) == 0 {
			continue
		}
		withFree = append(withFree, b)
		if !p.hasLast || t != p.last {
			candidates = append(candidates, b)
		}
	}

	switch {
	case len(candidates) > 0:
	case len(withFree) > 0:
		// Only the excluded type has free entities.
		candidates = withFree
	default:
		for _, t := range p.types {
			if len(p.types) > 1 && p.hasLast && t == p.last {
				continue
			}
			candidates = append(candidates, p.buckets[t])
		}
	}
	return candidates[p.rng.Intn(len(candidates))]
}

// Release returns the entity currently leased under id to its free set. Stale
// ids and inactive entities are ignored.
func (p *Pool) Release(id ecs.EntityID) bool {
	e, ok := p.byIndex[id.Index()]
	if !ok || e.ID != id || !e.Active {
		return false
	}
	p.release(e)
	return true
}

// ReleaseEntity is Release for a held entity pointer.
func (p *Pool) ReleaseEntity(e *Entity) bool {
	if e == nil {
		return false
	}
	return p.Release(e.ID)
}

func (p *Pool) release(e *Entity) {
	idx := -1
	for i, a := range p.active {
		if a == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("pool: active entity missing from active set")
	}
	p.active = append(p.active[:idx], p.active[idx+1:]...)

	e.Active = false
	e.Transferring = false
	e.bucket.active--
	e.bucket.free = append(e.bucket.free, e)

	next, ok := p.world.Retire(e.ID)
	if !ok {
		panic("pool: releasing entity with stale id")
	}
	e.ID = next
}

// Get returns the active entity leased under id.
func (p *Pool) Get(id ecs.EntityID) (*Entity, bool) {
	e, ok := p.byIndex[id.Index()]
	if !ok || e.ID != id || !e.Active {
		return nil, false
	}
	return e, true
}

// Active returns a snapshot of the active entities, oldest acquisition first.
func (p *Pool) Active() []*Entity {
	out := make([]*Entity, len(p.active))
	copy(out, p.active)
	return out
}

// ActiveCount returns the number of entities in play.
func (p *Pool) ActiveCount() int { return len(p.active) }

// Oldest returns the entity that has been in play the longest.
func (p *Pool) Oldest() (*Entity, bool) {
	if len(p.active) == 0 {
		return nil, false
	}
	return p.active[0], true
}

// Len returns the number of entities ever created.
func (p *Pool) Len() int { return len(p.byIndex) }

// Types returns the pool's type set.
func (p *Pool) Types() []Type { return append([]Type(nil), p.types...) }

// Stats reports the partition sizes for t.
func (p *Pool) Stats(t Type) BucketStats {
	b, ok := p.buckets[t]
	if !ok {
		return BucketStats{}
	}
	return BucketStats{Free: len(b.free), Active: b.active, Total: b.total}
}
