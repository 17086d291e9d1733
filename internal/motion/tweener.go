package motion

import (
	"sort"
	"time"

	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/geom"
)

type tween struct {
	seq       uint64
	from, to  geom.Vec
	duration  time.Duration
	elapsed   time.Duration
	step      func(geom.Vec)
	done      func()
	cancelled bool
}

// Tweener is a frame-stepped Mover. Pending motions are stored per entity id
// in a component store registered with the world, so retiring an entity drops
// its motion.
type Tweener struct {
	store     *ecs.PtrComponentStore[tween]
	seq       uint64
	firing    []*tween
	firingIDs []ecs.EntityID
}

// NewTweener creates a Tweener and registers it with world so retired ids
// lose their pending motions. world may be nil.
func NewTweener(world *ecs.World) *Tweener {
	t := &Tweener{store: ecs.NewPtrComponentStore[tween]()}
	if world != nil {
		world.Registry().Register(t)
	}
	return t
}

func (t *Tweener) Move(id ecs.EntityID, from, to geom.Vec, d time.Duration, step func(geom.Vec), done func()) {
	t.Cancel(id)
	if d < 0 {
		d = 0
	}
	t.seq++
	t.store.Set(id, &tween{
		seq:      t.seq,
		from:     from,
		to:       to,
		duration: d,
		step:     step,
		done:     done,
	})
	if step != nil {
		step(from)
	}
}

// Cancel stops id's motion without running its completion. Motions that
// already finished in the current Advance but have not fired yet are
// suppressed too.
func (t *Tweener) Cancel(id ecs.EntityID) {
	if tw, ok := t.store.Get(id); ok {
		tw.cancelled = true
		t.store.Remove(id)
	}
	for i, fid := range t.firingIDs {
		if fid == id {
			t.firing[i].cancelled = true
		}
	}
}

// Remove implements ecs.Removable.
func (t *Tweener) Remove(id ecs.EntityID) { t.Cancel(id) }

// Moving reports whether id has a pending motion.
func (t *Tweener) Moving(id ecs.EntityID) bool { return t.store.Has(id) }

// Pending returns the number of motions in flight.
func (t *Tweener) Pending() int { return t.store.Len() }

// Advance moves every pending motion forward by dt. Motions that finish are
// completed in the order they finished within the step; simultaneous
// finishes complete in the order they were started. Motions started from a
// completion callback begin on the next Advance.
func (t *Tweener) Advance(dt time.Duration) {
	type finished struct {
		id   ecs.EntityID
		tw   *tween
		late time.Duration
	}
	var done []finished

	t.store.Each(func(id ecs.EntityID, tw *tween) {
		tw.elapsed += dt
		if tw.elapsed >= tw.duration {
			done = append(done, finished{id: id, tw: tw, late: tw.elapsed - tw.duration})
			return
		}
		if tw.step != nil {
			tw.step(tw.from.Lerp(tw.to, float64(tw.elapsed)/float64(tw.duration)))
		}
	})
	if len(done) == 0 {
		return
	}

	sort.Slice(done, func(i, j int) bool {
		if done[i].late != done[j].late {
			return done[i].late > done[j].late
		}
		return done[i].tw.seq < done[j].tw.seq
	})

	t.firing = t.firing[:0]
	t.firingIDs = t.firingIDs[:0]
	for _, f := range done {
		t.store.Remove(f.id)
		t.firing = append(t.firing, f.tw)
		t.firingIDs = append(t.firingIDs, f.id)
	}
	for i := range done {
		tw := t.firing[i]
		if tw.cancelled {
			continue
		}
		if tw.step != nil {
			tw.step(tw.to)
		}
		if tw.done != nil {
			tw.done()
		}
	}
	t.firing = t.firing[:0]
	t.firingIDs = t.firingIDs[:0]
}
