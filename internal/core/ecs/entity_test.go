package ecs

import "testing"

func TestEntityPoolRetireAdvancesGeneration(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	if id.IsZero() {
		t.Fatalf("first id must not be zero")
	}
	if !p.Alive(id) {
		t.Fatalf("fresh id %d not alive", id)
	}

	next, ok := p.Retire(id)
	if !ok {
		t.Fatalf("Retire(%d) ok=false", id)
	}
	if p.Alive(id) {
		t.Fatalf("retired id still alive")
	}
	if !p.Alive(next) || next.Index() != id.Index() || next.Generation() != id.Generation()+1 {
		t.Fatalf("next=%d index=%d gen=%d", next, next.Index(), next.Generation())
	}

	if _, ok := p.Retire(id); ok {
		t.Fatalf("retiring a stale id must fail")
	}
}

func TestEntityPoolZeroIDNeverAlive(t *testing.T) {
	p := NewEntityPool()
	p.Create()
	if p.Alive(0) {
		t.Fatalf("zero id reported alive")
	}
	if p.Len() != 1 {
		t.Fatalf("Len=%d, want 1", p.Len())
	}
}

func TestWorldRetireClearsComponents(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[int]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	v := 7
	store.Set(id, &v)

	next, ok := w.Retire(id)
	if !ok {
		t.Fatalf("Retire failed")
	}
	if store.Has(id) {
		t.Fatalf("component survived retire")
	}
	if !w.Alive(next) {
		t.Fatalf("next generation not alive")
	}
}
