package ecs

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. The generation increments every time a slot is retired so
// continuations holding an older id become stale.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out generational ids for slots that live for the whole
// session. Slots are never freed; Retire only advances their generation.
type EntityPool struct {
	generations []uint32
}

func NewEntityPool() *EntityPool {
	// Slot 0 is reserved so the zero EntityID never names a live entity.
	return &EntityPool{
		generations: make([]uint32, 1, 64),
	}
}

// Create allocates a new slot and returns its first id.
func (p *EntityPool) Create() EntityID {
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, 0)
}

// Alive reports whether id still names the current generation of its slot.
func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Retire invalidates id and returns the id for the slot's next generation.
// A stale id is returned unchanged with ok=false.
func (p *EntityPool) Retire(id EntityID) (next EntityID, ok bool) {
	if !p.Alive(id) {
		return id, false
	}
	idx := id.Index()
	p.generations[idx]++
	return NewEntityID(idx, p.generations[idx]), true
}

// Len returns the number of allocated slots.
func (p *EntityPool) Len() int {
	return len(p.generations) - 1
}
