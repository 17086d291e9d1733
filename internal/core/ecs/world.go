package ecs

// World is the top-level container shared by the pool, the motion service and
// the carrier. It owns the id allocator and the component registry.
type World struct {
	ids      *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		ids:      NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) IDs() *EntityPool    { return w.ids }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.ids.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.ids.Alive(id)
}

// Retire ends the current lease of id: its components are dropped from every
// registered store and the slot moves to its next generation.
func (w *World) Retire(id EntityID) (EntityID, bool) {
	if !w.ids.Alive(id) {
		return id, false
	}
	w.registry.RemoveAll(id)
	return w.ids.Retire(id)
}
