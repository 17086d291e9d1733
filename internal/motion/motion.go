// Package motion defines the scripted-motion service the core relies on and a
// headless implementation of it.
//
// The core never interpolates positions itself. It asks a Mover to carry an
// entity from one point to another over a duration and continues in the done
// callback. A presentation host normally supplies its own Mover backed by its
// tween engine; Tweener is used by tests and by hosts without one.
package motion

import (
	"time"

	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/geom"
)

// Mover moves one entity at a time per id. Starting a new motion for an id
// that already has one replaces it; the replaced motion never completes.
type Mover interface {
	Move(id ecs.EntityID, from, to geom.Vec, d time.Duration, step func(geom.Vec), done func())
	Cancel(id ecs.EntityID)
}
