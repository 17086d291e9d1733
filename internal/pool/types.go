package pool

import (
	"fmt"

	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/geom"
)

// Type tags an entity with one of a small fixed set of piece kinds. The set is
// chosen when the pool is built and never changes during a session.
type Type uint8

// MaxTypes bounds the number of piece kinds a session may use.
const MaxTypes = 8

// Default piece kinds, matching the default catalog.
const (
	Piece1 Type = iota
	Piece2
	Piece3
	Piece4
)

// DefaultTypes is the four-kind set used when no catalog is configured.
var DefaultTypes = []Type{Piece1, Piece2, Piece3, Piece4}

func (t Type) String() string {
	return fmt.Sprintf("piece%d", uint8(t)+1)
}

// Entity is a recyclable piece. Entities are created once and reused through
// Acquire and Release for the whole session.
type Entity struct {
	ID       ecs.EntityID
	Type     Type
	Active   bool
	Position geom.Vec

	// Transferring is set while the hook carries the piece to a table.
	Transferring bool

	bucket *bucket
}

// BucketStats summarizes one type's partition.
type BucketStats struct {
	Free   int
	Active int
	Total  int
}
