package session

import (
	"github.com/assemblyline/core/internal/assembly"
	"github.com/assemblyline/core/internal/core/ecs"
	"github.com/assemblyline/core/internal/geom"
	"github.com/assemblyline/core/internal/pool"
)

// TableView is a read-only snapshot of one table for presentation.
type TableView struct {
	Index    int
	Position geom.Vec
	Expected []pool.Type
	Marks    []assembly.Mark
	Progress int
}

// PieceView is a read-only snapshot of one active piece.
type PieceView struct {
	ID       ecs.EntityID
	Type     pool.Type
	Position geom.Vec
}
