package system

import (
	"time"

	coresys "github.com/assemblyline/core/internal/core/system"
	"github.com/assemblyline/core/internal/spawn"
)

// SpawnSystem feeds frame time to the spawn scheduler.
// Phase 0 (Schedule): spawn evaluation precedes every motion completion of
// the same tick.
type SpawnSystem struct {
	sched *spawn.Scheduler
}

func NewSpawnSystem(sched *spawn.Scheduler) *SpawnSystem {
	return &SpawnSystem{sched: sched}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSchedule }

func (s *SpawnSystem) Update(dt time.Duration) {
	s.sched.Tick(dt)
}
