package system

import (
	"time"

	coresys "github.com/assemblyline/core/internal/core/system"
	"github.com/assemblyline/core/internal/motion"
)

// MotionSystem steps the headless tweener. Phase 1 (Motion).
// Only registered when the host does not bring its own motion service.
type MotionSystem struct {
	tween *motion.Tweener
}

func NewMotionSystem(tween *motion.Tweener) *MotionSystem {
	return &MotionSystem{tween: tween}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseMotion }

func (s *MotionSystem) Update(dt time.Duration) {
	s.tween.Advance(dt)
}
