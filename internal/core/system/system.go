package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseSchedule   Phase = iota // 0: spawn scheduler evaluation
	PhaseMotion                  // 1: advance motions, fire completions in order
	PhasePostUpdate              // 2: expiry of stale entities
	PhaseSettle                  // 3: termination check
)

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
