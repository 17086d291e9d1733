package system

import (
	"time"

	coresys "github.com/assemblyline/core/internal/core/system"
)

// SettleSystem runs end-of-tick checks, such as declaring the session over
// once the ledger is exhausted. Phase 3 (Settle).
type SettleSystem struct {
	check func()
}

func NewSettleSystem(check func()) *SettleSystem {
	return &SettleSystem{check: check}
}

func (s *SettleSystem) Phase() coresys.Phase { return coresys.PhaseSettle }

func (s *SettleSystem) Update(_ time.Duration) {
	s.check()
}
