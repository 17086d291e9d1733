package system

import (
	"time"

	coresys "github.com/assemblyline/core/internal/core/system"
	"github.com/assemblyline/core/internal/motion"
	"github.com/assemblyline/core/internal/pool"
	"go.uber.org/zap"
)

// ExpirySystem releases the piece that has been in play the longest every
// interval, with no ledger effect. Phase 2 (PostUpdate).
type ExpirySystem struct {
	pool     *pool.Pool
	mover    motion.Mover
	interval time.Duration
	acc      time.Duration
	expired  int
	log      *zap.Logger
}

func NewExpirySystem(p *pool.Pool, mover motion.Mover, interval time.Duration, log *zap.Logger) *ExpirySystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExpirySystem{pool: p, mover: mover, interval: interval, log: log}
}

func (s *ExpirySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ExpirySystem) Update(dt time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.acc += dt
	if s.acc < s.interval {
		return
	}
	s.acc = 0

	e, ok := s.pool.Oldest()
	if !ok {
		return
	}
	id := e.ID
	s.mover.Cancel(id)
	s.pool.Release(id)
	s.expired++
	s.log.Debug("oldest piece expired", zap.Uint64("entity", uint64(id)), zap.Stringer("type", e.Type))
}

// Expired counts released pieces.
func (s *ExpirySystem) Expired() int { return s.expired }
