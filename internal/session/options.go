package session

import (
	"math/rand"

	"github.com/assemblyline/core/internal/data"
	"github.com/assemblyline/core/internal/ledger"
	"github.com/assemblyline/core/internal/motion"
	"github.com/assemblyline/core/internal/spawn"
	"github.com/assemblyline/core/internal/transport"
	"go.uber.org/zap"
)

// Option overrides a collaborator that New would otherwise build from config.
type Option func(*options)

type options struct {
	log     *zap.Logger
	rng     *rand.Rand
	mover   motion.Mover
	overlap transport.OverlapFunc
	rules   ledger.Rules
	curve   *spawn.Curve
	catalog *data.Catalog
}

// WithLogger sets the session logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRand sets the source used for piece types and table sequences.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithMover hands motion to the host. The session then never advances motions
// itself; the host's engine drives every step and done callback.
func WithMover(m motion.Mover) Option {
	return func(o *options) { o.mover = m }
}

// WithOverlap replaces the hook hit test.
func WithOverlap(f transport.OverlapFunc) Option {
	return func(o *options) { o.overlap = f }
}

// WithRules replaces the economy rules, ignoring economy.scripts_dir.
func WithRules(r ledger.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithCurve replaces the difficulty curve, ignoring spawn.curve_path.
func WithCurve(c spawn.Curve) Option {
	return func(o *options) { o.curve = &c }
}

// WithCatalog replaces the piece catalog, ignoring pool.catalog_path.
func WithCatalog(c *data.Catalog) Option {
	return func(o *options) { o.catalog = c }
}
