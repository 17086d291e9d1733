package ledger

// Rules supplies the economy's amounts. FixedRules is the built-in table;
// scripting.Engine provides a Lua-backed implementation.
type Rules interface {
	// WastePenalty is deducted for a wrong piece after assembled completions.
	WastePenalty(assembled int) int64
	// AssemblyReward is credited when the assembled-th sequence completes.
	AssemblyReward(assembled int) int64
	// SpawnCost is deducted for every spawned piece.
	SpawnCost() int64
}

// FixedRules reproduces the prototype economy: a penalty that grows with
// progress, a flat reward and a flat spawn cost.
type FixedRules struct {
	PenaltyBase int64
	PenaltyStep int64
	Reward      int64
	Spawn       int64
}

// DefaultRules returns the prototype amounts.
func DefaultRules() FixedRules {
	return FixedRules{
		PenaltyBase: 2500,
		PenaltyStep: 100,
		Reward:      5000,
		Spawn:       100,
	}
}

func (r FixedRules) WastePenalty(assembled int) int64 {
	return int64(assembled)*r.PenaltyStep + r.PenaltyBase
}

func (r FixedRules) AssemblyReward(int) int64 { return r.Reward }

func (r FixedRules) SpawnCost() int64 { return r.Spawn }
