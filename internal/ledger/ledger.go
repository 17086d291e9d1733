// Package ledger tracks the session balance and decides when the session is
// over.
package ledger

import (
	"github.com/assemblyline/core/internal/core/event"
	"go.uber.org/zap"
)

// Ledger holds the balance. Once terminal it never changes again.
type Ledger struct {
	balance   int64
	assembled int
	terminal  bool

	rules Rules
	log   *zap.Logger
}

func New(start int64, rules Rules, log *zap.Logger) *Ledger {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{balance: start, rules: rules, log: log}
	if start <= 0 {
		l.terminal = true
	}
	return l
}

func (l *Ledger) Balance() int64 { return l.balance }
func (l *Ledger) Assembled() int { return l.assembled }
func (l *Ledger) Terminal() bool { return l.terminal }
func (l *Ledger) Rules() Rules   { return l.rules }

// Adjust adds delta and re-evaluates terminality. No-op once terminal.
func (l *Ledger) Adjust(delta int64) {
	if l.terminal {
		return
	}
	l.balance += delta
	if l.balance <= 0 {
		l.terminal = true
		l.log.Info("ledger exhausted", zap.Int64("balance", l.balance))
	}
}

// Terminate freezes the ledger at its current balance.
func (l *Ledger) Terminate() {
	if l.terminal {
		return
	}
	l.terminal = true
	l.log.Info("ledger closed", zap.Int64("balance", l.balance))
}

// OnWrongPiece charges the waste penalty for the current progress.
func (l *Ledger) OnWrongPiece() {
	if l.terminal {
		return
	}
	l.Adjust(-l.rules.WastePenalty(l.assembled))
}

// OnAssemblyComplete counts the completion and credits the reward.
func (l *Ledger) OnAssemblyComplete() {
	if l.terminal {
		return
	}
	l.assembled++
	l.Adjust(l.rules.AssemblyReward(l.assembled))
}

// OnSpawnCost charges for one spawned piece.
func (l *Ledger) OnSpawnCost() {
	l.Adjust(-l.rules.SpawnCost())
}

// SpawnWouldTerminate reports whether paying for one more spawn would leave
// the balance non-positive.
func (l *Ledger) SpawnWouldTerminate() bool {
	return l.terminal || l.balance-l.rules.SpawnCost() <= 0
}

// HandleEvent lets the ledger consume matcher events from the bus.
func (l *Ledger) HandleEvent(ev event.Event) {
	switch ev.Kind {
	case event.WrongPiece:
		l.OnWrongPiece()
	case event.AssemblyComplete:
		l.OnAssemblyComplete()
	}
}
