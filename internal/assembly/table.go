// Package assembly implements the per-destination sequence matcher.
//
// A Table holds an expected sequence of piece types and a progress counter.
// Every delivered piece is validated against the next expected type; the
// table resets to a freshly drawn sequence on completion and on any mismatch.
// Callers never observe a completed table, only the AssemblyComplete event.
package assembly

import (
	"math/rand"

	"github.com/assemblyline/core/internal/core/event"
	"github.com/assemblyline/core/internal/pool"
	"go.uber.org/zap"
)

// DefaultLength is the sequence length used by the prototypes.
const DefaultLength = 4

// Outcome is the result of one validation.
type Outcome uint8

const (
	Correct Outcome = iota + 1
	Wrong
	Complete
)

func (o Outcome) Kind() event.Kind {
	switch o {
	case Correct:
		return event.CorrectPiece
	case Wrong:
		return event.WrongPiece
	default:
		return event.AssemblyComplete
	}
}

// Mark is the presentation state of one sequence element.
type Mark uint8

const (
	Pending Mark = iota
	Consumed
)

type Table struct {
	index    int
	types    []pool.Type
	expected []pool.Type
	progress int
	gen      int

	rng  *rand.Rand
	sink event.Handler
	log  *zap.Logger
}

// NewTable builds table index with a first random sequence of length drawn
// from types. Events go to sink.
func NewTable(index int, types []pool.Type, length int, rng *rand.Rand, sink event.Handler, log *zap.Logger) *Table {
	if length <= 0 {
		length = DefaultLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := &Table{
		index:    index,
		types:    append([]pool.Type(nil), types...),
		expected: make([]pool.Type, length),
		rng:      rng,
		sink:     sink,
		log:      log,
	}
	t.regenerate()
	return t
}

// Validate checks typ against the next expected element, emits the matching
// event and updates the table.
func (t *Table) Validate(typ pool.Type) Outcome {
	if typ != t.expected[t.progress] {
		t.emit(Wrong)
		t.regenerate()
		return Wrong
	}
	if t.progress+1 == len(t.expected) {
		t.emit(Complete)
		t.regenerate()
		return Complete
	}
	t.progress++
	t.emit(Correct)
	return Correct
}

func (t *Table) emit(o Outcome) {
	t.log.Debug("table validated",
		zap.Int("table", t.index),
		zap.Stringer("event", o.Kind()),
		zap.Int("progress", t.progress),
	)
	if t.sink != nil {
		t.sink.HandleEvent(event.Event{Kind: o.Kind(), Table: t.index})
	}
}

// regenerate draws a new sequence in place and resets progress. Elements are
// independent uniform draws; repeats are allowed.
func (t *Table) regenerate() {
	for i := range t.expected {
		t.expected[i] = t.types[t.rng.Intn(len(t.types))]
	}
	t.progress = 0
	t.gen++
}

func (t *Table) Index() int    { return t.index }
func (t *Table) Progress() int { return t.progress }
func (t *Table) Len() int      { return len(t.expected) }

// Generation counts how many sequences the table has drawn.
func (t *Table) Generation() int { return t.gen }

// Expected returns a copy of the current expected sequence.
func (t *Table) Expected() []pool.Type {
	return append([]pool.Type(nil), t.expected...)
}

// Next returns the type the table is waiting for.
func (t *Table) Next() pool.Type { return t.expected[t.progress] }

// Marks projects progress onto the sequence: elements before progress are
// consumed, the rest pending.
func (t *Table) Marks() []Mark {
	out := make([]Mark, len(t.expected))
	for i := range out {
		if i < t.progress {
			out[i] = Consumed
		}
	}
	return out
}
