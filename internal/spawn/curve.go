package spawn

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyCurve       = errors.New("spawn curve has no steps")
	ErrCurveOrder       = errors.New("spawn curve bounds must increase")
	ErrCurveMonotone    = errors.New("spawn curve intervals must not increase")
	ErrCurveNonPositive = errors.New("spawn curve intervals must be positive")
)

// Step maps every spawned count up to and including UpTo to Interval.
type Step struct {
	UpTo     int
	Interval time.Duration
}

// Curve is a monotone non-increasing step function from the number of pieces
// spawned so far to the delay before the next spawn attempt.
type Curve struct {
	steps  []Step
	beyond time.Duration
}

// DefaultCurve is the prototype difficulty ramp.
func DefaultCurve() Curve {
	c, _ := NewCurve([]Step{
		{UpTo: 15, Interval: 2750 * time.Millisecond},
		{UpTo: 25, Interval: 2500 * time.Millisecond},
		{UpTo: 50, Interval: 2250 * time.Millisecond},
		{UpTo: 75, Interval: 1750 * time.Millisecond},
		{UpTo: 100, Interval: 1500 * time.Millisecond},
	}, 1000*time.Millisecond)
	return c
}

// NewCurve validates steps and builds a curve. beyond applies to every count
// past the last step's bound.
func NewCurve(steps []Step, beyond time.Duration) (Curve, error) {
	if len(steps) == 0 {
		return Curve{}, ErrEmptyCurve
	}
	prev := steps[0]
	if prev.Interval <= 0 || beyond <= 0 {
		return Curve{}, ErrCurveNonPositive
	}
	for i, s := range steps[1:] {
		if s.UpTo <= prev.UpTo {
			return Curve{}, fmt.Errorf("step %d (up to %d): %w", i+1, s.UpTo, ErrCurveOrder)
		}
		if s.Interval <= 0 {
			return Curve{}, fmt.Errorf("step %d: %w", i+1, ErrCurveNonPositive)
		}
		if s.Interval > prev.Interval {
			return Curve{}, fmt.Errorf("step %d (%s after %s): %w", i+1, s.Interval, prev.Interval, ErrCurveMonotone)
		}
		prev = s
	}
	if beyond > prev.Interval {
		return Curve{}, fmt.Errorf("final interval %s after %s: %w", beyond, prev.Interval, ErrCurveMonotone)
	}
	return Curve{steps: append([]Step(nil), steps...), beyond: beyond}, nil
}

// Interval returns the delay for the given spawned count.
func (c Curve) Interval(spawned int) time.Duration {
	for _, s := range c.steps {
		if spawned <= s.UpTo {
			return s.Interval
		}
	}
	return c.beyond
}

// Steps returns a copy of the curve's bounded steps.
func (c Curve) Steps() []Step { return append([]Step(nil), c.steps...) }

// Beyond returns the interval past the last bounded step.
func (c Curve) Beyond() time.Duration { return c.beyond }
