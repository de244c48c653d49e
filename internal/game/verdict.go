package game

import (
	"fmt"
	"time"
)

// Verdict is the judgement tier for one note.
type Verdict uint8

const (
	Perfect Verdict = iota
	Good
	Bad
	Miss

	NumVerdicts = 4
)

func (v Verdict) String() string {
	switch v {
	case Perfect:
		return "Perfect"
	case Good:
		return "Good"
	case Bad:
		return "Bad"
	case Miss:
		return "Miss"
	}
	return fmt.Sprintf("verdict(%d)", uint8(v))
}

// Score is the score delta awarded for this verdict.
func (v Verdict) Score() int {
	switch v {
	case Perfect:
		return 16
	case Good:
		return 8
	case Bad:
		return 2
	}
	return 0
}

// BreaksCombo reports whether this verdict resets the combo counter.
func (v Verdict) BreaksCombo() bool {
	return v == Bad || v == Miss
}

// Windows are the nested acceptance tolerances, narrowest to widest.
// Bad doubles as the overall acceptance window: an input further than
// Bad from every pending note is stray, and a note is swept as Miss
// once the clock passes its time by more than Bad.
type Windows struct {
	Perfect time.Duration
	Good    time.Duration
	Bad     time.Duration
}

// Valid reports whether the tiers are positive and properly nested.
func (w Windows) Valid() bool {
	return w.Perfect > 0 && w.Perfect <= w.Good && w.Good <= w.Bad
}

// Judge assigns a verdict for an absolute timing offset. The offset is
// assumed to be within the Bad window; callers gate on that first.
func (w Windows) Judge(offset time.Duration) Verdict {
	if offset < 0 {
		offset = -offset
	}
	switch {
	case offset <= w.Perfect:
		return Perfect
	case offset <= w.Good:
		return Good
	case offset <= w.Bad:
		return Bad
	}
	return Miss
}
