package game

import "time"

// Note is a single timed target. Notes are immutable once the beatmap
// is loaded; hit state lives in the judgement engine.
type Note struct {
	Time   time.Duration // when the note should be hit
	Action Action
	Denom  int  // beat subdivision, for theming
	Roll   bool // expanded from a roll line
}

// Beatmap is the ordered definition of note events for one song.
// Notes are strictly non-decreasing by Time.
type Beatmap struct {
	Title      string
	Audio      string // audio file, relative to the beatmap
	Difficulty string
	Tempo      float64
	Notes      []Note
}

// Duration is the time of the last note.
func (b *Beatmap) Duration() time.Duration {
	if len(b.Notes) == 0 {
		return 0
	}
	return b.Notes[len(b.Notes)-1].Time
}

// InputEvent is one classified vocal action. Produced once by the
// classifier, consumed at most once by the judgement engine.
type InputEvent struct {
	Time     time.Duration // latency-compensated, clock time base
	Action   Action
	Strength float64 // onset strength relative to the detection threshold
}

// Judgment records the terminal verdict for one note.
type Judgment struct {
	NoteIndex int
	Verdict   Verdict
	Offset    time.Duration // input time minus note time, zero for Miss
}
