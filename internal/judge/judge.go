// Package judge matches classified input events against pending beatmap
// notes and owns the session state. Every note transitions
// Pending → Judged exactly once: claims are made under one lock shared
// with the timeout sweep, and a judged note is never re-evaluated.
package judge

import (
	"math"
	"sync"
	"time"

	"git.lost.host/meutraa/vox/internal/game"
)

type Engine struct {
	mu sync.Mutex

	beatmap *game.Beatmap
	windows game.Windows

	judged  []bool
	verdict []game.Verdict
	state   game.State

	// first index that may still be pending, only ever moves forward
	// between resets
	head int

	stray uint64

	// timing-offset stats over matched hits
	hits   int
	sum    float64 // seconds
	sumSq  float64
	misses int
}

func New(beatmap *game.Beatmap, windows game.Windows) *Engine {
	return &Engine{
		beatmap: beatmap,
		windows: windows,
		judged:  make([]bool, len(beatmap.Notes)),
		verdict: make([]game.Verdict, len(beatmap.Notes)),
		state:   game.NewState(),
	}
}

// Apply matches one input event against the earliest pending note of the
// same action within the acceptance window and claims it. The second
// return is false when the event is stray and was discarded.
func (e *Engine) Apply(ev game.InputEvent) (game.Judgment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := e.head; i < len(e.beatmap.Notes); i++ {
		note := e.beatmap.Notes[i]
		if note.Time-ev.Time > e.windows.Bad {
			// Notes are time-sorted, everything further is too far away.
			break
		}
		if e.judged[i] || note.Action != ev.Action {
			continue
		}
		offset := ev.Time - note.Time
		if offset < -e.windows.Bad || offset > e.windows.Bad {
			continue
		}

		v := e.windows.Judge(offset)
		e.claim(i, v)
		e.hits++
		e.sum += offset.Seconds()
		e.sumSq += offset.Seconds() * offset.Seconds()
		return game.Judgment{NoteIndex: i, Verdict: v, Offset: offset}, true
	}

	e.stray++
	return game.Judgment{}, false
}

// Sweep auto-judges every pending note whose acceptance window has fully
// elapsed as Miss. Called once per scheduler tick.
func (e *Engine) Sweep(now time.Duration) []game.Judgment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []game.Judgment
	for i := e.head; i < len(e.beatmap.Notes); i++ {
		note := e.beatmap.Notes[i]
		if now-note.Time <= e.windows.Bad {
			break
		}
		if e.judged[i] {
			continue
		}
		e.claim(i, game.Miss)
		e.misses++
		out = append(out, game.Judgment{NoteIndex: i, Verdict: game.Miss})
	}
	return out
}

// Flush resolves every remaining pending note as Miss at end of session.
func (e *Engine) Flush() []game.Judgment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []game.Judgment
	for i := e.head; i < len(e.beatmap.Notes); i++ {
		if e.judged[i] {
			continue
		}
		e.claim(i, game.Miss)
		e.misses++
		out = append(out, game.Judgment{NoteIndex: i, Verdict: game.Miss})
	}
	return out
}

func (e *Engine) claim(i int, v game.Verdict) {
	e.judged[i] = true
	e.verdict[i] = v
	e.state.Apply(v)
	for e.head < len(e.judged) && e.judged[e.head] {
		e.head++
	}
}

// Reset returns every note to pending and zeroes the state as one
// atomic operation, for seek and restart.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.judged {
		e.judged[i] = false
	}
	e.head = 0
	e.state = game.NewState()
	e.stray = 0
	e.hits, e.sum, e.sumSq, e.misses = 0, 0, 0, 0
}

// Done reports whether every note has a terminal verdict.
func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.head == len(e.judged)
}

// State returns a snapshot of the session tally.
func (e *Engine) State() game.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stray is the count of inputs discarded without a matching note.
func (e *Engine) Stray() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stray
}

// Stats returns mean and standard deviation of hit offsets in seconds.
func (e *Engine) Stats() (mean, stdev float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hits == 0 {
		return 0, 0
	}
	mean = e.sum / float64(e.hits)
	if e.hits > 1 {
		variance := (e.sumSq - e.sum*e.sum/float64(e.hits)) / float64(e.hits-1)
		if variance > 0 {
			stdev = math.Sqrt(variance)
		}
	}
	return mean, stdev
}

// NoteView is a render snapshot of one note.
type NoteView struct {
	Note    game.Note
	Judged  bool
	Verdict game.Verdict
}

// Window returns a snapshot of the notes with Time in [from, to),
// for the renderer. Indices follow beatmap order.
func (e *Engine) Window(from, to time.Duration) []NoteView {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []NoteView
	for i, note := range e.beatmap.Notes {
		if note.Time < from {
			continue
		}
		if note.Time >= to {
			break
		}
		out = append(out, NoteView{Note: note, Judged: e.judged[i], Verdict: e.verdict[i]})
	}
	return out
}
